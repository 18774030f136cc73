package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

func TestOutcomeRepositoryListCourseOutcomes(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewOutcomeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_id, code, description FROM course_outcomes WHERE course_id = $1 ORDER BY code ASC, id ASC")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_id", "code", "description"}).
			AddRow("co1", "c1", "CO1", "Apply loops").
			AddRow("co2", "c1", "CO2", "Design functions"))

	outcomes, err := repo.ListCourseOutcomes(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, outcomes, 2)
	assert.Equal(t, "Design functions", outcomes[1].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutcomeRepositoryListProgramOutcomes(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewOutcomeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, program_id, code, description FROM program_outcomes WHERE program_id = $1")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_id", "code", "description"}).AddRow("po1", "p1", "PO1", "Engineering knowledge"))

	outcomes, err := repo.ListProgramOutcomes(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []models.ProgramOutcome{{ID: "po1", ProgramID: "p1", Code: "PO1", Description: "Engineering knowledge"}}, outcomes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutcomeRepositoryListMappingsByProgram(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewOutcomeRepository(db)

	mock.ExpectQuery(`SELECT m.co_id, m.po_id, m.level\s+FROM co_po_mappings m\s+JOIN program_outcomes po ON po.id = m.po_id\s+WHERE po.program_id = \$1`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"co_id", "po_id", "level"}).AddRow("co1", "po1", 3).AddRow("co2", "po1", 1))

	mappings, err := repo.ListMappingsByProgram(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []models.CoPoMapping{{COID: "co1", POID: "po1", Level: 3}, {COID: "co2", POID: "po1", Level: 1}}, mappings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutcomeRepositoryWrapsErrors(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewOutcomeRepository(db)

	boom := errors.New("connection reset")
	mock.ExpectQuery("FROM co_po_mappings").WillReturnError(boom)

	_, err := repo.ListMappingsByProgram(context.Background(), "p1")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "list co-po mappings")
}
