package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

func TestAssessmentRepositoryListByScopeAttachesQuestions(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAssessmentRepository(db)

	created := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, type, course_id, section_id, created_by, created_at FROM assessments WHERE course_id = $1 AND section_id = $2 ORDER BY created_at ASC, id ASC")).
		WithArgs("c1", "s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "type", "course_id", "section_id", "created_by", "created_at"}).
			AddRow("a1", "Quiz 1", "QUIZ", "c1", "s1", "u1", created).
			AddRow("a2", "End Semester", "END_SEMESTER", "c1", "s1", "u1", created.Add(time.Hour)))
	mock.ExpectQuery(`FROM assessment_questions\s+WHERE assessment_id IN \(\$1,\$2\)`).
		WithArgs("a1", "a2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "assessment_id", "label", "max_marks", "co_id"}).
			AddRow("q1", "a1", "Q1", 10.0, "co1").
			AddRow("q2", "a1", "Q2", 5.0, nil).
			AddRow("q3", "a2", "Q1", 50.0, "co2"))

	assessments, err := repo.ListByScope(context.Background(), models.AssessmentScope{CourseID: "c1", SectionID: "s1"})
	require.NoError(t, err)
	require.Len(t, assessments, 2)
	assert.Equal(t, models.AssessmentTypeQuiz, assessments[0].Type)
	require.Len(t, assessments[0].Questions, 2)
	require.NotNil(t, assessments[0].Questions[0].COID)
	assert.Equal(t, "co1", *assessments[0].Questions[0].COID)
	assert.Nil(t, assessments[0].Questions[1].COID)
	require.Len(t, assessments[1].Questions, 1)
	assert.Equal(t, 50.0, assessments[1].Questions[0].MaxMarks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentRepositoryListByScopeEmpty(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAssessmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM assessments WHERE course_id = $1 ORDER BY created_at ASC, id ASC")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "type", "course_id", "section_id", "created_by", "created_at"}))

	assessments, err := repo.ListByScope(context.Background(), models.AssessmentScope{CourseID: "c1"})
	require.NoError(t, err)
	assert.Empty(t, assessments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var versionColumns = []string{"assessments", "marks", "students", "outcomes", "mappings", "updated_at", "digest"}

func TestAssessmentRepositoryVersion(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAssessmentRepository(db)

	updated := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`WHERE a.course_id = \$1 AND a.section_id = \$3(?s:.*)WHERE sec.course_id = \$1 AND s.status = \$2 AND s.section_id = \$3`).
		WithArgs("c1", models.StudentStatusActive, "s1").
		WillReturnRows(sqlmock.NewRows(versionColumns).AddRow(2, 30, 3, 2, 0, updated, "9e107d9d372bb6826bd81d3542a419d6"))

	version, err := repo.Version(context.Background(), models.AssessmentScope{CourseID: "c1", SectionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "2.30.3.2.0.1706778000000000000.9e107d9d372bb682", version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentRepositoryVersionTracksStudentsAndOutcomes(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAssessmentRepository(db)

	updated := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	query := `FROM course_outcomes co WHERE co.course_id = \$1(?s:.*)string_agg\(id::text, ',' ORDER BY id\) FROM active_students`
	scope := models.AssessmentScope{CourseID: "c1"}
	rows := [][]driver.Value{
		{2, 30, 3, 2, 0, updated, "aaaa000000000000ffff"},
		// one student withdrawn
		{2, 30, 2, 2, 0, updated, "bbbb000000000000ffff"},
		// a student reactivated while another is withdrawn
		{2, 30, 2, 2, 0, updated, "cccc000000000000ffff"},
		// course outcome description edited
		{2, 30, 2, 2, 0, updated.Add(time.Minute), "cccc000000000000ffff"},
	}
	for _, row := range rows {
		mock.ExpectQuery(query).
			WithArgs("c1", models.StudentStatusActive).
			WillReturnRows(sqlmock.NewRows(versionColumns).AddRow(row...))
	}

	seen := map[string]bool{}
	for range rows {
		version, err := repo.Version(context.Background(), scope)
		require.NoError(t, err)
		assert.False(t, seen[version], version)
		seen[version] = true
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentRepositoryProgramVersionTracksMappingLevels(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAssessmentRepository(db)

	updated := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	query := `FROM co_po_mappings cp JOIN program_outcomes po ON po.id = cp.po_id(?s:.*)MAX\(updated_at\) FROM program_mappings(?s:.*)concat_ws\(':', co_id, po_id, level\)`
	// same mapping count and timestamps, one level changed from 1 to 3
	mock.ExpectQuery(query).
		WithArgs("p1", models.StudentStatusActive).
		WillReturnRows(sqlmock.NewRows(versionColumns).AddRow(4, 120, 40, 6, 5, updated, "0f1e2d3c4b5a69788796a5b4c3d2e1f0"))
	mock.ExpectQuery(query).
		WithArgs("p1", models.StudentStatusActive).
		WillReturnRows(sqlmock.NewRows(versionColumns).AddRow(4, 120, 40, 6, 5, updated, "77aa2d3c4b5a69788796a5b4c3d2e1f0"))

	before, err := repo.ProgramVersion(context.Background(), "p1")
	require.NoError(t, err)
	after, err := repo.ProgramVersion(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, "4.120.40.6.5.1706778000000000000.0f1e2d3c4b5a6978", before)
	assert.NotEqual(t, before, after)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentRepositoryProgramVersionWithoutData(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAssessmentRepository(db)

	mock.ExpectQuery(`FROM assessments a JOIN program_courses c ON c.id = a.course_id`).
		WithArgs("p1", models.StudentStatusActive).
		WillReturnRows(sqlmock.NewRows(versionColumns).AddRow(0, 0, 0, 0, 4, nil, nil))

	version, err := repo.ProgramVersion(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0.4.0.0", version)
	assert.NoError(t, mock.ExpectationsWereMet())
}
