package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

// OutcomeRepository reads course outcomes, program outcomes and their mappings.
type OutcomeRepository struct {
	db *sqlx.DB
}

// NewOutcomeRepository constructs an OutcomeRepository.
func NewOutcomeRepository(db *sqlx.DB) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

// ListCourseOutcomes returns the COs of a course ordered by code.
func (r *OutcomeRepository) ListCourseOutcomes(ctx context.Context, courseID string) ([]models.CourseOutcome, error) {
	const query = `SELECT id, course_id, code, description FROM course_outcomes WHERE course_id = $1 ORDER BY code ASC, id ASC`
	var outcomes []models.CourseOutcome
	if err := r.db.SelectContext(ctx, &outcomes, query, courseID); err != nil {
		return nil, fmt.Errorf("list course outcomes: %w", err)
	}
	return outcomes, nil
}

// ListProgramOutcomes returns the POs of a program ordered by code.
func (r *OutcomeRepository) ListProgramOutcomes(ctx context.Context, programID string) ([]models.ProgramOutcome, error) {
	const query = `SELECT id, program_id, code, description FROM program_outcomes WHERE program_id = $1 ORDER BY code ASC, id ASC`
	var outcomes []models.ProgramOutcome
	if err := r.db.SelectContext(ctx, &outcomes, query, programID); err != nil {
		return nil, fmt.Errorf("list program outcomes: %w", err)
	}
	return outcomes, nil
}

// ListMappingsByProgram returns every CO-PO mapping whose PO belongs to the program.
func (r *OutcomeRepository) ListMappingsByProgram(ctx context.Context, programID string) ([]models.CoPoMapping, error) {
	const query = `SELECT m.co_id, m.po_id, m.level
        FROM co_po_mappings m
        JOIN program_outcomes po ON po.id = m.po_id
        WHERE po.program_id = $1
        ORDER BY m.co_id ASC, m.po_id ASC`
	var mappings []models.CoPoMapping
	if err := r.db.SelectContext(ctx, &mappings, query, programID); err != nil {
		return nil, fmt.Errorf("list co-po mappings: %w", err)
	}
	return mappings, nil
}
