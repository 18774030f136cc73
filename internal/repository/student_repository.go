package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

// StudentRepository reads section enrollments.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListActive returns ACTIVE students of a course, optionally limited to one section.
func (r *StudentRepository) ListActive(ctx context.Context, scope models.AssessmentScope) ([]models.Student, error) {
	query := `SELECT s.id, s.register_number, s.section_id, s.status
        FROM students s
        JOIN sections sec ON sec.id = s.section_id
        WHERE sec.course_id = $1 AND s.status = $2`
	args := []interface{}{scope.CourseID, models.StudentStatusActive}
	if scope.SectionID != "" {
		query += fmt.Sprintf(" AND s.section_id = $%d", len(args)+1)
		args = append(args, scope.SectionID)
	}
	query += " ORDER BY s.register_number ASC, s.id ASC"

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list active students: %w", err)
	}
	return students, nil
}
