package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

// CourseRepository reads courses and their sections.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID fetches a course by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, program_id, code, name FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListByProgram returns the courses of a program ordered by code.
func (r *CourseRepository) ListByProgram(ctx context.Context, programID string) ([]models.Course, error) {
	const query = `SELECT id, program_id, code, name FROM courses WHERE program_id = $1 ORDER BY code ASC, id ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, programID); err != nil {
		return nil, fmt.Errorf("list program courses: %w", err)
	}
	return courses, nil
}

// FindSection fetches a section by ID.
func (r *CourseRepository) FindSection(ctx context.Context, id string) (*models.Section, error) {
	const query = `SELECT id, course_id, name FROM sections WHERE id = $1`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}
