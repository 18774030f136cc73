package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

// MarkRepository reads recorded marks.
type MarkRepository struct {
	db *sqlx.DB
}

// NewMarkRepository constructs a MarkRepository.
func NewMarkRepository(db *sqlx.DB) *MarkRepository {
	return &MarkRepository{db: db}
}

// ListByScope returns the marks of every question in the scope keyed by question ID.
func (r *MarkRepository) ListByScope(ctx context.Context, scope models.AssessmentScope) (map[string][]models.Mark, error) {
	query := `SELECT m.student_id, m.question_id, m.value
        FROM marks m
        JOIN assessment_questions q ON q.id = m.question_id
        JOIN assessments a ON a.id = q.assessment_id
        WHERE a.course_id = $1`
	args := []interface{}{scope.CourseID}
	if scope.SectionID != "" {
		query += fmt.Sprintf(" AND a.section_id = $%d", len(args)+1)
		args = append(args, scope.SectionID)
	}
	query += " ORDER BY m.question_id ASC, m.student_id ASC"

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list marks: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]models.Mark)
	for rows.Next() {
		var mark models.Mark
		if err := rows.StructScan(&mark); err != nil {
			return nil, fmt.Errorf("scan mark: %w", err)
		}
		result[mark.QuestionID] = append(result[mark.QuestionID], mark)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate marks: %w", err)
	}
	return result, nil
}
