package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

// AssessmentRepository reads assessments together with their questions.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository constructs an AssessmentRepository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// ListByScope returns the assessments of a course, optionally limited to one
// section, each with its questions attached.
func (r *AssessmentRepository) ListByScope(ctx context.Context, scope models.AssessmentScope) ([]models.Assessment, error) {
	query := `SELECT id, name, type, course_id, section_id, created_by, created_at FROM assessments WHERE course_id = $1`
	args := []interface{}{scope.CourseID}
	if scope.SectionID != "" {
		query += fmt.Sprintf(" AND section_id = $%d", len(args)+1)
		args = append(args, scope.SectionID)
	}
	query += " ORDER BY created_at ASC, id ASC"

	var assessments []models.Assessment
	if err := r.db.SelectContext(ctx, &assessments, query, args...); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	if len(assessments) == 0 {
		return assessments, nil
	}

	ids := make([]string, len(assessments))
	for i := range assessments {
		ids[i] = assessments[i].ID
	}
	questions, err := r.questionsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range assessments {
		assessments[i].Questions = questions[assessments[i].ID]
	}
	return assessments, nil
}

func (r *AssessmentRepository) questionsFor(ctx context.Context, assessmentIDs []string) (map[string][]models.AssessmentQuestion, error) {
	placeholders := make([]string, len(assessmentIDs))
	args := make([]interface{}, len(assessmentIDs))
	for i, id := range assessmentIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT id, assessment_id, label, max_marks, co_id
        FROM assessment_questions
        WHERE assessment_id IN (%s)
        ORDER BY assessment_id ASC, label ASC, id ASC`, strings.Join(placeholders, ","))

	var rows []models.AssessmentQuestion
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list assessment questions: %w", err)
	}
	result := make(map[string][]models.AssessmentQuestion, len(assessmentIDs))
	for _, q := range rows {
		result[q.AssessmentID] = append(result[q.AssessmentID], q)
	}
	return result, nil
}

type dataVersion struct {
	Assessments int            `db:"assessments"`
	Marks       int            `db:"marks"`
	Students    int            `db:"students"`
	Outcomes    int            `db:"outcomes"`
	Mappings    int            `db:"mappings"`
	UpdatedAt   sql.NullTime   `db:"updated_at"`
	Digest      sql.NullString `db:"digest"`
}

func (v dataVersion) String() string {
	var updated int64
	if v.UpdatedAt.Valid {
		updated = v.UpdatedAt.Time.UTC().UnixNano()
	}
	digest := "0"
	if v.Digest.Valid && v.Digest.String != "" {
		digest = v.Digest.String
		if len(digest) > 16 {
			digest = digest[:16]
		}
	}
	return fmt.Sprintf("%d.%d.%d.%d.%d.%d.%s", v.Assessments, v.Marks, v.Students, v.Outcomes, v.Mappings, updated, digest)
}

// Version fingerprints everything a course calculation reads: the assessment
// set with its questions and marks, the ACTIVE students of the scope and the
// course outcomes. Row contents without a reliable update time (student ids,
// outcome codes and descriptions, the course header) go into an md5 digest.
func (r *AssessmentRepository) Version(ctx context.Context, scope models.AssessmentScope) (string, error) {
	args := []interface{}{scope.CourseID, models.StudentStatusActive}
	assessmentFilter, studentFilter := "", ""
	if scope.SectionID != "" {
		args = append(args, scope.SectionID)
		assessmentFilter = " AND a.section_id = $3"
		studentFilter = " AND s.section_id = $3"
	}
	query := `WITH scoped_assessments AS (
            SELECT a.id, a.updated_at FROM assessments a WHERE a.course_id = $1` + assessmentFilter + `
        ), scoped_marks AS (
            SELECT q.updated_at AS question_updated_at, m.question_id, m.updated_at AS mark_updated_at
            FROM scoped_assessments a
            JOIN assessment_questions q ON q.assessment_id = a.id
            LEFT JOIN marks m ON m.question_id = q.id
        ), active_students AS (
            SELECT s.id FROM students s
            JOIN sections sec ON sec.id = s.section_id
            WHERE sec.course_id = $1 AND s.status = $2` + studentFilter + `
        ), scoped_outcomes AS (
            SELECT co.id, co.code, co.description, co.updated_at FROM course_outcomes co WHERE co.course_id = $1
        )
        SELECT
            (SELECT COUNT(*) FROM scoped_assessments) AS assessments,
            (SELECT COUNT(question_id) FROM scoped_marks) AS marks,
            (SELECT COUNT(*) FROM active_students) AS students,
            (SELECT COUNT(*) FROM scoped_outcomes) AS outcomes,
            0 AS mappings,
            GREATEST(
                (SELECT MAX(updated_at) FROM scoped_assessments),
                (SELECT MAX(question_updated_at) FROM scoped_marks),
                (SELECT MAX(mark_updated_at) FROM scoped_marks),
                (SELECT MAX(updated_at) FROM scoped_outcomes)) AS updated_at,
            md5(concat_ws('|',
                (SELECT string_agg(id::text, ',' ORDER BY id) FROM active_students),
                (SELECT string_agg(concat_ws(':', id, code, description), ',' ORDER BY id) FROM scoped_outcomes),
                (SELECT concat_ws(':', c.code, c.name) FROM courses c WHERE c.id = $1))) AS digest`
	var v dataVersion
	if err := r.db.GetContext(ctx, &v, query, args...); err != nil {
		return "", fmt.Errorf("assessment version: %w", err)
	}
	return v.String(), nil
}

// ProgramVersion fingerprints everything a program calculation reads: the
// assessment sets, ACTIVE students and course outcomes of every program course,
// the program outcomes and the CO-PO mappings including their levels.
func (r *AssessmentRepository) ProgramVersion(ctx context.Context, programID string) (string, error) {
	const query = `WITH program_courses AS (
            SELECT c.id, c.code, c.name FROM courses c WHERE c.program_id = $1
        ), scoped_assessments AS (
            SELECT a.id, a.updated_at FROM assessments a JOIN program_courses c ON c.id = a.course_id
        ), scoped_marks AS (
            SELECT q.updated_at AS question_updated_at, m.question_id, m.updated_at AS mark_updated_at
            FROM scoped_assessments a
            JOIN assessment_questions q ON q.assessment_id = a.id
            LEFT JOIN marks m ON m.question_id = q.id
        ), active_students AS (
            SELECT s.id FROM students s
            JOIN sections sec ON sec.id = s.section_id
            JOIN program_courses c ON c.id = sec.course_id
            WHERE s.status = $2
        ), scoped_outcomes AS (
            SELECT co.id, co.course_id, co.code, co.description, co.updated_at
            FROM course_outcomes co JOIN program_courses c ON c.id = co.course_id
        ), program_mappings AS (
            SELECT cp.co_id, cp.po_id, cp.level, cp.updated_at
            FROM co_po_mappings cp JOIN program_outcomes po ON po.id = cp.po_id
            WHERE po.program_id = $1
        )
        SELECT
            (SELECT COUNT(*) FROM scoped_assessments) AS assessments,
            (SELECT COUNT(question_id) FROM scoped_marks) AS marks,
            (SELECT COUNT(*) FROM active_students) AS students,
            (SELECT COUNT(*) FROM scoped_outcomes) AS outcomes,
            (SELECT COUNT(*) FROM program_mappings) AS mappings,
            GREATEST(
                (SELECT MAX(updated_at) FROM scoped_assessments),
                (SELECT MAX(question_updated_at) FROM scoped_marks),
                (SELECT MAX(mark_updated_at) FROM scoped_marks),
                (SELECT MAX(updated_at) FROM scoped_outcomes),
                (SELECT MAX(updated_at) FROM program_mappings)) AS updated_at,
            md5(concat_ws('|',
                (SELECT string_agg(id::text, ',' ORDER BY id) FROM active_students),
                (SELECT string_agg(concat_ws(':', id, course_id, code, description), ',' ORDER BY id) FROM scoped_outcomes),
                (SELECT string_agg(concat_ws(':', co_id, po_id, level), ',' ORDER BY co_id, po_id) FROM program_mappings),
                (SELECT string_agg(concat_ws(':', id, code, name), ',' ORDER BY id) FROM program_courses),
                (SELECT string_agg(concat_ws(':', po.id, po.code, po.description), ',' ORDER BY po.id)
                    FROM program_outcomes po WHERE po.program_id = $1),
                (SELECT concat_ws(':', p.code, p.name) FROM programs p WHERE p.id = $1))) AS digest`
	var v dataVersion
	if err := r.db.GetContext(ctx, &v, query, programID, models.StudentStatusActive); err != nil {
		return "", fmt.Errorf("program version: %w", err)
	}
	return v.String(), nil
}
