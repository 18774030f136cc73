package models

import "time"

// AssessmentType enumerates the kinds of assessment recorded against a course.
type AssessmentType string

const (
	AssessmentTypeQuiz        AssessmentType = "QUIZ"
	AssessmentTypeAssignment  AssessmentType = "ASSIGNMENT"
	AssessmentTypeMidTerm     AssessmentType = "MID_TERM"
	AssessmentTypeLab         AssessmentType = "LAB"
	AssessmentTypeInternal    AssessmentType = "INTERNAL"
	AssessmentTypeEndSemester AssessmentType = "END_SEMESTER"
	AssessmentTypeExternal    AssessmentType = "EXTERNAL"
)

// AssessmentCategory groups assessment types into formative and summative evaluation.
type AssessmentCategory string

const (
	AssessmentCategoryInternal AssessmentCategory = "INTERNAL"
	AssessmentCategoryExternal AssessmentCategory = "EXTERNAL"
)

// Category reports the evaluation category of the type. ok is false for unknown types.
func (t AssessmentType) Category() (AssessmentCategory, bool) {
	switch t {
	case AssessmentTypeQuiz, AssessmentTypeAssignment, AssessmentTypeMidTerm, AssessmentTypeLab, AssessmentTypeInternal:
		return AssessmentCategoryInternal, true
	case AssessmentTypeEndSemester, AssessmentTypeExternal:
		return AssessmentCategoryExternal, true
	default:
		return "", false
	}
}

// Assessment is an evaluation event for a course section.
type Assessment struct {
	ID        string               `db:"id" json:"id"`
	Name      string               `db:"name" json:"name"`
	Type      AssessmentType       `db:"type" json:"type"`
	CourseID  string               `db:"course_id" json:"course_id"`
	SectionID string               `db:"section_id" json:"section_id"`
	CreatedBy string               `db:"created_by" json:"created_by"`
	CreatedAt time.Time            `db:"created_at" json:"created_at"`
	Questions []AssessmentQuestion `db:"-" json:"questions"`
}

// AssessmentQuestion is a scored item of an assessment. COID is nil for unmapped questions.
type AssessmentQuestion struct {
	ID           string  `db:"id" json:"id"`
	AssessmentID string  `db:"assessment_id" json:"assessment_id"`
	Label        string  `db:"label" json:"label"`
	MaxMarks     float64 `db:"max_marks" json:"max_marks"`
	COID         *string `db:"co_id" json:"co_id,omitempty"`
}

// AssessmentScope narrows assessment, student and mark lookups to a course and optional section.
type AssessmentScope struct {
	CourseID  string
	SectionID string
}
