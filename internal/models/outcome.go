package models

// CourseOutcome is a learning objective for one course. Code is unique per course.
type CourseOutcome struct {
	ID          string `db:"id" json:"id"`
	CourseID    string `db:"course_id" json:"course_id"`
	Code        string `db:"code" json:"code"`
	Description string `db:"description" json:"description"`
}

// ProgramOutcome is a learning objective for a whole program.
type ProgramOutcome struct {
	ID          string `db:"id" json:"id"`
	ProgramID   string `db:"program_id" json:"program_id"`
	Code        string `db:"code" json:"code"`
	Description string `db:"description" json:"description"`
}

// CoPoMapping records how strongly a course outcome feeds a program outcome.
// Only levels 1-3 are persisted; a missing row means no contribution.
type CoPoMapping struct {
	COID  string `db:"co_id" json:"co_id"`
	POID  string `db:"po_id" json:"po_id"`
	Level int    `db:"level" json:"level"`
}
