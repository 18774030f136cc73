package models

// StudentStatus is the enrollment state of a student within a section.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "ACTIVE"
	StudentStatusWithdrawn StudentStatus = "WITHDRAWN"
	StudentStatusGraduated StudentStatus = "GRADUATED"
)

// Student is a learner enrolled in a course section.
type Student struct {
	ID             string        `db:"id" json:"id"`
	RegisterNumber string        `db:"register_number" json:"register_number"`
	SectionID      string        `db:"section_id" json:"section_id"`
	Status         StudentStatus `db:"status" json:"status"`
}

// Mark is a student's score on a single assessment question.
type Mark struct {
	StudentID  string  `db:"student_id" json:"student_id"`
	QuestionID string  `db:"question_id" json:"question_id"`
	Value      float64 `db:"value" json:"value"`
}
