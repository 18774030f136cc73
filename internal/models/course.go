package models

// Program is an accredited degree programme owning a set of program outcomes.
type Program struct {
	ID   string `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// Course belongs to a program and owns its course outcomes.
type Course struct {
	ID        string `db:"id" json:"id"`
	ProgramID string `db:"program_id" json:"program_id"`
	Code      string `db:"code" json:"code"`
	Name      string `db:"name" json:"name"`
}

// Section is a teaching group of a course.
type Section struct {
	ID       string `db:"id" json:"id"`
	CourseID string `db:"course_id" json:"course_id"`
	Name     string `db:"name" json:"name"`
}
