package models

import "time"

// QuestionStats summarises the marks recorded against one assessment question.
type QuestionStats struct {
	QuestionID   string  `json:"questionId"`
	Attempted    int     `json:"attempted"`
	MetThreshold int     `json:"metThreshold"`
	MeanPercent  float64 `json:"meanPercent"`
	NoData       bool    `json:"noData"`
}

// CoAssessmentContribution is the share of one assessment in a course outcome's attainment.
type CoAssessmentContribution struct {
	AssessmentID   string             `json:"assessmentId"`
	AssessmentName string             `json:"assessmentName"`
	Category       AssessmentCategory `json:"category"`
	Attempted      int                `json:"attempted"`
	MetThreshold   int                `json:"metThreshold"`
	Percent        float64            `json:"percent"`
}

// CoAttainmentResult is the computed attainment of a single course outcome.
// Percent and Level are zero whenever DataAvailable is false.
type CoAttainmentResult struct {
	COID            string                     `json:"coId"`
	Code            string                     `json:"code"`
	Description     string                     `json:"description"`
	InternalPercent *float64                   `json:"internalPercent,omitempty"`
	ExternalPercent *float64                   `json:"externalPercent,omitempty"`
	Percent         float64                    `json:"percent"`
	Level           int                        `json:"level"`
	DataAvailable   bool                       `json:"dataAvailable"`
	QuestionCount   int                        `json:"questionCount"`
	StudentCount    int                        `json:"studentCount"`
	Assessments     []CoAssessmentContribution `json:"assessments,omitempty"`
}

// PoContributor describes one course outcome feeding a program outcome.
type PoContributor struct {
	COID         string  `json:"coId"`
	COCode       string  `json:"coCode"`
	CourseCode   string  `json:"courseCode"`
	MappingLevel int     `json:"mappingLevel"`
	Percent      float64 `json:"percent"`
}

// PoAttainmentResult is the computed attainment of a single program outcome.
type PoAttainmentResult struct {
	POID          string          `json:"poId"`
	Code          string          `json:"code"`
	Description   string          `json:"description"`
	Percent       float64         `json:"percent"`
	Level         int             `json:"level"`
	DataAvailable bool            `json:"dataAvailable"`
	Contributors  []PoContributor `json:"contributors"`
}

// ReportSubject identifies the course or program a report describes.
type ReportSubject struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// OutcomeAttainment is the serialised form of an outcome's attainment.
type OutcomeAttainment struct {
	Code          string  `json:"code"`
	Description   string  `json:"description"`
	Level         int     `json:"level"`
	Percent       float64 `json:"percent"`
	DataAvailable bool    `json:"dataAvailable"`
}

// CourseAttainmentReport lists CO attainment for a course or one of its sections.
type CourseAttainmentReport struct {
	CourseOrProgram ReportSubject       `json:"courseOrProgram"`
	SectionID       string              `json:"sectionId,omitempty"`
	Outcomes        []OutcomeAttainment `json:"outcomes"`
	GeneratedAt     time.Time           `json:"generatedAt"`
}

// ProgramOutcomeAttainment extends OutcomeAttainment with the contributing course outcomes.
type ProgramOutcomeAttainment struct {
	OutcomeAttainment
	Contributors []PoContributor `json:"contributors"`
}

// ProgramAttainmentReport lists PO attainment for a program.
type ProgramAttainmentReport struct {
	CourseOrProgram ReportSubject              `json:"courseOrProgram"`
	Outcomes        []ProgramOutcomeAttainment `json:"outcomes"`
	GeneratedAt     time.Time                  `json:"generatedAt"`
}

// CourseOutcomeDetail carries the per-category and per-assessment breakdown of a CO.
type CourseOutcomeDetail struct {
	OutcomeAttainment
	InternalPercent *float64                   `json:"internalPercent,omitempty"`
	ExternalPercent *float64                   `json:"externalPercent,omitempty"`
	QuestionCount   int                        `json:"questionCount"`
	StudentCount    int                        `json:"studentCount"`
	Assessments     []CoAssessmentContribution `json:"assessments"`
}

// QuestionDetail pairs a question with its aggregated statistics.
type QuestionDetail struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	MaxMarks float64 `json:"maxMarks"`
	COCode   string  `json:"coCode,omitempty"`
	QuestionStats
}

// AssessmentDetail lists the questions of one assessment with their statistics.
type AssessmentDetail struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Type      AssessmentType     `json:"type"`
	Category  AssessmentCategory `json:"category"`
	SectionID string             `json:"sectionId"`
	Questions []QuestionDetail   `json:"questions"`
}

// CourseAttainmentDetailReport is the superset course view used by accreditation staff.
type CourseAttainmentDetailReport struct {
	CourseOrProgram  ReportSubject         `json:"courseOrProgram"`
	SectionID        string                `json:"sectionId,omitempty"`
	Outcomes         []CourseOutcomeDetail `json:"outcomes"`
	Assessments      []AssessmentDetail    `json:"assessments"`
	EnrolledStudents int                   `json:"enrolledStudents"`
	GeneratedAt      time.Time             `json:"generatedAt"`
}
