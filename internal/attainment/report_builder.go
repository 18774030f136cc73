package attainment

import (
	"sort"
	"time"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

// BuildCourseReport assembles CO results into the serialisable course report.
func BuildCourseReport(course models.Course, sectionID string, results []models.CoAttainmentResult, generatedAt time.Time) models.CourseAttainmentReport {
	sorted := sortedCourseResults(results)
	outcomes := make([]models.OutcomeAttainment, 0, len(sorted))
	for _, r := range sorted {
		outcomes = append(outcomes, outcomeAttainment(r.Code, r.Description, r.Level, r.Percent, r.DataAvailable))
	}
	return models.CourseAttainmentReport{
		CourseOrProgram: models.ReportSubject{ID: course.ID, Code: course.Code, Name: course.Name},
		SectionID:       sectionID,
		Outcomes:        outcomes,
		GeneratedAt:     generatedAt.UTC(),
	}
}

// BuildProgramReport assembles PO results into the serialisable program report.
func BuildProgramReport(program models.Program, results []models.PoAttainmentResult, generatedAt time.Time) models.ProgramAttainmentReport {
	sorted := make([]models.PoAttainmentResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Code != sorted[j].Code {
			return sorted[i].Code < sorted[j].Code
		}
		return sorted[i].POID < sorted[j].POID
	})

	outcomes := make([]models.ProgramOutcomeAttainment, 0, len(sorted))
	for _, r := range sorted {
		contributors := make([]models.PoContributor, 0, len(r.Contributors))
		if r.DataAvailable {
			contributors = append(contributors, r.Contributors...)
			sortContributors(contributors)
		}
		outcomes = append(outcomes, models.ProgramOutcomeAttainment{
			OutcomeAttainment: outcomeAttainment(r.Code, r.Description, r.Level, r.Percent, r.DataAvailable),
			Contributors:      contributors,
		})
	}
	return models.ProgramAttainmentReport{
		CourseOrProgram: models.ReportSubject{ID: program.ID, Code: program.Code, Name: program.Name},
		Outcomes:        outcomes,
		GeneratedAt:     generatedAt.UTC(),
	}
}

// CourseDetailInput carries what the detailed course report shows beyond CO results.
type CourseDetailInput struct {
	Course           models.Course
	SectionID        string
	Outcomes         []models.CourseOutcome
	Assessments      []models.Assessment
	Resolution       *CourseResolution
	EnrolledStudents int
}

// BuildCourseDetailReport assembles the superset course view with assessment and question detail.
func BuildCourseDetailReport(in CourseDetailInput, generatedAt time.Time) models.CourseAttainmentDetailReport {
	var results []models.CoAttainmentResult
	stats := map[string]models.QuestionStats{}
	if in.Resolution != nil {
		results = in.Resolution.Results
		stats = in.Resolution.QuestionStats
	}

	sorted := sortedCourseResults(results)
	outcomes := make([]models.CourseOutcomeDetail, 0, len(sorted))
	for _, r := range sorted {
		detail := models.CourseOutcomeDetail{
			OutcomeAttainment: outcomeAttainment(r.Code, r.Description, r.Level, r.Percent, r.DataAvailable),
			InternalPercent:   r.InternalPercent,
			ExternalPercent:   r.ExternalPercent,
			QuestionCount:     r.QuestionCount,
			StudentCount:      r.StudentCount,
			Assessments:       r.Assessments,
		}
		if detail.Assessments == nil {
			detail.Assessments = []models.CoAssessmentContribution{}
		}
		outcomes = append(outcomes, detail)
	}

	codes := make(map[string]string, len(in.Outcomes))
	for _, co := range in.Outcomes {
		codes[co.ID] = co.Code
	}

	assessments := make([]models.AssessmentDetail, 0, len(in.Assessments))
	for _, a := range sortedAssessments(in.Assessments) {
		category, _ := a.Type.Category()
		questions := make([]models.QuestionDetail, 0, len(a.Questions))
		for _, q := range a.Questions {
			detail := models.QuestionDetail{ID: q.ID, Label: q.Label, MaxMarks: q.MaxMarks, QuestionStats: stats[q.ID]}
			detail.QuestionID = q.ID
			if q.COID != nil {
				detail.COCode = codes[*q.COID]
			}
			questions = append(questions, detail)
		}
		sort.SliceStable(questions, func(i, j int) bool {
			if questions[i].Label != questions[j].Label {
				return questions[i].Label < questions[j].Label
			}
			return questions[i].ID < questions[j].ID
		})
		assessments = append(assessments, models.AssessmentDetail{
			ID:        a.ID,
			Name:      a.Name,
			Type:      a.Type,
			Category:  category,
			SectionID: a.SectionID,
			Questions: questions,
		})
	}

	return models.CourseAttainmentDetailReport{
		CourseOrProgram:  models.ReportSubject{ID: in.Course.ID, Code: in.Course.Code, Name: in.Course.Name},
		SectionID:        in.SectionID,
		Outcomes:         outcomes,
		Assessments:      assessments,
		EnrolledStudents: in.EnrolledStudents,
		GeneratedAt:      generatedAt.UTC(),
	}
}

// outcomeAttainment pins percent and level to zero for outcomes without data.
func outcomeAttainment(code, description string, level int, percent float64, dataAvailable bool) models.OutcomeAttainment {
	if !dataAvailable {
		level, percent = 0, 0
	}
	return models.OutcomeAttainment{
		Code:          code,
		Description:   description,
		Level:         level,
		Percent:       percent,
		DataAvailable: dataAvailable,
	}
}

func sortedCourseResults(results []models.CoAttainmentResult) []models.CoAttainmentResult {
	sorted := make([]models.CoAttainmentResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Code != sorted[j].Code {
			return sorted[i].Code < sorted[j].Code
		}
		return sorted[i].COID < sorted[j].COID
	})
	return sorted
}
