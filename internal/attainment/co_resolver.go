package attainment

import (
	"sort"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

// CourseInput is the data snapshot needed to resolve the COs of one course.
type CourseInput struct {
	Outcomes        []models.CourseOutcome
	Assessments     []models.Assessment
	MarksByQuestion map[string][]models.Mark
	ActiveStudents  StudentSet
}

// CourseResolution holds CO results ordered by code plus the per-question
// statistics they were derived from.
type CourseResolution struct {
	Results       []models.CoAttainmentResult
	QuestionStats map[string]models.QuestionStats
}

type coAccumulator struct {
	questions  int
	students   map[string]struct{}
	pairs      []models.CoAssessmentContribution
	byCategory map[models.AssessmentCategory][]float64
}

// ResolveCourseOutcomes computes one CoAttainmentResult per course outcome.
//
// For every (CO, assessment) pair the percent is the share of attempts that met
// the target across the CO's questions in that assessment. Pairs nobody
// attempted are dropped. Pair percents are averaged per category and the
// categories are blended by the policy weights, renormalised over the
// categories that have data. COs without any pair are returned with
// DataAvailable false.
func ResolveCourseOutcomes(in CourseInput, policy Policy) (*CourseResolution, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	outcomes := make(map[string]models.CourseOutcome, len(in.Outcomes))
	for _, co := range in.Outcomes {
		outcomes[co.ID] = co
	}

	assessments := sortedAssessments(in.Assessments)
	resolution := &CourseResolution{QuestionStats: make(map[string]models.QuestionStats)}
	acc := make(map[string]*coAccumulator)

	for _, assessment := range assessments {
		category, ok := assessment.Type.Category()
		if !ok {
			return nil, invalidInput("assessment %s has unknown type %q", assessment.ID, assessment.Type)
		}

		type pairTotals struct{ attempted, met int }
		totals := make(map[string]*pairTotals)
		var order []string

		for _, question := range assessment.Questions {
			stats, attempted, err := aggregate(question, in.MarksByQuestion[question.ID], in.ActiveStudents, policy.TargetPercent)
			if err != nil {
				return nil, err
			}
			resolution.QuestionStats[question.ID] = stats

			if question.COID == nil {
				continue
			}
			coID := *question.COID
			if _, known := outcomes[coID]; !known || stats.NoData {
				continue
			}

			a := acc[coID]
			if a == nil {
				a = &coAccumulator{students: make(map[string]struct{}), byCategory: make(map[models.AssessmentCategory][]float64)}
				acc[coID] = a
			}
			a.questions++
			for _, id := range attempted {
				a.students[id] = struct{}{}
			}

			t := totals[coID]
			if t == nil {
				t = &pairTotals{}
				totals[coID] = t
				order = append(order, coID)
			}
			t.attempted += stats.Attempted
			t.met += stats.MetThreshold
		}

		for _, coID := range order {
			t := totals[coID]
			if t.attempted == 0 {
				continue
			}
			percent := float64(t.met) / float64(t.attempted) * 100
			a := acc[coID]
			a.pairs = append(a.pairs, models.CoAssessmentContribution{
				AssessmentID:   assessment.ID,
				AssessmentName: assessment.Name,
				Category:       category,
				Attempted:      t.attempted,
				MetThreshold:   t.met,
				Percent:        Round(percent),
			})
			a.byCategory[category] = append(a.byCategory[category], percent)
		}
	}

	results := make([]models.CoAttainmentResult, 0, len(in.Outcomes))
	for _, co := range in.Outcomes {
		result := models.CoAttainmentResult{COID: co.ID, Code: co.Code, Description: co.Description}
		if a := acc[co.ID]; a != nil && len(a.pairs) > 0 {
			fillCourseResult(&result, a, policy)
		}
		results = append(results, result)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Code != results[j].Code {
			return results[i].Code < results[j].Code
		}
		return results[i].COID < results[j].COID
	})

	resolution.Results = results
	return resolution, nil
}

func fillCourseResult(result *models.CoAttainmentResult, a *coAccumulator, policy Policy) {
	weighted, weights := 0.0, 0.0
	for _, category := range []models.AssessmentCategory{models.AssessmentCategoryInternal, models.AssessmentCategoryExternal} {
		percent, ok := mean(a.byCategory[category])
		if !ok {
			continue
		}
		v := Round(percent)
		if category == models.AssessmentCategoryInternal {
			result.InternalPercent = &v
		} else {
			result.ExternalPercent = &v
		}
		w := policy.Weight(category)
		weighted += w * percent
		weights += w
	}

	result.QuestionCount = a.questions
	result.StudentCount = len(a.students)
	result.Assessments = a.pairs

	// every category with data carries zero weight under this policy
	if weights == 0 {
		return
	}

	result.Percent = clampPercent(Round(weighted / weights))
	result.Level = policy.Level(result.Percent)
	result.DataAvailable = true
}

func sortedAssessments(in []models.Assessment) []models.Assessment {
	out := make([]models.Assessment, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
