package attainment

import (
	"math"
	"sort"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

// StudentSet is a set of student IDs.
type StudentSet map[string]struct{}

// ActiveStudents builds the set of students whose status is ACTIVE.
func ActiveStudents(students []models.Student) StudentSet {
	set := make(StudentSet, len(students))
	for _, s := range students {
		if s.Status == models.StudentStatusActive {
			set[s.ID] = struct{}{}
		}
	}
	return set
}

// Has reports whether id is in the set.
func (s StudentSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// AggregateQuestion collapses the marks of one question into QuestionStats.
// Only marks of active students are counted; students without a mark are not
// attempted. A question nobody attempted is flagged NoData so it never enters
// a denominator downstream.
func AggregateQuestion(question models.AssessmentQuestion, marks []models.Mark, active StudentSet, targetPercent float64) (models.QuestionStats, error) {
	stats, _, err := aggregate(question, marks, active, targetPercent)
	return stats, err
}

// aggregate also returns the sorted IDs of the students counted as attempted.
func aggregate(question models.AssessmentQuestion, marks []models.Mark, active StudentSet, targetPercent float64) (models.QuestionStats, []string, error) {
	stats := models.QuestionStats{QuestionID: question.ID}
	if !finite(question.MaxMarks) || question.MaxMarks <= 0 {
		return stats, nil, invalidInput("question %s has non-positive max marks", question.ID)
	}

	scores := make(map[string]float64, len(marks))
	for _, mark := range marks {
		if mark.QuestionID != "" && mark.QuestionID != question.ID {
			continue
		}
		if math.IsNaN(mark.Value) || mark.Value < 0 || mark.Value > question.MaxMarks {
			return stats, nil, invalidInput("mark %v of student %s is outside [0, %v] for question %s",
				mark.Value, mark.StudentID, question.MaxMarks, question.ID)
		}
		if !active.Has(mark.StudentID) {
			continue
		}
		scores[mark.StudentID] = mark.Value
	}

	if len(scores) == 0 {
		stats.NoData = true
		return stats, nil, nil
	}

	students := make([]string, 0, len(scores))
	for id := range scores {
		students = append(students, id)
	}
	sort.Strings(students)

	sum := 0.0
	for _, id := range students {
		value := scores[id]
		// value/max >= target/100, compared without division so boundaries stay exact
		if value*100 >= targetPercent*question.MaxMarks {
			stats.MetThreshold++
		}
		sum += value
	}
	stats.Attempted = len(students)
	stats.MeanPercent = Round(sum / (float64(stats.Attempted) * question.MaxMarks) * 100)
	return stats, students, nil
}
