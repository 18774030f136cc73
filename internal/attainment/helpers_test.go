package attainment

import (
	"time"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

func strPtr(s string) *string { return &s }

func question(id, assessmentID, coID string, max float64) models.AssessmentQuestion {
	q := models.AssessmentQuestion{ID: id, AssessmentID: assessmentID, Label: id, MaxMarks: max}
	if coID != "" {
		q.COID = strPtr(coID)
	}
	return q
}

func marks(questionID string, byStudent map[string]float64) []models.Mark {
	out := make([]models.Mark, 0, len(byStudent))
	for student, value := range byStudent {
		out = append(out, models.Mark{StudentID: student, QuestionID: questionID, Value: value})
	}
	return out
}

func activeSet(ids ...string) StudentSet {
	students := make([]models.Student, 0, len(ids))
	for _, id := range ids {
		students = append(students, models.Student{ID: id, Status: models.StudentStatusActive})
	}
	return ActiveStudents(students)
}

var baseTime = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
