package aggregate

import (
	"math"

	"github.com/noah-isme/course-progress-api/internal/models"
)

// Registration counts students matching ctx and those among them who completed exam
// registration.
func Registration(students []models.StudentRecord, ctx models.FilterContext) models.RegistrationSummary {
	enrolled := FilterRecords(students, ctx)
	registered := 0
	for _, student := range enrolled {
		if student.PaymentComplete() {
			registered++
		}
	}
	return models.RegistrationSummary{
		EnrolledCount:   len(enrolled),
		RegisteredCount: registered,
		Ratio:           Percentage(float64(registered), len(enrolled)),
	}
}

// Engagement builds the three radar axes: share of students in the filtered cohort,
// exam registration rate within it and the average assignment score. Values are rounded.
func Engagement(students []models.StudentRecord, assignments []models.AssignmentRecord, ctx models.FilterContext) []models.EngagementMetric {
	registration := Registration(students, ctx)
	average := AverageAssignmentScore(FilterRecords(assignments, ctx))

	return []models.EngagementMetric{
		{Metric: "Course Enrollment", Value: round(Percentage(float64(registration.EnrolledCount), len(students))), FullMark: 100},
		{Metric: "Exam Registration", Value: round(registration.Ratio), FullMark: 100},
		{Metric: "Score", Value: round(average.Value), FullMark: 100},
	}
}

func round(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return int(math.Round(v))
}
