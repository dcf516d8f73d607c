package aggregate

import (
	"github.com/noah-isme/course-progress-api/internal/models"
)

// MissingPolicy decides how weeks without any recorded value are counted.
type MissingPolicy int

const (
	// MissingCountsNotCompleted counts missing scores as not completed.
	MissingCountsNotCompleted MissingPolicy = iota
	// MissingExcluded leaves missing scores out of both counts.
	MissingExcluded
)

// CompletionPolicy fixes the meaning of each score state in the weekly series.
type CompletionPolicy struct {
	// NotReleasedCountsComplete treats the sentinel as exempted, which counts as done.
	NotReleasedCountsComplete bool
	Missing                   MissingPolicy
	// Origin is the raw week number of series index 0.
	Origin int
}

// DefaultCompletionPolicy mirrors the dashboard's established behaviour.
func DefaultCompletionPolicy() CompletionPolicy {
	return CompletionPolicy{NotReleasedCountsComplete: true, Missing: MissingCountsNotCompleted}
}

// RecordAverage is the mean of the record's strictly positive weekly scores.
// ok is false when the record has none.
func RecordAverage(record models.AssignmentRecord) (avg float64, ok bool) {
	var sum float64
	var count int
	for _, score := range record.Weeks {
		if score.Positive() {
			sum += score.Value
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// AverageAssignmentScore averages per-record means over all records. Records without a
// positive score add 0 to the numerator but still count in the denominator.
func AverageAssignmentScore(assignments []models.AssignmentRecord) models.AggregateMetric {
	if len(assignments) == 0 {
		return models.AggregateMetric{}
	}
	var total float64
	for _, record := range assignments {
		if avg, ok := RecordAverage(record); ok {
			total += avg
		}
	}
	return models.AggregateMetric{
		Value:       total / float64(len(assignments)),
		Numerator:   total,
		Denominator: len(assignments),
	}
}

// SeriesBound returns the last week index covered by the series, or -1 when there is
// nothing to report. The bound is the largest first-sentinel index over all records;
// when no record carries a sentinel the longest week range is used instead.
func SeriesBound(assignments []models.AssignmentRecord, origin int) int {
	bound, longest := -1, -1
	for _, record := range assignments {
		scores := record.WeeklyScores(origin)
		if len(scores)-1 > longest {
			longest = len(scores) - 1
		}
		for idx, score := range scores {
			if score.State == models.ScoreNotReleased {
				if idx > bound {
					bound = idx
				}
				break
			}
		}
	}
	if bound < 0 {
		return longest
	}
	return bound
}

// WeeklyCompletionSeries counts completed and not completed records for each week index
// from 0 to the series bound inclusive.
func WeeklyCompletionSeries(assignments []models.AssignmentRecord, policy CompletionPolicy) models.WeeklySeries {
	bound := SeriesBound(assignments, policy.Origin)
	if bound < 0 {
		return models.WeeklySeries{}
	}

	series := make(models.WeeklySeries, 0, bound+1)
	for idx := 0; idx <= bound; idx++ {
		point := models.WeeklyPoint{WeekIndex: idx}
		for _, record := range assignments {
			switch score := record.Score(policy.Origin + idx); score.State {
			case models.ScoreSubmitted:
				point.CompletedCount++
			case models.ScoreNotReleased:
				if policy.NotReleasedCountsComplete {
					point.CompletedCount++
				} else {
					point.NotCompletedCount++
				}
			case models.ScoreMissing:
				if policy.Missing == MissingCountsNotCompleted {
					point.NotCompletedCount++
				}
			default:
				point.NotCompletedCount++
			}
		}
		series = append(series, point)
	}
	return series
}
