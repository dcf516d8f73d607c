// Package aggregate derives dashboard metrics from raw course records. Every function is
// pure: malformed input degrades to empty-safe results instead of failing.
package aggregate

import (
	"github.com/noah-isme/course-progress-api/internal/models"
)

// Filterable is implemented by records exposing the dashboard filter dimensions.
type Filterable interface {
	DimensionValue(models.Dimension) (string, bool)
}

// Predicate folds the clauses into a single AND-ed equality check.
func Predicate[T Filterable](clauses []models.FilterClause) func(T) bool {
	match := func(T) bool { return true }
	for _, clause := range clauses {
		prev, clause := match, clause
		match = func(record T) bool {
			if !prev(record) {
				return false
			}
			value, ok := record.DimensionValue(clause.Dimension)
			return ok && value == clause.Value
		}
	}
	return match
}

// FilterRecords returns the records matching every present dimension of ctx. The input
// is returned unchanged when ctx constrains nothing.
func FilterRecords[T Filterable](records []T, ctx models.FilterContext) []T {
	clauses := ctx.Normalize().Clauses()
	if len(clauses) == 0 {
		return records
	}
	match := Predicate[T](clauses)
	filtered := make([]T, 0, len(records))
	for _, record := range records {
		if match(record) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// Percentage returns numerator/denominator*100, or 0 when the denominator is not positive.
func Percentage(numerator float64, denominator int) float64 {
	if denominator <= 0 || numerator <= 0 {
		return 0
	}
	return numerator / float64(denominator) * 100
}
