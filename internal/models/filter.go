package models

import "strings"

// FilterContext narrows record collections. An empty field places no constraint on
// its dimension.
type FilterContext struct {
	Department string `json:"dept,omitempty"`
	CourseID   string `json:"course_id,omitempty"`
	Year       string `json:"year,omitempty"`
}

// FilterClause is one equality constraint on a dimension.
type FilterClause struct {
	Dimension Dimension
	Value     string
}

// Normalize trims whitespace from every dimension.
func (f FilterContext) Normalize() FilterContext {
	return FilterContext{
		Department: strings.TrimSpace(f.Department),
		CourseID:   strings.TrimSpace(f.CourseID),
		Year:       strings.TrimSpace(f.Year),
	}
}

// Clauses lists the present dimensions in a fixed order.
func (f FilterContext) Clauses() []FilterClause {
	candidates := [...]FilterClause{
		{Dimension: DimensionDepartment, Value: f.Department},
		{Dimension: DimensionCourse, Value: f.CourseID},
		{Dimension: DimensionYear, Value: f.Year},
	}
	clauses := make([]FilterClause, 0, len(candidates))
	for _, clause := range candidates {
		if clause.Value != "" {
			clauses = append(clauses, clause)
		}
	}
	return clauses
}

// IsEmpty reports whether no dimension is constrained.
func (f FilterContext) IsEmpty() bool {
	return f.Department == "" && f.CourseID == "" && f.Year == ""
}

// Key renders a stable identifier for cache keys and request tracking.
func (f FilterContext) Key() string {
	return strings.Join([]string{
		strings.ReplaceAll(f.Department, ":", "|"),
		strings.ReplaceAll(f.CourseID, ":", "|"),
		strings.ReplaceAll(f.Year, ":", "|"),
	}, ":")
}
