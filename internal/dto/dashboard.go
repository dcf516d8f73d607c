package dto

import "github.com/noah-isme/course-progress-api/internal/models"

// FilterQuery binds the shared dashboard filter from the query string.
type FilterQuery struct {
	Department string `form:"dept"`
	CourseID   string `form:"course_id"`
	Year       string `form:"year"`
}

// Context converts the query into a filter context.
func (q FilterQuery) Context() models.FilterContext {
	return models.FilterContext{Department: q.Department, CourseID: q.CourseID, Year: q.Year}.Normalize()
}

// EnrollmentStatsQuery binds enrollment stats sorting and paging.
type EnrollmentStatsQuery struct {
	FilterQuery
	SortBy string `form:"sort_by"`
	Order  string `form:"order"`
	Page   int    `form:"page"`
}

// ExportQuery selects the report format.
type ExportQuery struct {
	FilterQuery
	Format string `form:"format"`
}

// MentorProgressQuery selects one mentor's group.
type MentorProgressQuery struct {
	FilterQuery
	Mentor string `form:"mentor" binding:"required"`
}
