package aggregate

import (
	"sort"
	"strings"

	"github.com/noah-isme/course-progress-api/internal/models"
)

// EnrollmentSortField selects the enrollment stats ordering key.
type EnrollmentSortField string

// SortOrder is ascending or descending.
type SortOrder string

const (
	SortByName       EnrollmentSortField = "name"
	SortByEnrollment EnrollmentSortField = "enrollment"

	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"

	// DefaultEnrollmentPageSize is the number of courses per chart page.
	DefaultEnrollmentPageSize = 5

	labelLimit     = 25
	labelTruncated = 22
)

// ParseEnrollmentSort normalises user supplied sort parameters, defaulting to
// enrollment count descending.
func ParseEnrollmentSort(field, order string) (EnrollmentSortField, SortOrder) {
	f := EnrollmentSortField(strings.ToLower(strings.TrimSpace(field)))
	if f != SortByName {
		f = SortByEnrollment
	}
	o := SortOrder(strings.ToLower(strings.TrimSpace(order)))
	if o != SortAsc {
		o = SortDesc
	}
	return f, o
}

// ChartLabel shortens course names longer than 25 characters to 22 plus an ellipsis.
func ChartLabel(name string) string {
	runes := []rune(name)
	if len(runes) <= labelLimit {
		return name
	}
	return string(runes[:labelTruncated]) + "..."
}

// SortEnrollmentStats returns chart-ready views ordered by field and order. Ties keep
// their input order.
func SortEnrollmentStats(stats []models.EnrollmentStat, field EnrollmentSortField, order SortOrder) []models.EnrollmentStatView {
	views := make([]models.EnrollmentStatView, 0, len(stats))
	for _, stat := range stats {
		views = append(views, models.EnrollmentStatView{
			CourseID:        stat.CourseID,
			CourseName:      stat.CourseName,
			Label:           ChartLabel(stat.CourseName),
			EnrollmentCount: int(stat.EnrollmentCount),
		})
	}

	less := func(a, b models.EnrollmentStatView) bool {
		if field == SortByName {
			return strings.ToLower(a.CourseName) < strings.ToLower(b.CourseName)
		}
		return a.EnrollmentCount < b.EnrollmentCount
	}
	sort.SliceStable(views, func(i, j int) bool {
		if order == SortDesc {
			return less(views[j], views[i])
		}
		return less(views[i], views[j])
	})
	return views
}

// PaginateEnrollmentStats slices one page out of views. Pages start at 1 and
// out-of-range pages are clamped.
func PaginateEnrollmentStats(views []models.EnrollmentStatView, page, pageSize int) models.EnrollmentStatsPage {
	if pageSize <= 0 {
		pageSize = DefaultEnrollmentPageSize
	}
	totalPages := (len(views) + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(views) {
		start = len(views)
	}
	if end > len(views) {
		end = len(views)
	}
	items := make([]models.EnrollmentStatView, end-start)
	copy(items, views[start:end])

	return models.EnrollmentStatsPage{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: len(views),
		TotalPages: totalPages,
	}
}
