package models

import "time"

// AggregateMetric is a derived scalar together with the counts it was computed from.
type AggregateMetric struct {
	Value       float64 `json:"value"`
	Numerator   float64 `json:"numerator"`
	Denominator int     `json:"denominator"`
}

// RegistrationSummary compares enrolled students with those who completed exam registration.
type RegistrationSummary struct {
	EnrolledCount   int     `json:"enrolled_count"`
	RegisteredCount int     `json:"registered_count"`
	Ratio           float64 `json:"ratio"`
}

// WeeklyPoint is one entry of the completion trend series.
type WeeklyPoint struct {
	WeekIndex         int `json:"week_index"`
	CompletedCount    int `json:"completed_count"`
	NotCompletedCount int `json:"not_completed_count"`
}

// WeeklySeries is the ordered completion trend.
type WeeklySeries []WeeklyPoint

// MentorGroup collects one mentor's mentees and their assignment rows.
type MentorGroup struct {
	MentorName  string             `json:"mentor_name"`
	Mentees     []MenteeRecord     `json:"mentees"`
	Assignments []AssignmentRecord `json:"assignments"`
}

// MentorWeekStat counts mentee submissions for one raw week number.
type MentorWeekStat struct {
	Week         int `json:"week"`
	Completed    int `json:"completed"`
	NotCompleted int `json:"not_completed"`
}

// MenteeProgress counts the weeks a mentee submitted within the mentor view window.
type MenteeProgress struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	RollNo       string `json:"roll_no"`
	Department   string `json:"dept"`
	Completed    int    `json:"completed"`
	NotCompleted int    `json:"not_completed"`
}

// EnrollmentStatView is an EnrollmentStat prepared for chart display.
type EnrollmentStatView struct {
	CourseID        string `json:"course_id"`
	CourseName      string `json:"course_name"`
	Label           string `json:"label"`
	EnrollmentCount int    `json:"enrollment_count"`
}

// EnrollmentStatsPage is one page of sorted enrollment stats.
type EnrollmentStatsPage struct {
	Items      []EnrollmentStatView `json:"items"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalCount int                  `json:"total_count"`
	TotalPages int                  `json:"total_pages"`
}

// EngagementMetric is one axis of the engagement radar.
type EngagementMetric struct {
	Metric   string `json:"metric"`
	Value    int    `json:"value"`
	FullMark int    `json:"full_mark"`
}

// DashboardSummary bundles the headline metrics for a filter.
type DashboardSummary struct {
	Filter         FilterContext       `json:"filter"`
	Registration   RegistrationSummary `json:"registration"`
	AverageScore   AggregateMetric     `json:"average_score"`
	Weekly         WeeklySeries        `json:"weekly"`
	Engagement     []EngagementMetric  `json:"engagement"`
	StudentCount   int                 `json:"student_count"`
	AssignmentRows int                 `json:"assignment_rows"`
}

// SystemMetrics is a point-in-time summary of service instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	SourceFetchCount         uint64    `json:"source_fetch_count"`
	SourceFetchErrors        uint64    `json:"source_fetch_errors"`
	AverageSourceFetchMs     float64   `json:"average_source_fetch_ms"`
	StaleRequestsDropped     uint64    `json:"stale_requests_dropped"`
	ChatSubmissions          uint64    `json:"chat_submissions"`
	ChatFailures             uint64    `json:"chat_failures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// MentorSummary is the mentor view of one group.
type MentorSummary struct {
	MentorName      string           `json:"mentor_name"`
	MenteeCount     int              `json:"mentee_count"`
	AssignmentCount int              `json:"assignment_count"`
	Mentees         []MenteeRecord   `json:"mentees"`
	Weekly          []MentorWeekStat `json:"weekly"`
}
