package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/course-progress-api/internal/aggregate"
	"github.com/noah-isme/course-progress-api/internal/models"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
)

type dashboardRecords interface {
	EnrolledStudents(ctx context.Context, dept string) ([]models.StudentRecord, bool, error)
	Assignments(ctx context.Context, dept, courseID string) ([]models.AssignmentRecord, bool, error)
	CourseCounts(ctx context.Context, courseID, dept string) ([]models.EnrollmentStat, bool, error)
}

// Dashboard view names, also used as request tracking keys.
const (
	ViewSummary      = "summary"
	ViewWeekly       = "weekly"
	ViewRegistration = "registration"
	ViewAverageScore = "average_score"
	ViewEngagement   = "engagement"
	ViewEnrollment   = "enrollment_stats"
	ViewExport       = "export"
)

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	Completion         aggregate.CompletionPolicy
	EnrollmentPageSize int
}

// DashboardService computes dashboard metrics for a filter. Each session and view pair
// has at most one live computation; a superseded one fails with ErrStaleRequest.
type DashboardService struct {
	records dashboardRecords
	tracker *RequestTracker
	metrics *MetricsService
	logger  *zap.Logger
	cfg     DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Records dashboardRecords
	Tracker *RequestTracker
	Metrics *MetricsService
	Logger  *zap.Logger
	Config  DashboardServiceConfig
}

// EnrollmentStatsQuery selects a page of enrollment stats.
type EnrollmentStatsQuery struct {
	Filter models.FilterContext
	SortBy string
	Order  string
	Page   int
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tracker := params.Tracker
	if tracker == nil {
		tracker = NewRequestTracker()
	}
	cfg := params.Config
	if cfg.EnrollmentPageSize <= 0 {
		cfg.EnrollmentPageSize = aggregate.DefaultEnrollmentPageSize
	}
	return &DashboardService{records: params.Records, tracker: tracker, metrics: params.Metrics, logger: logger, cfg: cfg}
}

// tracked runs fn as the newest request for session and view. Results of a request that
// was superseded while running are discarded.
func tracked[T any](ctx context.Context, s *DashboardService, session, view string, fn func(context.Context) (T, bool, error)) (T, bool, error) {
	ticket, ctx := s.tracker.Begin(ctx, session+":"+view)
	defer ticket.Done()

	value, hit, err := fn(ctx)
	if !ticket.Current() {
		s.metrics.RecordStaleRequest(view)
		s.logger.Debug("discarding superseded dashboard result", zap.String("view", view), zap.String("session", session))
		var zero T
		return zero, false, appErrors.ErrStaleRequest
	}
	return value, hit, err
}

func (s *DashboardService) students(ctx context.Context, filter models.FilterContext) ([]models.StudentRecord, bool, error) {
	students, hit, err := s.records.EnrolledStudents(ctx, filter.Department)
	if err != nil {
		return nil, false, err
	}
	return aggregate.FilterRecords(students, filter), hit, nil
}

func (s *DashboardService) assignments(ctx context.Context, filter models.FilterContext) ([]models.AssignmentRecord, bool, error) {
	assignments, hit, err := s.records.Assignments(ctx, filter.Department, filter.CourseID)
	if err != nil {
		return nil, false, err
	}
	return aggregate.FilterRecords(assignments, filter), hit, nil
}

// Registration compares enrolled and exam-registered students.
func (s *DashboardService) Registration(ctx context.Context, session string, filter models.FilterContext) (models.RegistrationSummary, bool, error) {
	filter = filter.Normalize()
	return tracked(ctx, s, session, ViewRegistration, func(ctx context.Context) (models.RegistrationSummary, bool, error) {
		students, hit, err := s.students(ctx, filter)
		if err != nil {
			return models.RegistrationSummary{}, false, err
		}
		return aggregate.Registration(students, filter), hit, nil
	})
}

// AverageScore averages assignment scores over the filtered rows.
func (s *DashboardService) AverageScore(ctx context.Context, session string, filter models.FilterContext) (models.AggregateMetric, bool, error) {
	filter = filter.Normalize()
	return tracked(ctx, s, session, ViewAverageScore, func(ctx context.Context) (models.AggregateMetric, bool, error) {
		assignments, hit, err := s.assignments(ctx, filter)
		if err != nil {
			return models.AggregateMetric{}, false, err
		}
		return aggregate.AverageAssignmentScore(assignments), hit, nil
	})
}

// Weekly builds the week-by-week completion trend.
func (s *DashboardService) Weekly(ctx context.Context, session string, filter models.FilterContext) (models.WeeklySeries, bool, error) {
	filter = filter.Normalize()
	return tracked(ctx, s, session, ViewWeekly, func(ctx context.Context) (models.WeeklySeries, bool, error) {
		assignments, hit, err := s.assignments(ctx, filter)
		if err != nil {
			return nil, false, err
		}
		return aggregate.WeeklyCompletionSeries(assignments, s.cfg.Completion), hit, nil
	})
}

// Engagement builds the engagement radar. The enrollment axis is the filtered cohort
// measured against every enrolled student of the filter's department, or all students
// when no department is selected.
func (s *DashboardService) Engagement(ctx context.Context, session string, filter models.FilterContext) ([]models.EngagementMetric, bool, error) {
	filter = filter.Normalize()
	return tracked(ctx, s, session, ViewEngagement, func(ctx context.Context) ([]models.EngagementMetric, bool, error) {
		return s.engagement(ctx, filter)
	})
}

func (s *DashboardService) engagement(ctx context.Context, filter models.FilterContext) ([]models.EngagementMetric, bool, error) {
	students, studentsHit, err := s.records.EnrolledStudents(ctx, filter.Department)
	if err != nil {
		return nil, false, err
	}
	assignments, assignmentsHit, err := s.assignments(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	return aggregate.Engagement(students, assignments, filter), studentsHit && assignmentsHit, nil
}

// EnrollmentStats returns one sorted page of per-course enrollment counts.
func (s *DashboardService) EnrollmentStats(ctx context.Context, session string, query EnrollmentStatsQuery) (models.EnrollmentStatsPage, bool, error) {
	filter := query.Filter.Normalize()
	field, order := aggregate.ParseEnrollmentSort(query.SortBy, query.Order)
	return tracked(ctx, s, session, ViewEnrollment, func(ctx context.Context) (models.EnrollmentStatsPage, bool, error) {
		stats, hit, err := s.records.CourseCounts(ctx, filter.CourseID, filter.Department)
		if err != nil {
			return models.EnrollmentStatsPage{}, false, err
		}
		views := aggregate.SortEnrollmentStats(stats, field, order)
		return aggregate.PaginateEnrollmentStats(views, query.Page, s.cfg.EnrollmentPageSize), hit, nil
	})
}

// Summary bundles every headline metric for the filter.
func (s *DashboardService) Summary(ctx context.Context, session string, filter models.FilterContext) (models.DashboardSummary, bool, error) {
	filter = filter.Normalize()
	return tracked(ctx, s, session, ViewSummary, func(ctx context.Context) (models.DashboardSummary, bool, error) {
		return s.summary(ctx, filter)
	})
}

// Report computes the summary used by exports. It is tracked separately from the
// interactive summary so an export never cancels the on-screen view.
func (s *DashboardService) Report(ctx context.Context, session string, filter models.FilterContext) (models.DashboardSummary, error) {
	filter = filter.Normalize()
	summary, _, err := tracked(ctx, s, session, ViewExport, func(ctx context.Context) (models.DashboardSummary, bool, error) {
		return s.summary(ctx, filter)
	})
	return summary, err
}

func (s *DashboardService) summary(ctx context.Context, filter models.FilterContext) (models.DashboardSummary, bool, error) {
	students, studentsHit, err := s.students(ctx, filter)
	if err != nil {
		return models.DashboardSummary{}, false, err
	}
	assignments, assignmentsHit, err := s.assignments(ctx, filter)
	if err != nil {
		return models.DashboardSummary{}, false, err
	}
	engagement, engagementHit, err := s.engagement(ctx, filter)
	if err != nil {
		return models.DashboardSummary{}, false, err
	}

	return models.DashboardSummary{
		Filter:         filter,
		Registration:   aggregate.Registration(students, filter),
		AverageScore:   aggregate.AverageAssignmentScore(assignments),
		Weekly:         aggregate.WeeklyCompletionSeries(assignments, s.cfg.Completion),
		Engagement:     engagement,
		StudentCount:   len(students),
		AssignmentRows: len(assignments),
	}, studentsHit && assignmentsHit && engagementHit, nil
}
