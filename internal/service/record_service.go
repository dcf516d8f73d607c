package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-progress-api/internal/models"
)

const recordsCachePattern = "records:*"

// RecordSource supplies raw course records. It is implemented by the upstream REST
// repository and the Postgres repository.
type RecordSource interface {
	Students(ctx context.Context) ([]models.StudentRecord, error)
	EnrolledStudents(ctx context.Context, dept string) ([]models.StudentRecord, error)
	Assignments(ctx context.Context, dept, courseID string) ([]models.AssignmentRecord, error)
	Courses(ctx context.Context) ([]models.CourseRecord, error)
	Mentees(ctx context.Context) ([]models.MenteeRecord, error)
	MenteeAssignments(ctx context.Context) ([]models.AssignmentRecord, error)
	CourseCounts(ctx context.Context, courseID, dept string) ([]models.EnrollmentStat, error)
}

// RecordServiceParams groups constructor dependencies.
type RecordServiceParams struct {
	Source     RecordSource
	SourceName string
	Cache      *CacheService
	Metrics    *MetricsService
	Logger     *zap.Logger
}

// RecordService fetches raw records through the cache. Fetch failures are logged here
// and returned to the caller unchanged.
type RecordService struct {
	source     RecordSource
	sourceName string
	cache      *CacheService
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewRecordService constructs a RecordService.
func NewRecordService(params RecordServiceParams) *RecordService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordService{
		source:     params.Source,
		sourceName: params.SourceName,
		cache:      params.Cache,
		metrics:    params.Metrics,
		logger:     logger,
	}
}

func recordKey(dataset string, parts ...string) string {
	key := "records:" + dataset
	for _, part := range parts {
		key += ":" + strings.ReplaceAll(part, ":", "|")
	}
	return key
}

func fetchRecords[T any](ctx context.Context, s *RecordService, dataset, key string, load func(context.Context) (T, error)) (T, bool, error) {
	return Remember(ctx, s.cache, key, func(ctx context.Context) (T, error) {
		start := time.Now()
		value, err := load(ctx)
		s.metrics.ObserveSourceFetch(s.sourceName, dataset, time.Since(start), err)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("record fetch failed",
				zap.String("source", s.sourceName),
				zap.String("dataset", dataset),
				zap.Error(err),
			)
		}
		return value, err
	})
}

// Students returns every student row.
func (s *RecordService) Students(ctx context.Context) ([]models.StudentRecord, bool, error) {
	return fetchRecords(ctx, s, "students", recordKey("students"), s.source.Students)
}

// EnrolledStudents returns enrollment rows for a department, or all when dept is empty.
func (s *RecordService) EnrolledStudents(ctx context.Context, dept string) ([]models.StudentRecord, bool, error) {
	return fetchRecords(ctx, s, "enrolled", recordKey("enrolled", dept), func(ctx context.Context) ([]models.StudentRecord, error) {
		return s.source.EnrolledStudents(ctx, dept)
	})
}

// Assignments returns assignment rows narrowed by department and course.
func (s *RecordService) Assignments(ctx context.Context, dept, courseID string) ([]models.AssignmentRecord, bool, error) {
	return fetchRecords(ctx, s, "assignments", recordKey("assignments", dept, courseID), func(ctx context.Context) ([]models.AssignmentRecord, error) {
		return s.source.Assignments(ctx, dept, courseID)
	})
}

// Courses returns the course catalogue.
func (s *RecordService) Courses(ctx context.Context) ([]models.CourseRecord, bool, error) {
	return fetchRecords(ctx, s, "courses", recordKey("courses"), s.source.Courses)
}

// Mentees returns every mentee row.
func (s *RecordService) Mentees(ctx context.Context) ([]models.MenteeRecord, bool, error) {
	return fetchRecords(ctx, s, "mentees", recordKey("mentees"), s.source.Mentees)
}

// MenteeAssignments returns assignment rows of mentored students.
func (s *RecordService) MenteeAssignments(ctx context.Context) ([]models.AssignmentRecord, bool, error) {
	return fetchRecords(ctx, s, "mentee_assignments", recordKey("mentee-assignments"), s.source.MenteeAssignments)
}

// CourseCounts returns per-course enrollment counts.
func (s *RecordService) CourseCounts(ctx context.Context, courseID, dept string) ([]models.EnrollmentStat, bool, error) {
	return fetchRecords(ctx, s, "course_counts", recordKey("course-counts", courseID, dept), func(ctx context.Context) ([]models.EnrollmentStat, error) {
		return s.source.CourseCounts(ctx, courseID, dept)
	})
}

// Invalidate drops every cached record collection.
func (s *RecordService) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx, recordsCachePattern)
}
