package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/course-progress-api/internal/aggregate"
	"github.com/noah-isme/course-progress-api/internal/models"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
)

type mentorRecords interface {
	Mentees(ctx context.Context) ([]models.MenteeRecord, bool, error)
	MenteeAssignments(ctx context.Context) ([]models.AssignmentRecord, bool, error)
}

// MentorService groups mentees by mentor and derives their weekly progress.
type MentorService struct {
	records mentorRecords
	logger  *zap.Logger
	window  int
}

// NewMentorService constructs a MentorService. A non-positive window uses the default.
func NewMentorService(records mentorRecords, window int, logger *zap.Logger) *MentorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if window <= 0 {
		window = aggregate.DefaultMentorWeekWindow
	}
	return &MentorService{records: records, logger: logger, window: window}
}

func (s *MentorService) groups(ctx context.Context, filter models.FilterContext) ([]models.MentorGroup, bool, error) {
	mentees, menteesHit, err := s.records.Mentees(ctx)
	if err != nil {
		return nil, false, err
	}
	assignments, assignmentsHit, err := s.records.MenteeAssignments(ctx)
	if err != nil {
		return nil, false, err
	}
	filter = filter.Normalize()
	groups := aggregate.GroupByMentor(aggregate.FilterRecords(mentees, filter), assignments)
	return groups, menteesHit && assignmentsHit, nil
}

// Groups lists every mentor with their mentees and weekly completion stats.
func (s *MentorService) Groups(ctx context.Context, filter models.FilterContext) ([]models.MentorSummary, bool, error) {
	groups, hit, err := s.groups(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	summaries := make([]models.MentorSummary, 0, len(groups))
	for _, group := range groups {
		summaries = append(summaries, models.MentorSummary{
			MentorName:      group.MentorName,
			MenteeCount:     len(group.Mentees),
			AssignmentCount: len(group.Assignments),
			Mentees:         aggregate.SortMenteesByRoll(group.Mentees),
			Weekly:          aggregate.MentorWeeklyStats(group, s.window),
		})
	}
	return summaries, hit, nil
}

// Progress returns per-mentee progress for one mentor, ordered by roll number.
func (s *MentorService) Progress(ctx context.Context, mentorName string, filter models.FilterContext) ([]models.MenteeProgress, bool, error) {
	groups, hit, err := s.groups(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	group, ok := aggregate.FindMentorGroup(groups, mentorName)
	if !ok {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("mentor %q not found", mentorName))
	}
	return aggregate.GroupProgress(group, s.window), hit, nil
}
