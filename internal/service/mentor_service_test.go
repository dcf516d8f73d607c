package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-progress-api/internal/models"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
)

type fakeMentorRecords struct {
	mentees     []models.MenteeRecord
	assignments []models.AssignmentRecord
	err         error
}

func (f *fakeMentorRecords) Mentees(context.Context) ([]models.MenteeRecord, bool, error) {
	return f.mentees, false, f.err
}

func (f *fakeMentorRecords) MenteeAssignments(context.Context) ([]models.AssignmentRecord, bool, error) {
	return f.assignments, false, f.err
}

func mentorFixture(t *testing.T) *fakeMentorRecords {
	return &fakeMentorRecords{
		mentees: []models.MenteeRecord{
			{Name: "B", Email: "b@x.io", RollNo: "22CS10", Department: "CSE", MentorName: "Dr. Rao"},
			{Name: "A", Email: "a@x.io", RollNo: "22CS2", Department: "CSE", MentorName: "Dr. Rao"},
			{Name: "C", Email: "c@x.io", RollNo: "21AM1", Department: "AIML", MentorName: "Dr. Iyer"},
			{Name: "A again", Email: "A@x.io ", RollNo: "22CS2", Department: "CSE", MentorName: "Dr. Rao"},
		},
		assignments: decodeAssignmentRecords(t, `[
			{"email":"a@x.io","assignment1":"5.00","assignment2":"0.00"},
			{"email":"b@x.io","assignment1":"4.00","assignment2":"3.00"},
			{"email":"c@x.io","assignment1":"-1.00"},
			{"email":"z@x.io","assignment1":"9.00"}
		]`),
	}
}

func TestMentorGroups(t *testing.T) {
	svc := NewMentorService(mentorFixture(t), 3, nil)

	groups, _, err := svc.Groups(context.Background(), models.FilterContext{})
	require.NoError(t, err)
	require.Len(t, groups, 2)

	rao := groups[0]
	assert.Equal(t, "Dr. Rao", rao.MentorName)
	assert.Equal(t, 2, rao.MenteeCount)
	assert.Equal(t, 2, rao.AssignmentCount)
	assert.Equal(t, "22CS2", rao.Mentees[0].RollNo)
	require.Len(t, rao.Weekly, 3)
	assert.Equal(t, models.MentorWeekStat{Week: 1, Completed: 2, NotCompleted: 0}, rao.Weekly[0])
	assert.Equal(t, models.MentorWeekStat{Week: 2, Completed: 1, NotCompleted: 1}, rao.Weekly[1])
	assert.Equal(t, models.MentorWeekStat{Week: 3, Completed: 0, NotCompleted: 2}, rao.Weekly[2])
}

func TestMentorGroupsFilterByDepartment(t *testing.T) {
	svc := NewMentorService(mentorFixture(t), 0, nil)

	groups, _, err := svc.Groups(context.Background(), models.FilterContext{Department: "AIML"})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Dr. Iyer", groups[0].MentorName)
	assert.Len(t, groups[0].Weekly, 12)
}

func TestMentorProgress(t *testing.T) {
	svc := NewMentorService(mentorFixture(t), 3, nil)

	progress, _, err := svc.Progress(context.Background(), "Dr. Rao", models.FilterContext{})
	require.NoError(t, err)
	require.Len(t, progress, 2)
	assert.Equal(t, "a@x.io", progress[0].Email)
	assert.Equal(t, 1, progress[0].Completed)
	assert.Equal(t, 2, progress[0].NotCompleted)
	assert.Equal(t, 2, progress[1].Completed)

	_, _, err = svc.Progress(context.Background(), "Nobody", models.FilterContext{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestMentorSourceError(t *testing.T) {
	svc := NewMentorService(&fakeMentorRecords{err: appErrors.ErrUpstream}, 0, nil)
	_, _, err := svc.Groups(context.Background(), models.FilterContext{})
	assert.True(t, errors.Is(err, appErrors.ErrUpstream))
}
