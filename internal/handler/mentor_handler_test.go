package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-progress-api/internal/models"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
)

type fakeMentorSrv struct {
	mentor string
	filter models.FilterContext
	err    error
}

func (f *fakeMentorSrv) Groups(_ context.Context, filter models.FilterContext) ([]models.MentorSummary, bool, error) {
	f.filter = filter
	return []models.MentorSummary{{MentorName: "Dr. Rao", MenteeCount: 2}}, false, f.err
}

func (f *fakeMentorSrv) Progress(_ context.Context, mentor string, filter models.FilterContext) ([]models.MenteeProgress, bool, error) {
	f.mentor, f.filter = mentor, filter
	return []models.MenteeProgress{{Email: "a@x.io", Completed: 3, NotCompleted: 9}}, true, f.err
}

type fakeRecordSrv struct{}

func (fakeRecordSrv) Courses(context.Context) ([]models.CourseRecord, bool, error) {
	return []models.CourseRecord{{CourseID: "C1", CourseName: "Data Structures"}}, true, nil
}

func (fakeRecordSrv) EnrolledStudents(context.Context, string) ([]models.StudentRecord, bool, error) {
	return []models.StudentRecord{
		{Email: "a@x.io", Department: "CSE", CourseID: "C1"},
		{Email: "b@x.io", Department: "CSE", CourseID: "C2"},
	}, false, nil
}

func TestMentorHandlerProgress(t *testing.T) {
	srv := &fakeMentorSrv{}
	handler := NewMentorHandler(srv)

	c, rec := testContext(http.MethodGet, "/mentors/progress?mentor=Dr.%20Rao&dept=CSE", adminClaims())
	handler.Progress(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dr. Rao", srv.mentor)
	assert.Equal(t, "CSE", srv.filter.Department)
	assert.Equal(t, true, decodeEnvelope(t, rec).Meta["cache_hit"])
}

func TestMentorHandlerProgressValidation(t *testing.T) {
	handler := NewMentorHandler(&fakeMentorSrv{err: appErrors.ErrNotFound})

	c, rec := testContext(http.MethodGet, "/mentors/progress", adminClaims())
	handler.Progress(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = testContext(http.MethodGet, "/mentors/progress?mentor=Nobody", adminClaims())
	handler.Progress(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMentorHandlerGroups(t *testing.T) {
	handler := NewMentorHandler(&fakeMentorSrv{})
	c, rec := testContext(http.MethodGet, "/mentors", adminClaims())
	handler.Groups(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dr. Rao")
}

func TestRecordHandlerStudentsFiltersByCourse(t *testing.T) {
	handler := NewRecordHandler(fakeRecordSrv{})
	c, rec := testContext(http.MethodGet, "/students?course_id=C2", adminClaims())
	handler.Students(c)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "b@x.io")
	assert.NotContains(t, body, "a@x.io")

	c, rec = testContext(http.MethodGet, "/courses", adminClaims())
	handler.Courses(c)
	assert.Contains(t, rec.Body.String(), "Data Structures")
}
