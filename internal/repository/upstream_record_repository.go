package repository

import (
	"context"
	"net/url"

	"github.com/noah-isme/course-progress-api/internal/models"
)

// UpstreamRecordRepository reads raw records from the course backend.
type UpstreamRecordRepository struct {
	client *UpstreamClient
}

// NewUpstreamRecordRepository constructs the repository.
func NewUpstreamRecordRepository(client *UpstreamClient) *UpstreamRecordRepository {
	return &UpstreamRecordRepository{client: client}
}

func optionalQuery(pairs ...string) url.Values {
	query := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			query.Set(pairs[i], pairs[i+1])
		}
	}
	return query
}

// Students calls GET /students.
func (r *UpstreamRecordRepository) Students(ctx context.Context) ([]models.StudentRecord, error) {
	var students []models.StudentRecord
	if err := r.client.getJSON(ctx, "/students", nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// EnrolledStudents calls GET /enrolled?dept=.
func (r *UpstreamRecordRepository) EnrolledStudents(ctx context.Context, dept string) ([]models.StudentRecord, error) {
	var students []models.StudentRecord
	if err := r.client.getJSON(ctx, "/enrolled", optionalQuery("dept", dept), &students); err != nil {
		return nil, err
	}
	return students, nil
}

// Assignments calls GET /assignments?dept=&courseID=.
func (r *UpstreamRecordRepository) Assignments(ctx context.Context, dept, courseID string) ([]models.AssignmentRecord, error) {
	var assignments []models.AssignmentRecord
	if err := r.client.getJSON(ctx, "/assignments", optionalQuery("dept", dept, "courseID", courseID), &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// Courses calls GET /courses.
func (r *UpstreamRecordRepository) Courses(ctx context.Context) ([]models.CourseRecord, error) {
	var courses []models.CourseRecord
	if err := r.client.getJSON(ctx, "/courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Mentees calls GET /mentormentee.
func (r *UpstreamRecordRepository) Mentees(ctx context.Context) ([]models.MenteeRecord, error) {
	var mentees []models.MenteeRecord
	if err := r.client.getJSON(ctx, "/mentormentee", nil, &mentees); err != nil {
		return nil, err
	}
	return mentees, nil
}

// MenteeAssignments calls GET /menteeAssignment.
func (r *UpstreamRecordRepository) MenteeAssignments(ctx context.Context) ([]models.AssignmentRecord, error) {
	var assignments []models.AssignmentRecord
	if err := r.client.getJSON(ctx, "/menteeAssignment", nil, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// CourseCounts calls GET /coursesDisplayRouter/course-counts?course_id=&dept=.
func (r *UpstreamRecordRepository) CourseCounts(ctx context.Context, courseID, dept string) ([]models.EnrollmentStat, error) {
	var stats []models.EnrollmentStat
	query := optionalQuery("course_id", courseID, "dept", dept)
	if err := r.client.getJSON(ctx, "/coursesDisplayRouter/course-counts", query, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}
