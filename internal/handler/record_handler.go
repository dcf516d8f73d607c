package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-progress-api/internal/aggregate"
	"github.com/noah-isme/course-progress-api/internal/models"
	"github.com/noah-isme/course-progress-api/pkg/response"
)

type recordService interface {
	Courses(ctx context.Context) ([]models.CourseRecord, bool, error)
	EnrolledStudents(ctx context.Context, dept string) ([]models.StudentRecord, bool, error)
}

// RecordHandler serves the raw course catalogue and student lists.
type RecordHandler struct {
	service recordService
}

// NewRecordHandler constructs the handler.
func NewRecordHandler(service recordService) *RecordHandler {
	return &RecordHandler{service: service}
}

// Courses godoc
// @Summary List courses
// @Tags Records
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /courses [get]
func (h *RecordHandler) Courses(c *gin.Context) {
	courses, hit, err := h.service.Courses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, courses, hit, nil, nil)
}

// Students godoc
// @Summary List enrolled students
// @Tags Records
// @Produce json
// @Param dept query string false "Department"
// @Param course_id query string false "Course ID"
// @Param year query string false "Year"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /students [get]
func (h *RecordHandler) Students(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	students, hit, err := h.service.EnrolledStudents(c.Request.Context(), filter.Department)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, aggregate.FilterRecords(students, filter), hit, &filter, nil)
}
