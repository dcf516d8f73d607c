package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-progress-api/internal/dto"
	"github.com/noah-isme/course-progress-api/internal/models"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
	"github.com/noah-isme/course-progress-api/pkg/response"
)

type mentorService interface {
	Groups(ctx context.Context, filter models.FilterContext) ([]models.MentorSummary, bool, error)
	Progress(ctx context.Context, mentorName string, filter models.FilterContext) ([]models.MenteeProgress, bool, error)
}

// MentorHandler serves the mentor views.
type MentorHandler struct {
	service mentorService
}

// NewMentorHandler constructs the handler.
func NewMentorHandler(service mentorService) *MentorHandler {
	return &MentorHandler{service: service}
}

// Groups godoc
// @Summary Mentor groups
// @Description Mentors with their mentees and weekly completion counts
// @Tags Mentors
// @Produce json
// @Param dept query string false "Department"
// @Success 200 {object} response.Envelope
// @Router /mentors [get]
func (h *MentorHandler) Groups(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	groups, hit, err := h.service.Groups(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, groups, hit, &filter, nil)
}

// Progress godoc
// @Summary Mentee progress
// @Description Per-mentee completed weeks for one mentor, ordered by roll number
// @Tags Mentors
// @Produce json
// @Param mentor query string true "Mentor name"
// @Param dept query string false "Department"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mentors/progress [get]
func (h *MentorHandler) Progress(c *gin.Context) {
	var query dto.MentorProgressQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "mentor is required"))
		return
	}
	filter := query.Context()
	progress, hit, err := h.service.Progress(c.Request.Context(), query.Mentor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, progress, hit, &filter, nil)
}
