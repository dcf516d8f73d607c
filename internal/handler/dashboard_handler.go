package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-progress-api/internal/dto"
	"github.com/noah-isme/course-progress-api/internal/models"
	"github.com/noah-isme/course-progress-api/internal/service"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
	"github.com/noah-isme/course-progress-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context, session string, filter models.FilterContext) (models.DashboardSummary, bool, error)
	Weekly(ctx context.Context, session string, filter models.FilterContext) (models.WeeklySeries, bool, error)
	Registration(ctx context.Context, session string, filter models.FilterContext) (models.RegistrationSummary, bool, error)
	AverageScore(ctx context.Context, session string, filter models.FilterContext) (models.AggregateMetric, bool, error)
	Engagement(ctx context.Context, session string, filter models.FilterContext) ([]models.EngagementMetric, bool, error)
	EnrollmentStats(ctx context.Context, session string, query service.EnrollmentStatsQuery) (models.EnrollmentStatsPage, bool, error)
}

type exportService interface {
	Generate(ctx context.Context, session string, filter models.FilterContext, format string) (*service.ExportFile, error)
}

// DashboardHandler wires dashboard metrics to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
	export  exportService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService, export exportService) *DashboardHandler {
	return &DashboardHandler{service: service, export: export}
}

func serveView[T any](c *gin.Context, view func(ctx context.Context, session string, filter models.FilterContext) (T, bool, error)) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	data, hit, err := view(c.Request.Context(), sessionKey(claims), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, data, hit, &filter, nil)
}

// Summary godoc
// @Summary Dashboard summary
// @Description Registration, average score, weekly trend and engagement for the filter
// @Tags Dashboard
// @Produce json
// @Param dept query string false "Department"
// @Param course_id query string false "Course ID"
// @Param year query string false "Year"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	serveView(c, h.service.Summary)
}

// Weekly godoc
// @Summary Weekly completion trend
// @Tags Dashboard
// @Produce json
// @Param dept query string false "Department"
// @Param course_id query string false "Course ID"
// @Param year query string false "Year"
// @Success 200 {object} response.Envelope
// @Router /dashboard/weekly [get]
func (h *DashboardHandler) Weekly(c *gin.Context) {
	serveView(c, h.service.Weekly)
}

// Registration godoc
// @Summary Exam registration ratio
// @Tags Dashboard
// @Produce json
// @Param dept query string false "Department"
// @Param course_id query string false "Course ID"
// @Param year query string false "Year"
// @Success 200 {object} response.Envelope
// @Router /dashboard/registration [get]
func (h *DashboardHandler) Registration(c *gin.Context) {
	serveView(c, h.service.Registration)
}

// AverageScore godoc
// @Summary Average assignment score
// @Tags Dashboard
// @Produce json
// @Param dept query string false "Department"
// @Param course_id query string false "Course ID"
// @Param year query string false "Year"
// @Success 200 {object} response.Envelope
// @Router /dashboard/average-score [get]
func (h *DashboardHandler) AverageScore(c *gin.Context) {
	serveView(c, h.service.AverageScore)
}

// Engagement godoc
// @Summary Engagement radar
// @Tags Dashboard
// @Produce json
// @Param dept query string false "Department"
// @Param course_id query string false "Course ID"
// @Param year query string false "Year"
// @Success 200 {object} response.Envelope
// @Router /dashboard/engagement [get]
func (h *DashboardHandler) Engagement(c *gin.Context) {
	serveView(c, h.service.Engagement)
}

// EnrollmentStats godoc
// @Summary Per-course enrollment counts
// @Tags Dashboard
// @Produce json
// @Param dept query string false "Department"
// @Param course_id query string false "Course ID"
// @Param sort_by query string false "name or enrollment"
// @Param order query string false "asc or desc"
// @Param page query int false "Page, starting at 1"
// @Success 200 {object} response.Envelope
// @Router /dashboard/enrollment-stats [get]
func (h *DashboardHandler) EnrollmentStats(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var query dto.EnrollmentStatsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment stats query"))
		return
	}
	filter := query.Context()
	page, hit, err := h.service.EnrollmentStats(c.Request.Context(), sessionKey(claims), service.EnrollmentStatsQuery{
		Filter: filter,
		SortBy: query.SortBy,
		Order:  query.Order,
		Page:   query.Page,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, page.Items, hit, &filter, &response.Pagination{
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages,
	})
}

// Export godoc
// @Summary Export dashboard report
// @Tags Dashboard
// @Produce text/csv
// @Produce application/pdf
// @Param dept query string false "Department"
// @Param course_id query string false "Course ID"
// @Param year query string false "Year"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /dashboard/export [get]
func (h *DashboardHandler) Export(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if h.export == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.export.Generate(c.Request.Context(), sessionKey(claims), query.Context(), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
