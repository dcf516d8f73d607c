package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-progress-api/internal/dto"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
	"github.com/noah-isme/course-progress-api/pkg/response"
)

type uploadService interface {
	Upload(ctx context.Context, kind, filename string, content []byte) (*dto.UploadResponse, error)
}

// UploadHandler accepts CSV datasets for the course backend.
type UploadHandler struct {
	service  uploadService
	maxBytes int64
}

// NewUploadHandler constructs the handler. Files larger than maxBytes are rejected
// before they are fully read.
func NewUploadHandler(service uploadService, maxBytes int64) *UploadHandler {
	return &UploadHandler{service: service, maxBytes: maxBytes}
}

// Upload godoc
// @Summary Upload a CSV dataset
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param kind path string true "assignments, students or courses-enrolled"
// @Param file formData file true "CSV file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /uploads/{kind} [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidUpload.Code, http.StatusBadRequest, "file is required"))
		return
	}
	if h.maxBytes > 0 && header.Size > h.maxBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidUpload, "file is too large"))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidUpload.Code, http.StatusBadRequest, "unreadable file"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidUpload.Code, http.StatusBadRequest, "unreadable file"))
		return
	}

	res, err := h.service.Upload(c.Request.Context(), c.Param("kind"), header.Filename, content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
