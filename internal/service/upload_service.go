package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/course-progress-api/internal/dto"
	"github.com/noah-isme/course-progress-api/internal/repository"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
)

type uploadGateway interface {
	Upload(ctx context.Context, kind repository.UploadKind, filename string, content []byte) (map[string]interface{}, error)
}

type recordInvalidator interface {
	Invalidate(ctx context.Context) error
}

// UploadService validates CSV datasets and forwards them to the course backend.
type UploadService struct {
	gateway  uploadGateway
	records  recordInvalidator
	maxBytes int64
	logger   *zap.Logger
}

// NewUploadService constructs an UploadService.
func NewUploadService(gateway uploadGateway, records recordInvalidator, maxBytes int64, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{gateway: gateway, records: records, maxBytes: maxBytes, logger: logger}
}

// Upload checks the file and forwards it. Cached records are dropped once the backend
// accepts the file.
func (s *UploadService) Upload(ctx context.Context, kind, filename string, content []byte) (*dto.UploadResponse, error) {
	uploadKind := repository.UploadKind(strings.ToLower(strings.TrimSpace(kind)))
	if _, ok := repository.UploadPath(uploadKind); !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidUpload, fmt.Sprintf("unknown upload kind %q", kind))
	}
	rows, err := s.validate(filename, content)
	if err != nil {
		return nil, err
	}

	ack, err := s.gateway.Upload(ctx, uploadKind, filepath.Base(filename), content)
	if err != nil {
		s.logger.Warn("upload rejected", zap.String("kind", string(uploadKind)), zap.String("filename", filename), zap.Error(err))
		return nil, err
	}
	if s.records != nil {
		if err := s.records.Invalidate(ctx); err != nil {
			s.logger.Warn("record cache invalidation failed", zap.Error(err))
		}
	}
	return &dto.UploadResponse{
		Kind:     string(uploadKind),
		Filename: filepath.Base(filename),
		Rows:     rows,
		Upstream: ack,
	}, nil
}

// validate returns the number of data rows below the header.
func (s *UploadService) validate(filename string, content []byte) (int, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return 0, appErrors.Clone(appErrors.ErrInvalidUpload, "only .csv files are accepted")
	}
	if len(content) == 0 {
		return 0, appErrors.Clone(appErrors.ErrInvalidUpload, "file is empty")
	}
	if s.maxBytes > 0 && int64(len(content)) > s.maxBytes {
		return 0, appErrors.Clone(appErrors.ErrInvalidUpload, fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInvalidUpload.Code, appErrors.ErrInvalidUpload.Status, "unreadable csv header")
	}
	named := 0
	for _, column := range header {
		if strings.TrimSpace(column) != "" {
			named++
		}
	}
	if named == 0 {
		return 0, appErrors.Clone(appErrors.ErrInvalidUpload, "csv header row is empty")
	}

	rows := 0
	for {
		_, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInvalidUpload.Code, appErrors.ErrInvalidUpload.Status, "malformed csv")
		}
		rows++
	}
	return rows, nil
}
