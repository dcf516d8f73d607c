package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-progress-api/internal/models"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
	"github.com/noah-isme/course-progress-api/pkg/export"
)

// Report formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

var reportHeaders = []string{"Section", "Metric", "Value"}

type summaryProvider interface {
	Report(ctx context.Context, session string, filter models.FilterContext) (models.DashboardSummary, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered report.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the dashboard summary as a downloadable report.
type ExportService struct {
	dashboard summaryProvider
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(dashboard summaryProvider, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{dashboard: dashboard, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Generate renders the report for filter in the requested format.
func (s *ExportService) Generate(ctx context.Context, session string, filter models.FilterContext, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}

	summary, err := s.dashboard.Report(ctx, session, filter)
	if err != nil {
		return nil, err
	}
	dataset := BuildReportDataset(summary)
	dataset.Title = reportTitle(summary.Filter)
	dataset.Subtitle = "Generated " + s.now().UTC().Format("2006-01-02 15:04 MST")

	var body []byte
	contentType := "text/csv"
	if format == FormatPDF {
		contentType = "application/pdf"
		body, err = s.pdf.Render(dataset)
	} else {
		body, err = s.csv.Render(dataset)
	}
	if err != nil {
		s.logger.Error("render report", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	return &ExportFile{
		Filename:    s.buildFilename(summary.Filter, format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

// BuildReportDataset flattens a dashboard summary into report rows.
func BuildReportDataset(summary models.DashboardSummary) export.Dataset {
	rows := []map[string]string{
		reportRow("Filter", "Department", orAll(summary.Filter.Department)),
		reportRow("Filter", "Course", orAll(summary.Filter.CourseID)),
		reportRow("Filter", "Year", orAll(summary.Filter.Year)),
		reportRow("Registration", "Enrolled", strconv.Itoa(summary.Registration.EnrolledCount)),
		reportRow("Registration", "Registered", strconv.Itoa(summary.Registration.RegisteredCount)),
		reportRow("Registration", "Ratio (%)", formatFloat(summary.Registration.Ratio)),
		reportRow("Scores", "Average score", formatFloat(summary.AverageScore.Value)),
		reportRow("Scores", "Assignment rows", strconv.Itoa(summary.AssignmentRows)),
	}
	for _, metric := range summary.Engagement {
		rows = append(rows, reportRow("Engagement", metric.Metric, strconv.Itoa(metric.Value)))
	}
	for _, point := range summary.Weekly {
		week := fmt.Sprintf("Week %d", point.WeekIndex)
		rows = append(rows,
			reportRow("Weekly", week+" completed", strconv.Itoa(point.CompletedCount)),
			reportRow("Weekly", week+" not completed", strconv.Itoa(point.NotCompletedCount)),
		)
	}
	return export.Dataset{GroupBy: reportHeaders[0], Headers: reportHeaders, Rows: rows}
}

func reportRow(section, metric, value string) map[string]string {
	return map[string]string{"Section": section, "Metric": metric, "Value": value}
}

func reportTitle(filter models.FilterContext) string {
	if filter.IsEmpty() {
		return "Course progress report"
	}
	parts := make([]string, 0, 3)
	for _, clause := range filter.Clauses() {
		parts = append(parts, clause.Value)
	}
	return "Course progress report " + strings.Join(parts, " ")
}

func (s *ExportService) buildFilename(filter models.FilterContext, format string) string {
	stamp := s.now().UTC().Format("20060102-150405")
	name := "course-progress"
	if !filter.IsEmpty() {
		name += "-" + sanitizeFilename(filter.Key())
	}
	return fmt.Sprintf("%s-%s.%s", name, stamp, format)
}

func sanitizeFilename(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

func orAll(value string) string {
	if value == "" {
		return "All"
	}
	return value
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
