package service

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-recommender-api/internal/dto"
	"github.com/noah-isme/timetable-recommender-api/internal/timetable"
	appErrors "github.com/noah-isme/timetable-recommender-api/pkg/errors"
	"github.com/noah-isme/timetable-recommender-api/pkg/export"
)

type documentRenderer interface {
	Render(doc export.Document) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportResult is a rendered download.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders candidates as downloadable course lists.
type ExportService struct {
	renderers map[dto.ExportFormat]documentRenderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the gocsv and gofpdf exporters.
func NewExportService(csv, pdf documentRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		renderers: map[dto.ExportFormat]documentRenderer{
			dto.ExportFormatCSV: csv,
			dto.ExportFormatPDF: pdf,
		},
		logger: logger,
	}
}

// Candidate renders one candidate in the requested format.
func (s *ExportService) Candidate(title, basename string, cand timetable.Candidate, format dto.ExportFormat) (*ExportResult, error) {
	format = dto.ExportFormat(strings.ToLower(strings.TrimSpace(string(format))))
	if format == "" {
		format = dto.ExportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	doc := CandidateDocument(title, cand)
	data, err := renderer.Render(doc)
	if err != nil {
		s.logger.Error("failed to render export", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("%s.%s", basename, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

// CandidateDocument lays out a candidate as a course list in selection order.
func CandidateDocument(title string, cand timetable.Candidate) export.Document {
	offerings := cand.Offerings()
	rows := make([]export.CourseRow, 0, len(offerings))
	for i, o := range offerings {
		schedule := make([]string, 0, len(o.TimeSlots))
		for _, slot := range o.TimeSlots {
			schedule = append(schedule, slot.String())
		}
		rows = append(rows, export.CourseRow{
			Position:   i + 1,
			CourseCode: o.CourseCode,
			Section:    o.Section,
			Name:       o.Name,
			Category:   o.Category.String(),
			Credits:    o.Credits,
			Professor:  o.Professor,
			Room:       o.Room,
			Schedule:   strings.Join(schedule, "; "),
		})
	}
	return export.Document{Title: title, Rows: rows, TotalCredits: cand.TotalCredits()}
}
