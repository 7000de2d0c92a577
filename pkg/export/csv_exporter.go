package export

import (
	"fmt"

	"github.com/gocarina/gocsv"
)

// CSVExporter renders a Document as CSV with one header line.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ContentType is the MIME type of Render output.
func (e *CSVExporter) ContentType() string {
	return "text/csv"
}

// Extension is the file suffix used in download names.
func (e *CSVExporter) Extension() string {
	return "csv"
}

// Render produces CSV encoded bytes for the document rows.
func (e *CSVExporter) Render(doc Document) ([]byte, error) {
	rows := doc.Rows
	if rows == nil {
		rows = []CourseRow{}
	}
	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("marshal csv: %w", err)
	}
	return out, nil
}
