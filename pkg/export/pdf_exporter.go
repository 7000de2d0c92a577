package export

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

//go:embed fonts/*.ttf
var fontFS embed.FS

const (
	latinFamily  = "dejavu"
	hangulFamily = "nanum"
)

var pdfFonts = []struct {
	family string
	style  string
	file   string
}{
	{latinFamily, "", "fonts/DejaVuSansCondensed.ttf"},
	{latinFamily, "B", "fonts/DejaVuSansCondensed-Bold.ttf"},
	{hangulFamily, "", "fonts/NanumBarunGothic.ttf"},
	{hangulFamily, "B", "fonts/NanumBarunGothic.ttf"},
}

// PDFExporter renders a Document into a single-table A4 PDF. Text is drawn
// with embedded UTF-8 fonts so Hangul course names survive.
type PDFExporter struct {
	compress bool
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{compress: true}
}

// ContentType is the MIME type of Render output.
func (e *PDFExporter) ContentType() string {
	return "application/pdf"
}

// Extension is the file suffix used in download names.
func (e *PDFExporter) Extension() string {
	return "pdf"
}

// Render creates a PDF document with the title, the course table and a
// credit total footer.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(e.compress)
	if err := registerFonts(pdf); err != nil {
		return nil, err
	}
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if doc.Title != "" {
		drawCell(pdf, 0, 10, doc.Title, "B", 14, "", "C")
		pdf.Ln(15)
	}

	for _, col := range pdfColumns {
		drawCell(pdf, col.width, 8, col.header, "B", 10, "1", "C")
	}
	pdf.Ln(8)

	for _, row := range doc.Rows {
		for _, col := range pdfColumns {
			drawCell(pdf, col.width, 7, col.value(row), "", 9, "1", "L")
		}
		pdf.Ln(7)
	}

	pdf.Ln(3)
	drawCell(pdf, 0, 8, fmt.Sprintf("Total credits: %d", doc.TotalCredits), "B", 10, "", "R")
	pdf.Ln(8)

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func registerFonts(pdf *gofpdf.Fpdf) error {
	for _, font := range pdfFonts {
		data, err := fontFS.ReadFile(font.file)
		if err != nil {
			return fmt.Errorf("load font %s: %w", font.file, err)
		}
		pdf.AddUTF8FontFromBytes(font.family, font.style, data)
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("register pdf fonts: %w", err)
	}
	return nil
}

type textRun struct {
	family string
	text   string
}

// drawCell draws a bordered cell and writes text into it in runs, switching
// to the Hangul font for Hangul runes. A zero width extends to the right
// margin. The cursor moves right of the cell.
func drawCell(pdf *gofpdf.Fpdf, width, height float64, text, style string, size float64, border, align string) {
	x, y := pdf.GetXY()
	if width == 0 {
		pageWidth, _ := pdf.GetPageSize()
		_, _, right, _ := pdf.GetMargins()
		width = pageWidth - right - x
	}
	pdf.CellFormat(width, height, "", border, 0, "", false, 0, "")

	runs := splitRuns(text)
	total := 0.0
	for _, run := range runs {
		pdf.SetFont(run.family, style, size)
		total += pdf.GetStringWidth(run.text)
	}

	margin := pdf.GetCellMargin()
	cursor := x + margin
	switch align {
	case "C":
		cursor = x + (width-total)/2
	case "R":
		cursor = x + width - margin - total
	}
	_, unitSize := pdf.GetFontSize()
	baseline := y + height/2 + 0.3*unitSize
	for _, run := range runs {
		pdf.SetFont(run.family, style, size)
		pdf.Text(cursor, baseline, run.text)
		cursor += pdf.GetStringWidth(run.text)
	}
	pdf.SetXY(x+width, y)
}

func splitRuns(text string) []textRun {
	var runs []textRun
	start := 0
	current := ""
	for i, r := range text {
		family := latinFamily
		if isHangul(r) {
			family = hangulFamily
		}
		if family != current && i > start {
			runs = append(runs, textRun{family: current, text: text[start:i]})
			start = i
		}
		current = family
	}
	if start < len(text) {
		runs = append(runs, textRun{family: current, text: text[start:]})
	}
	return runs
}

// isHangul covers the syllable and compatibility jamo blocks shipped in the
// embedded Hangul font.
func isHangul(r rune) bool {
	return (r >= 0xAC00 && r <= 0xD7A3) || (r >= 0x3131 && r <= 0x318E)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
