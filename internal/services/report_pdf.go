package services

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/yungbote/lecturelens-backend/internal/analysis"
)

const (
	pageBreakY  = 270.0 // mm on A4
	pageMarginX = 15.0
	contentW    = 180.0
	lineH       = 5.5
)

type RenderInput struct {
	Report        analysis.AnalysisReport
	Segments      []analysis.Segment
	Model         string
	GeneratedByAI bool
}

// PDFRenderer draws the report straight onto A4 pages.
type PDFRenderer interface {
	Render(in RenderInput, w io.Writer) error
	RenderFile(in RenderInput, path string) error
}

type pdfRenderer struct{}

func NewPDFRenderer() PDFRenderer { return pdfRenderer{} }

func (r pdfRenderer) RenderFile(in RenderInput, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := r.Render(in, &buf); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (pdfRenderer) Render(in RenderInput, w io.Writer) error {
	d := newPDFDoc()
	cob := in.Report.CobReport
	h := cob.Header

	d.pdf.AddPage()
	d.pdf.SetFont("Helvetica", "B", 18)
	d.pdf.CellFormat(contentW, 10, "Classroom Observation Report", "", 1, "C", false, 0, "")
	d.pdf.Ln(3)

	d.heading("Lecture details")
	rows := [][2]string{
		{"Facilitator", h.Facilitator},
		{"School", h.School},
		{"Grade / Section", strings.Trim(h.Grade+" / "+h.Section, " /")},
		{"Subject", h.Subject},
		{"Date", h.Date},
		{"Topic / BLM", h.TopicBLM},
		{"Duration", h.Duration},
		{"Session type", h.SessionType},
	}
	for _, row := range rows {
		d.keyValue(row[0], orDash(row[1]))
	}
	d.pdf.Ln(3)

	d.heading("Overall score")
	d.pdf.SetFont("Helvetica", "B", 14)
	d.ensureSpace(8)
	d.pdf.CellFormat(contentW, 8, d.tr(fmt.Sprintf("%.1f%%", cob.Scores.OverallPercentage)), "", 1, "L", false, 0, "")
	d.paragraph(cob.Scores.Summary, "")
	d.pdf.Ln(2)

	results := analysis.SegmentResults(cob.Parameters, in.Segments)
	if len(results) > 0 {
		d.heading("Segments")
		if err := d.chart(results); err != nil {
			return err
		}
		d.segmentTable(results)
	}

	d.heading("Observation parameters")
	d.parameterTable(cob.Parameters)

	if len(cob.Highlights) > 0 {
		d.heading("Highlights")
		d.bullets(cob.Highlights)
	}
	if len(cob.OtherObservations) > 0 {
		d.heading("Other observations")
		d.bullets(cob.OtherObservations)
	}

	d.pdf.Ln(4)
	if in.GeneratedByAI {
		d.paragraph(fmt.Sprintf("Generated by AI analysis (%s).", in.Model), "I")
	} else {
		d.paragraph("Placeholder report: AI analysis was unavailable.", "I")
	}

	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return d.pdf.Output(w)
}

type pdfDoc struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newPDFDoc() *pdfDoc {
	p := fpdf.New("P", "mm", "A4", "")
	p.SetMargins(pageMarginX, 15, pageMarginX)
	// page breaks are placed by ensureSpace
	p.SetAutoPageBreak(false, 0)
	p.AliasNbPages("")
	p.SetFooterFunc(func() {
		p.SetY(-12)
		p.SetFont("Helvetica", "I", 8)
		p.SetTextColor(120, 120, 120)
		p.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb}", p.PageNo()), "", 0, "C", false, 0, "")
		p.SetTextColor(0, 0, 0)
	})
	return &pdfDoc{pdf: p, tr: p.UnicodeTranslatorFromDescriptor("")}
}

// ensureSpace starts a new page when the next h millimetres would pass the break line.
func (d *pdfDoc) ensureSpace(h float64) {
	if d.pdf.GetY()+h > pageBreakY {
		d.pdf.AddPage()
	}
}

func (d *pdfDoc) heading(text string) {
	d.ensureSpace(14)
	d.pdf.SetFont("Helvetica", "B", 12)
	d.pdf.SetFillColor(232, 238, 247)
	d.pdf.CellFormat(contentW, 8, d.tr(text), "", 1, "L", true, 0, "")
	d.pdf.Ln(1.5)
}

func (d *pdfDoc) keyValue(k, v string) {
	d.pdf.SetFont("Helvetica", "", 10)
	lines := d.wrap(d.tr(v), contentW-45)
	for i, line := range lines {
		d.ensureSpace(lineH)
		label := ""
		if i == 0 {
			label = k
		}
		d.pdf.SetFont("Helvetica", "B", 10)
		d.pdf.CellFormat(45, lineH, d.tr(label), "", 0, "L", false, 0, "")
		d.pdf.SetFont("Helvetica", "", 10)
		d.pdf.CellFormat(contentW-45, lineH, line, "", 1, "L", false, 0, "")
	}
}

func (d *pdfDoc) paragraph(text, style string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	d.pdf.SetFont("Helvetica", style, 10)
	for _, line := range d.wrap(d.tr(text), contentW) {
		d.ensureSpace(lineH)
		d.pdf.CellFormat(contentW, lineH, line, "", 1, "L", false, 0, "")
	}
}

func (d *pdfDoc) bullets(items []string) {
	d.pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		for i, line := range d.wrap(d.tr(item), contentW-6) {
			d.ensureSpace(lineH)
			mark := ""
			if i == 0 {
				mark = "-"
			}
			d.pdf.CellFormat(6, lineH, mark, "", 0, "C", false, 0, "")
			d.pdf.CellFormat(contentW-6, lineH, line, "", 1, "L", false, 0, "")
		}
	}
}

type tableCol struct {
	title string
	w     float64
	align string
}

var segmentCols = []tableCol{
	{"Segment", 80, "L"},
	{"Weight", 30, "C"},
	{"Score", 40, "C"},
	{"Percentage", 30, "C"},
}

var paramCols = []tableCol{
	{"Category", 38, "L"},
	{"Parameter", 82, "L"},
	{"Score", 25, "C"},
	{"Weighted", 35, "C"},
}

func (d *pdfDoc) tableHeader() { d.columnHeader(paramCols) }

func (d *pdfDoc) columnHeader(cols []tableCol) {
	d.pdf.SetFont("Helvetica", "B", 9)
	d.pdf.SetFillColor(245, 245, 245)
	for i, c := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		d.pdf.CellFormat(c.w, 7, c.title, "1", ln, c.align, true, 0, "")
	}
}

func (d *pdfDoc) parameterTable(params []analysis.Parameter) {
	if len(params) == 0 {
		d.paragraph("No parameters were scored.", "I")
		return
	}
	d.ensureSpace(14)
	d.tableHeader()
	for _, p := range params {
		weighted := "-"
		if c, ok := analysis.Contribution(p); ok {
			weighted = fmt.Sprintf("%.2f / %.0f", c, *p.Weight)
		}
		cells := []string{p.Category, p.Name, fmt.Sprintf("%g / %g", p.Score, p.OutOf), weighted}

		d.pdf.SetFont("Helvetica", "", 9)
		wrapped := make([][]string, len(cells))
		rowLines := 1
		for i, c := range cells {
			wrapped[i] = d.wrap(d.tr(c), paramCols[i].w)
			if len(wrapped[i]) > rowLines {
				rowLines = len(wrapped[i])
			}
		}
		rowH := float64(rowLines) * 4.5
		if d.pdf.GetY()+rowH > pageBreakY {
			d.pdf.AddPage()
			d.tableHeader()
			d.pdf.SetFont("Helvetica", "", 9)
		}
		x, y := d.pdf.GetX(), d.pdf.GetY()
		for i, c := range paramCols {
			d.pdf.Rect(x, y, c.w, rowH, "D")
			for j, line := range wrapped[i] {
				d.pdf.SetXY(x, y+float64(j)*4.5)
				d.pdf.CellFormat(c.w, 4.5, line, "", 0, c.align, false, 0, "")
			}
			x += c.w
		}
		d.pdf.SetXY(pageMarginX, y+rowH)

		if comment := strings.TrimSpace(p.Comment); comment != "" {
			d.pdf.SetFont("Helvetica", "I", 8.5)
			for _, line := range d.wrap(d.tr(comment), contentW-4) {
				if d.pdf.GetY()+4.2 > pageBreakY {
					d.pdf.AddPage()
					d.tableHeader()
					d.pdf.SetFont("Helvetica", "I", 8.5)
				}
				d.pdf.CellFormat(4, 4.2, "", "", 0, "L", false, 0, "")
				d.pdf.CellFormat(contentW-4, 4.2, line, "", 1, "L", false, 0, "")
			}
			d.pdf.Ln(1)
		}
	}
	d.pdf.Ln(3)
}

// segmentTable repeats the chart figures as text rows.
func (d *pdfDoc) segmentTable(results []analysis.SegmentResult) {
	d.ensureSpace(14)
	d.columnHeader(segmentCols)
	for _, r := range results {
		if d.pdf.GetY()+6 > pageBreakY {
			d.pdf.AddPage()
			d.columnHeader(segmentCols)
		}
		d.pdf.SetFont("Helvetica", "", 9)
		cells := []string{
			r.Name,
			fmt.Sprintf("%d%%", r.Weight),
			fmt.Sprintf("%.2f / %.2f", r.Achieved, r.Max),
			fmt.Sprintf("%.1f%%", r.Percentage),
		}
		for i, c := range segmentCols {
			ln := 0
			if i == len(segmentCols)-1 {
				ln = 1
			}
			d.pdf.CellFormat(c.w, 6, d.tr(cells[i]), "1", ln, c.align, false, 0, "")
		}
	}
	d.pdf.Ln(3)
}

func (d *pdfDoc) chart(results []analysis.SegmentResult) error {
	png, err := RenderSegmentChart(results)
	if err != nil {
		return err
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	info := d.pdf.RegisterImageOptionsReader("segments", opts, bytes.NewReader(png))
	if info == nil {
		return fmt.Errorf("register chart: %w", d.pdf.Error())
	}
	h := contentW * info.Height() / info.Width()
	d.ensureSpace(h + 2)
	d.pdf.ImageOptions("segments", pageMarginX, d.pdf.GetY(), contentW, h, false, opts, 0, "")
	d.pdf.SetY(d.pdf.GetY() + h + 3)
	return nil
}

// wrap splits already-translated text into lines that fit a cell of width w at the current font.
func (d *pdfDoc) wrap(text string, w float64) []string {
	w -= 2 // cell padding
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			for d.pdf.GetStringWidth(word) > w && len(word) > 1 {
				cut := len(word) - 1
				for cut > 1 && d.pdf.GetStringWidth(word[:cut]) > w {
					cut--
				}
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				lines = append(lines, word[:cut])
				word = word[cut:]
			}
			switch {
			case line == "":
				line = word
			case d.pdf.GetStringWidth(line+" "+word) <= w:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
