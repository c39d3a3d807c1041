package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/yungbote/lecturelens-backend/internal/analysis"
	"github.com/yungbote/lecturelens-backend/internal/platform/ctxutil"
	"github.com/yungbote/lecturelens-backend/internal/platform/gcp"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

const (
	SourcePDF         = "pdf_text"
	SourceDocAI       = "documentai_ocr"
	SourceDOCX        = "docx_xml"
	SourceXLSX        = "xlsx_cells"
	SourceLegacyScan  = "legacy_scan"
	SourcePlaceholder = "placeholder"
)

// TextExtractor never returns an error: a document that cannot be read yields placeholder text.
type TextExtractor interface {
	Extract(ctx context.Context, field string, absPath string) analysis.ExtractionResult
}

type textExtractor struct {
	log *logger.Logger
	// ocr is optional and only consulted for PDFs with no text layer.
	ocr gcp.Document
}

func NewTextExtractor(log *logger.Logger, ocr gcp.Document) TextExtractor {
	return &textExtractor{log: log.With("service", "TextExtractor"), ocr: ocr}
}

func (e *textExtractor) Extract(ctx context.Context, field string, absPath string) analysis.ExtractionResult {
	ctx = ctxutil.Default(ctx)
	res := analysis.ExtractionResult{Field: field, Path: absPath}
	ext := strings.ToLower(filepath.Ext(absPath))

	var text, source string
	var err error
	switch ext {
	case ".pdf":
		text, source, err = e.extractPDF(ctx, absPath)
	case ".docx":
		text, err = extractDOCX(absPath)
		source = SourceDOCX
	case ".xlsx":
		text, err = extractXLSX(absPath)
		source = SourceXLSX
	case ".doc", ".xls":
		text, err = extractLegacyStrings(absPath)
		source = SourceLegacyScan
	default:
		err = fmt.Errorf("unsupported extension %q", ext)
	}
	text = collapseWhitespace(text)
	if err == nil && text == "" {
		err = fmt.Errorf("no text found")
	}
	if err != nil {
		e.log.Warn("document text extraction failed", "field", field, "path", filepath.Base(absPath), "error", err)
		res.Text = placeholderText(field, filepath.Base(absPath), err)
		res.Source = SourcePlaceholder
		res.Failed = true
		return res
	}
	res.Text = text
	res.Source = source
	return res
}

func placeholderText(field, name string, err error) string {
	return fmt.Sprintf("[%s: text could not be extracted from %s (%v)]", field, name, err)
}

func (e *textExtractor) extractPDF(ctx context.Context, path string) (string, string, error) {
	text, err := extractPDFText(path)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, SourcePDF, nil
	}
	if e.ocr == nil {
		if err == nil {
			err = fmt.Errorf("pdf has no text layer")
		}
		return "", SourcePDF, err
	}
	data, rerr := os.ReadFile(path)
	if rerr != nil {
		return "", SourceDocAI, rerr
	}
	out, oerr := e.ocr.ProcessBytes(ctx, "application/pdf", data)
	if oerr != nil {
		return "", SourceDocAI, fmt.Errorf("ocr fallback: %w", oerr)
	}
	return out.PrimaryText, SourceDocAI, nil
}

func extractPDFText(path string) (text string, err error) {
	// the pdf reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("pdf open: %w", err)
	}
	defer f.Close()
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return string(b), nil
}

func extractDOCX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("docx open: %w", err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return wordText(rc)
	}
	return "", fmt.Errorf("docx missing word/document.xml")
}

// wordText collects <w:t> runs and breaks lines at paragraph ends.
func wordText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				var v string
				if err := dec.DecodeElement(&v, &t); err != nil {
					return "", fmt.Errorf("docx xml: %w", err)
				}
				b.WriteString(v)
			} else if t.Name.Local == "tab" {
				b.WriteString(" ")
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				b.WriteString("\n")
			}
		}
	}
	return b.String(), nil
}

func extractXLSX(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("xlsx open: %w", err)
	}
	defer f.Close()
	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("xlsx rows %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(&b, "Sheet %s:\n", sheet)
		for _, row := range rows {
			cells := make([]string, 0, len(row))
			for _, c := range row {
				if c = strings.TrimSpace(c); c != "" {
					cells = append(cells, c)
				}
			}
			if len(cells) > 0 {
				b.WriteString(strings.Join(cells, " | "))
				b.WriteString("\n")
			}
		}
	}
	return b.String(), nil
}

// extractLegacyStrings pulls printable runs out of binary .doc/.xls files.
func extractLegacyStrings(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	const minRun = 4
	var out []string
	var run bytes.Buffer
	flush := func() {
		if run.Len() >= minRun {
			out = append(out, run.String())
		}
		run.Reset()
	}
	for i := 0; i < len(data); i++ {
		c := data[i]
		// UTF-16LE ascii: printable byte followed by NUL
		if c < 0x80 && (unicode.IsPrint(rune(c)) || c == ' ') {
			run.WriteByte(c)
			if i+1 < len(data) && data[i+1] == 0 {
				i++
			}
			continue
		}
		flush()
	}
	flush()
	return strings.Join(out, " "), nil
}

func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if f := strings.Fields(l); len(f) > 0 {
			out = append(out, strings.Join(f, " "))
		}
	}
	return strings.Join(out, "\n")
}
