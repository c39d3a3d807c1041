package services

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/yungbote/lecturelens-backend/internal/platform/gcp"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

func writeDOCX(t *testing.T, path string, paragraphs ...string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)
	if _, err := w.Write([]byte(body.String())); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	_ = f.Close()
}

func TestExtractDOCX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.docx")
	writeDOCX(t, path, "Objective: fractions", "Activity:   pizza slices")
	res := NewTextExtractor(logger.Nop(), nil).Extract(context.Background(), "lessonPlan", path)
	if res.Failed || res.Source != SourceDOCX {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Text != "Objective: fractions\nActivity: pizza slices" {
		t.Fatalf("docx text: %q", res.Text)
	}
}

func TestExtractXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.xlsx")
	f := excelize.NewFile()
	_ = f.SetCellValue("Sheet1", "A1", "Parameter")
	_ = f.SetCellValue("Sheet1", "B1", "Max")
	_ = f.SetCellValue("Sheet1", "A2", "Concept clarity")
	_ = f.SetCellValue("Sheet1", "B2", 5)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	res := NewTextExtractor(logger.Nop(), nil).Extract(context.Background(), "cobParams", path)
	if res.Failed {
		t.Fatalf("xlsx extraction failed: %+v", res)
	}
	if !strings.Contains(res.Text, "Concept clarity | 5") {
		t.Fatalf("xlsx text: %q", res.Text)
	}
}

func TestExtractCorruptedFilesYieldPlaceholder(t *testing.T) {
	dir := t.TempDir()
	ex := NewTextExtractor(logger.Nop(), nil)
	for _, name := range []string{"broken.pdf", "broken.docx", "broken.xlsx"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("not really a document"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		res := ex.Extract(context.Background(), "readingMaterial", path)
		if !res.Failed || res.Source != SourcePlaceholder {
			t.Fatalf("%s: expected placeholder, got %+v", name, res)
		}
		if strings.TrimSpace(res.Text) == "" || !strings.Contains(res.Text, name) {
			t.Fatalf("%s: placeholder text %q", name, res.Text)
		}
	}
}

func TestExtractLegacyDoc(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.doc")
	// UTF-16LE "Lesson plan" framed by binary noise
	data := []byte{0xD0, 0xCF, 0x11, 0xE0}
	for _, c := range "Lesson plan" {
		data = append(data, byte(c), 0)
	}
	data = append(data, 0xFF, 0xFE)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	res := NewTextExtractor(logger.Nop(), nil).Extract(context.Background(), "lessonPlan", path)
	if res.Failed || res.Text != "Lesson plan" {
		t.Fatalf("legacy scan: %+v", res)
	}
}

type fakeOCR struct {
	text string
	err  error
	hit  int
}

func (f *fakeOCR) ProcessBytes(ctx context.Context, mimeType string, data []byte) (*gcp.DocAIResult, error) {
	f.hit++
	if f.err != nil {
		return nil, f.err
	}
	return &gcp.DocAIResult{MimeType: mimeType, PrimaryText: f.text}, nil
}

func (f *fakeOCR) Close() error { return nil }

func TestExtractPDFFallsBackToOCR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 garbage"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ocr := &fakeOCR{text: "Scanned   rubric text"}
	res := NewTextExtractor(logger.Nop(), ocr).Extract(context.Background(), "cobParams", path)
	if ocr.hit != 1 || res.Failed || res.Source != SourceDocAI || res.Text != "Scanned rubric text" {
		t.Fatalf("ocr fallback: hits=%d res=%+v", ocr.hit, res)
	}

	failing := &fakeOCR{err: errors.New("quota")}
	res = NewTextExtractor(logger.Nop(), failing).Extract(context.Background(), "cobParams", path)
	if !res.Failed {
		t.Fatalf("expected placeholder when ocr fails: %+v", res)
	}
}
