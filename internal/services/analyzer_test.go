package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/lecturelens-backend/internal/analysis"
	"github.com/yungbote/lecturelens-backend/internal/platform/gemini/geminitest"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

func analyzeInput() AnalyzeInput {
	return AnalyzeInput{
		Meta: analysis.Metadata{
			Facilitator: "Jane Doe",
			School:      "Hillview",
			Grade:       "5",
			Section:     "A",
			Subject:     "Science",
			Date:        "2024-01-01",
		},
		Transcript: analysis.TranscriptResult{Transcription: "Today we learn fractions."},
		Documents: []analysis.ExtractionResult{
			{Field: analysis.FieldLessonPlan, Text: "Plan: halves and quarters"},
		},
		Rubric:   "Concept accuracy counts double.",
		Duration: "00:42:05",
	}
}

func TestAnalyzerFallsBackOnInvalidReport(t *testing.T) {
	cfg := testConfig(t)
	models := cfg.AnalysisModels()
	fake := geminitest.New()
	fake.Responses[models[0]] = "I cannot produce JSON today."
	fake.Responses[models[1]] = "```json\n" + modelReport + "\n```"

	out, err := NewAnalyzer(logger.Nop(), fake, cfg, false).Analyze(context.Background(), analyzeInput())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out.Model != models[1] || !out.GeneratedByAI {
		t.Fatalf("unexpected outcome: model=%q ai=%v", out.Model, out.GeneratedByAI)
	}
	if len(fake.Calls) != 2 {
		t.Fatalf("expected 2 model calls, got %v", fake.Calls)
	}
	h := out.Report.CobReport.Header
	if h.Facilitator != "Jane Doe" || h.School != "Hillview" {
		t.Fatalf("caller metadata not applied: %+v", h)
	}
	if h.TopicBLM != "Fractions" {
		t.Fatalf("model-only field lost: %+v", h)
	}
	if h.Duration != "00:42:05" {
		t.Fatalf("duration not filled: %q", h.Duration)
	}
	if got := out.Report.CobReport.Scores.OverallPercentage; got != 50 {
		t.Fatalf("overall: got=%v want=50", got)
	}
	prompt := fake.Prompts[0]
	for _, want := range []string{"Today we learn fractions.", "halves and quarters", "Concept accuracy counts double."} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestAnalyzerExhaustion(t *testing.T) {
	cfg := testConfig(t)
	fake := geminitest.New()

	_, err := NewAnalyzer(logger.Nop(), fake, cfg, false).Analyze(context.Background(), analyzeInput())
	if !errors.Is(err, analysis.ErrAllModelsFailed) {
		t.Fatalf("expected ErrAllModelsFailed, got %v", err)
	}
	if len(fake.Calls) != len(cfg.AnalysisModels()) {
		t.Fatalf("expected every model tried once, got %v", fake.Calls)
	}
}

func TestAnalyzerMockFallback(t *testing.T) {
	cfg := testConfig(t)
	fake := geminitest.New()

	out, err := NewAnalyzer(logger.Nop(), fake, cfg, true).Analyze(context.Background(), analyzeInput())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out.GeneratedByAI || out.Model != MockModel {
		t.Fatalf("expected mock outcome, got model=%q ai=%v", out.Model, out.GeneratedByAI)
	}
	h := out.Report.CobReport.Header
	if h.Facilitator != "Jane Doe" || h.Duration != "00:42:05" {
		t.Fatalf("mock header: %+v", h)
	}
	if len(out.Report.CobReport.Parameters) != len(cfg.Segments) {
		t.Fatalf("mock parameters: %d", len(out.Report.CobReport.Parameters))
	}
}

func TestAnalyzerKeepsModelOverall(t *testing.T) {
	cfg := testConfig(t)
	fake := geminitest.New()
	fake.Responses[cfg.AnalysisModels()[0]] = strings.Replace(modelReport, `"overall_percentage":0`, `"overall_percentage":81.5`, 1)
	in := analyzeInput()
	in.Meta.Facilitator = "unknown"

	out, err := NewAnalyzer(logger.Nop(), fake, cfg, false).Analyze(context.Background(), in)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got := out.Report.CobReport.Scores.OverallPercentage; got != 81.5 {
		t.Fatalf("overall: got=%v", got)
	}
	if got := out.Report.CobReport.Header.Facilitator; got != "Unknown Teacher" {
		t.Fatalf("placeholder caller value must not win: %q", got)
	}
}
