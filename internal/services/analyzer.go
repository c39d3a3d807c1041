package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/lecturelens-backend/internal/analysis"
	"github.com/yungbote/lecturelens-backend/internal/observability"
	"github.com/yungbote/lecturelens-backend/internal/platform/ctxutil"
	"github.com/yungbote/lecturelens-backend/internal/platform/gemini"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

const MockModel = "mock"

type AnalyzeInput struct {
	Meta       analysis.Metadata
	Transcript analysis.TranscriptResult
	Documents  []analysis.ExtractionResult
	Rubric     string
	// Duration is the measured video length, used only when the model leaves it blank.
	Duration string
}

type Analyzer interface {
	Analyze(ctx context.Context, in AnalyzeInput) (analysis.Outcome, error)
}

type analyzer struct {
	log          *logger.Logger
	client       gemini.Client
	cfg          *analysis.Config
	mockFallback bool
}

// NewAnalyzer builds the report step. With mockFallback set, exhausting every model yields the
// canned report instead of an error.
func NewAnalyzer(log *logger.Logger, client gemini.Client, cfg *analysis.Config, mockFallback bool) Analyzer {
	return &analyzer{
		log:          log.With("service", "Analyzer"),
		client:       client,
		cfg:          cfg,
		mockFallback: mockFallback,
	}
}

func (a *analyzer) Analyze(ctx context.Context, in AnalyzeInput) (analysis.Outcome, error) {
	ctx = ctxutil.Default(ctx)
	prompt := analysis.BuildAnalysisPrompt(analysis.PromptInput{
		Meta:       in.Meta,
		Transcript: in.Transcript.Transcription,
		Documents:  analysis.PromptDocuments(in.Documents),
		Rubric:     in.Rubric,
		Segments:   a.cfg.Segments,
	})

	report, model, err := analysis.FirstSuccess(ctx, a.cfg.AnalysisModels(), func(ctx context.Context, model string) (analysis.AnalysisReport, error) {
		raw, err := a.client.GenerateText(ctx, model, gemini.Request{Prompt: prompt, JSON: true})
		if err != nil {
			observability.Current().ObserveModelAttempt("analysis", model, "error")
			a.log.Warn("analysis model failed", "model", model, "error", err)
			return analysis.AnalysisReport{}, err
		}
		r, err := analysis.ParseReport(raw)
		if err != nil {
			observability.Current().ObserveModelAttempt("analysis", model, "invalid")
			a.log.Warn("analysis model returned an invalid report", "model", model, "error", err, "bytes", len(raw))
			return analysis.AnalysisReport{}, err
		}
		observability.Current().ObserveModelAttempt("analysis", model, "ok")
		return r, nil
	})

	out := analysis.Outcome{Report: report, Model: model, GeneratedByAI: true}
	switch {
	case err == nil:
		analysis.ApplyPrecedence(&out.Report.CobReport.Header, in.Meta)
	case errors.Is(err, analysis.ErrAllModelsFailed) && a.mockFallback:
		a.log.Warn("all analysis models failed; using mock report", "error", err)
		out = analysis.Outcome{
			Report:        analysis.MockReport(in.Meta, a.cfg.Segments),
			Model:         MockModel,
			GeneratedByAI: false,
		}
	default:
		return analysis.Outcome{}, fmt.Errorf("analyze: %w", err)
	}

	cob := &out.Report.CobReport
	if strings.TrimSpace(cob.Header.Duration) == "" && in.Duration != "" {
		cob.Header.Duration = in.Duration
	}
	if out.GeneratedByAI && cob.Scores.OverallPercentage <= 0 {
		cob.Scores.OverallPercentage = analysis.WeightedOverall(analysis.SegmentResults(cob.Parameters, a.cfg.Segments))
	}
	return out, nil
}
