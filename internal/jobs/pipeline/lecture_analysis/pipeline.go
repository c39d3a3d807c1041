package lecture_analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/lecturelens-backend/internal/analysis"
	types "github.com/yungbote/lecturelens-backend/internal/domain"
	jobrt "github.com/yungbote/lecturelens-backend/internal/jobs/runtime"
	"github.com/yungbote/lecturelens-backend/internal/observability"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturelens-backend/internal/platform/localmedia"
	"github.com/yungbote/lecturelens-backend/internal/services"
)

const (
	StageLoad       = "load"
	StageExtract    = "extract"
	StageSlot       = "slot"
	StageTranscribe = "transcribe"
	StageAnalyze    = "analyze"
	StageRender     = "render"
	StagePersist    = "persist"
	StageArchive    = "archive"
)

type Result struct {
	LectureID       uuid.UUID `json:"lecture_id"`
	ReportID        uuid.UUID `json:"report_id"`
	Model           string    `json:"model"`
	TranscriptModel string    `json:"transcript_model"`
	GeneratedByAI   bool      `json:"generated_by_ai"`
	Overall         float64   `json:"overall_percentage"`
	Archived        int       `json:"archived,omitempty"`
}

// run carries one job's intermediate values between stages.
type run struct {
	jc         *jobrt.Context
	lecture    *types.Lecture
	aux        map[string]string
	documents  []analysis.ExtractionResult
	rubric     string
	meta       services.LectureMeta
	transcript analysis.TranscriptResult
	duration   string
	outcome    analysis.Outcome
	pdfPath    string
	report     *types.Report
	releaseFn  func()
}

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	lectureID, ok := jc.PayloadUUID("lecture_id")
	if !ok {
		err := fmt.Errorf("missing lecture_id")
		jc.Fail("validate", err)
		return err
	}
	r := &run{jc: jc}
	defer r.release()
	log := p.log.With("job_id", jc.Job.ID, "lecture_id", lectureID)
	log.Info("Lecture analysis started", "rerun", jc.PayloadBool("rerun"))

	steps := []struct {
		stage string
		pct   int
		msg   string
		fn    func(ctx context.Context, r *run) error
	}{
		{StageLoad, 5, "Loading lecture", func(ctx context.Context, r *run) error { return p.load(ctx, r, lectureID) }},
		{StageExtract, 10, "Extracting document text", p.extract},
		{StageTranscribe, 30, "Transcribing lecture audio", p.transcribe},
		{StageAnalyze, 60, "Generating observation report", p.analyze},
		{StageRender, 80, "Rendering report PDF", p.render},
		{StagePersist, 90, "Saving report", p.persist},
	}
	for _, s := range steps {
		if err := p.stage(jc, s.stage, s.pct, s.msg, func(ctx context.Context) error { return s.fn(ctx, r) }); err != nil {
			log.Warn("Lecture analysis failed", "stage", s.stage, "error", err)
			return err
		}
	}

	archived := 0
	_ = p.stage(jc, StageArchive, 95, "Archiving files", func(ctx context.Context) error {
		archived = p.archive(ctx, r)
		return nil
	})

	cob := r.outcome.Report.CobReport
	jc.Succeed("done", Result{
		LectureID:       lectureID,
		ReportID:        r.report.ID,
		Model:           r.outcome.Model,
		TranscriptModel: r.transcript.Model,
		GeneratedByAI:   r.outcome.GeneratedByAI,
		Overall:         cob.Scores.OverallPercentage,
		Archived:        archived,
	})
	log.Info("Lecture analysis finished", "report_id", r.report.ID, "model", r.outcome.Model, "generated_by_ai", r.outcome.GeneratedByAI)
	return nil
}

// stage wraps fn in progress reporting, a span and a latency sample. A failing stage fails the job.
func (p *Pipeline) stage(jc *jobrt.Context, name string, pct int, msg string, fn func(ctx context.Context) error) error {
	jc.Progress(name, pct, msg)
	ctx, end := observability.StartSpan(jc.Ctx, "lecture_analysis."+name,
		attribute.String("job.id", jc.Job.ID.String()),
	)
	start := time.Now()
	err := fn(ctx)
	end(err)
	status := "ok"
	if err != nil {
		status = "error"
		jc.Fail(name, err)
	}
	observability.Current().ObserveStage(name, status, time.Since(start))
	return err
}

func (p *Pipeline) load(ctx context.Context, r *run, lectureID uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	l, err := p.d.Lectures.GetByID(dbc, lectureID)
	if err != nil {
		return fmt.Errorf("load lecture: %w", err)
	}
	if l == nil {
		return fmt.Errorf("lecture %s not found", lectureID)
	}
	if l.VideoPath == "" || !p.d.Files.Exists(l.VideoPath) {
		return fmt.Errorf("lecture %s has no stored video", lectureID)
	}
	r.lecture = l
	r.aux = map[string]string{}
	if len(l.AuxFiles) > 0 {
		if err := json.Unmarshal(l.AuxFiles, &r.aux); err != nil {
			return fmt.Errorf("decode aux_files: %w", err)
		}
	}
	if r.meta, err = p.d.Meta.Resolve(dbc, l); err != nil {
		return err
	}
	return nil
}

// extract reads every auxiliary document in parallel. Extraction never fails a job;
// a broken file yields placeholder text.
func (p *Pipeline) extract(ctx context.Context, r *run) error {
	fields := make([]string, 0, len(analysis.AuxFields))
	for _, f := range analysis.AuxFields {
		if r.aux[f] != "" {
			fields = append(fields, f)
		}
	}
	results := make([]analysis.ExtractionResult, len(fields))
	g, gctx := errgroup.WithContext(ctx)
	for i, field := range fields {
		g.Go(func() error {
			results[i] = p.d.Text.Extract(gctx, field, p.d.Files.Abs(r.aux[field]))
			return nil
		})
	}
	var rubric *types.Rubric
	g.Go(func() error {
		if p.d.Rubrics == nil || r.lecture.Grade == "" {
			return nil
		}
		var err error
		rubric, err = p.d.Rubrics.ForGrade(dbctx.Context{Ctx: gctx}, r.lecture.Grade)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	r.documents = results
	if rubric != nil {
		r.rubric = rubric.Content
	}
	return nil
}

// transcribe takes an analysis slot for the Gemini-bound stages; analyze gives it back.
func (p *Pipeline) transcribe(ctx context.Context, r *run) error {
	if p.d.Slots != nil {
		r.jc.Progress(StageSlot, 25, "Waiting for an analysis slot")
		release, err := p.d.Slots.Acquire(ctx)
		if err != nil {
			return fmt.Errorf("acquire analysis slot: %w", err)
		}
		r.releaseLater(release)
		r.jc.Progress(StageTranscribe, 30, "Transcribing lecture audio")
	}
	video := p.d.Files.Abs(r.lecture.VideoPath)
	t, err := p.d.Transcriber.Transcribe(ctx, video)
	if err != nil {
		return err
	}
	r.transcript = t
	if p.d.Media != nil {
		if d, err := p.d.Media.ProbeDuration(ctx, video); err != nil {
			p.log.Warn("Duration probe failed", "lecture_id", r.lecture.ID, "error", err)
		} else {
			r.duration = localmedia.FormatClock(d)
		}
	}
	return nil
}

func (p *Pipeline) analyze(ctx context.Context, r *run) error {
	defer r.release()
	out, err := p.d.Analyzer.Analyze(ctx, services.AnalyzeInput{
		Meta:       r.meta.Metadata(),
		Transcript: r.transcript,
		Documents:  r.documents,
		Rubric:     r.rubric,
		Duration:   r.duration,
	})
	if err != nil {
		return err
	}
	r.outcome = out
	return nil
}

func (p *Pipeline) render(_ context.Context, r *run) error {
	rel := services.ReportPDFPath(r.lecture.ID)
	in := services.RenderInput{
		Report:        r.outcome.Report,
		Segments:      p.segments(),
		Model:         r.outcome.Model,
		GeneratedByAI: r.outcome.GeneratedByAI,
	}
	if err := p.d.Renderer.RenderFile(in, p.d.Files.Abs(rel)); err != nil {
		return err
	}
	r.pdfPath = rel
	return nil
}

func (p *Pipeline) persist(ctx context.Context, r *run) error {
	doc, err := json.Marshal(r.outcome.Report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	scores := map[string]float64{}
	for _, s := range analysis.SegmentResults(r.outcome.Report.CobReport.Parameters, p.segments()) {
		if s.Matched > 0 {
			scores[s.Name] = s.Percentage
		}
	}
	scoresJSON, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("encode rubric scores: %w", err)
	}
	saved, err := p.d.Reports.Upsert(dbctx.Context{Ctx: ctx}, &types.Report{
		LectureID:     r.lecture.ID,
		AnalysisData:  datatypes.JSON(doc),
		RubricScores:  datatypes.JSON(scoresJSON),
		GeneratedByAI: r.outcome.GeneratedByAI,
		Model:         r.outcome.Model,
		PDFPath:       r.pdfPath,
	})
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	r.report = saved
	return nil
}

// archive mirrors the lecture's files under lectures/<id>/ and returns how many were copied.
// Failures are logged only.
func (p *Pipeline) archive(ctx context.Context, r *run) int {
	if p.d.Archive == nil || !p.d.Archive.Enabled() {
		return 0
	}
	prefix := path.Join("lectures", r.lecture.ID.String())
	files := map[string]string{
		"video" + filepath.Ext(r.lecture.VideoPath): r.lecture.VideoPath,
		"report.pdf": r.pdfPath,
	}
	for field, rel := range r.aux {
		files[field+filepath.Ext(rel)] = rel
	}
	n := 0
	var errs []error
	for name, rel := range files {
		if rel == "" {
			continue
		}
		if err := p.d.Archive.UploadFile(ctx, path.Join(prefix, name), p.d.Files.Abs(rel)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		n++
	}
	if err := errors.Join(errs...); err != nil {
		p.log.Warn("Archive mirror incomplete", "lecture_id", r.lecture.ID, "error", err)
	}
	return n
}

func (p *Pipeline) segments() []analysis.Segment {
	if p.d.Config == nil {
		return nil
	}
	return p.d.Config.Segments
}

func (r *run) releaseLater(release func()) { r.releaseFn = release }

func (r *run) release() {
	if r.releaseFn != nil {
		r.releaseFn()
		r.releaseFn = nil
	}
}
