package app

import (
	"fmt"

	"github.com/yungbote/lecturelens-backend/internal/analysis"
	"github.com/yungbote/lecturelens-backend/internal/jobs/pipeline/lecture_analysis"
	"github.com/yungbote/lecturelens-backend/internal/jobs/runtime"
	"github.com/yungbote/lecturelens-backend/internal/jobs/worker"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

func wireJobs(log *logger.Logger, cfg Config, analysisCfg *analysis.Config, r Repos, c Clients, s Services) (*worker.Worker, error) {
	log.Info("Wiring jobs...")
	registry := runtime.NewRegistry()
	pipeline := lecture_analysis.New(log, lecture_analysis.Deps{
		Lectures:    r.Lecture,
		Reports:     r.Report,
		Rubrics:     s.Rubric,
		Meta:        s.Meta,
		Files:       s.Files,
		Text:        s.Text,
		Transcriber: s.Transcriber,
		Analyzer:    s.Analyzer,
		Renderer:    s.Renderer,
		Media:       c.Media,
		Archive:     c.Archive,
		Slots:       c.Slots,
		Config:      analysisCfg,
	})
	if err := registry.Register(pipeline); err != nil {
		return nil, fmt.Errorf("register %s: %w", pipeline.Type(), err)
	}
	return worker.NewWorker(log, r.JobRun, registry, cfg.Worker), nil
}
