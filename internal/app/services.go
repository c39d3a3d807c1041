package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/lecturelens-backend/internal/analysis"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturelens-backend/internal/platform/gcp"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
	"github.com/yungbote/lecturelens-backend/internal/services"
)

type Services struct {
	Files       services.FileStore
	Text        services.TextExtractor
	Renderer    services.PDFRenderer
	Meta        services.LectureMetaResolver
	Transcriber services.Transcriber
	Analyzer    services.Analyzer

	Jobs     services.JobService
	Auth     services.AuthService
	School   services.SchoolService
	User     services.UserService
	Teacher  services.TeacherService
	Class    services.ClassService
	Lecture  services.LectureService
	Rubric   services.RubricService
	Report   services.ReportService
	Analysis services.AnalysisService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, analysisCfg *analysis.Config, r Repos, c Clients) (Services, error) {
	log.Info("Wiring services...")

	files, err := services.NewFileStore(log, cfg.UploadsDir, cfg.Limits)
	if err != nil {
		return Services{}, fmt.Errorf("init file store: %w", err)
	}
	text := services.NewTextExtractor(log, c.Document)
	renderer := services.NewPDFRenderer()
	meta := services.LectureMetaResolver{Teachers: r.Teacher, Schools: r.School, Classes: r.Class}

	var transcriber services.Transcriber
	switch cfg.Transcriber {
	case TranscriberGCPSpeech:
		transcriber = services.NewSpeechTranscriber(log, c.Media, c.Speech, c.Archive, gcp.SpeechConfig{LanguageCode: cfg.SpeechLang}, cfg.WorkDir)
	default:
		transcriber = services.NewGeminiTranscriber(log, c.Media, c.Gemini, analysisCfg.TranscriptModels(), cfg.Poll, cfg.WorkDir)
	}
	analyzer := services.NewAnalyzer(log, c.Gemini, analysisCfg, cfg.MockFallback)

	jobs := services.NewJobService(db, log, r.JobRun)
	rubrics := services.NewRubricService(db, log, r.Rubric, files, text)

	return Services{
		Files:       files,
		Text:        text,
		Renderer:    renderer,
		Meta:        meta,
		Transcriber: transcriber,
		Analyzer:    analyzer,

		Jobs:     jobs,
		Auth:     services.NewAuthService(log, r.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		School:   services.NewSchoolService(db, log, r.School),
		User:     services.NewUserService(db, log, r.User, r.School),
		Teacher:  services.NewTeacherService(db, log, r.Teacher, r.School, r.User, files, services.NewAvatarRenderer()),
		Class:    services.NewClassService(db, log, r.Class, r.School, r.Teacher),
		Lecture:  services.NewLectureService(db, log, r.Lecture, r.Teacher, r.Class, r.Report, jobs),
		Rubric:   rubrics,
		Report:   services.NewReportService(db, log, r.Lecture, r.Report, meta, files, renderer, analysisCfg.Segments),
		Analysis: services.NewAnalysisService(db, log, dbctx.NewTxRunner(db), files, r.Lecture, r.Teacher, r.Class, jobs),
	}, nil
}
