package app

import (
	"context"
	"errors"
	"fmt"
	"net"

	"gorm.io/gorm"

	"github.com/yungbote/lecturelens-backend/internal/analysis"
	"github.com/yungbote/lecturelens-backend/internal/data/db"
	httpapi "github.com/yungbote/lecturelens-backend/internal/http"
	"github.com/yungbote/lecturelens-backend/internal/jobs/worker"
	"github.com/yungbote/lecturelens-backend/internal/observability"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Server   *httpapi.Server
	Worker   *worker.Worker
	Metrics  *observability.Metrics

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &App{Log: log, Cfg: cfg}
	if err := a.wire(ctx); err != nil {
		a.Close(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	log, cfg := a.Log, a.Cfg

	a.otelShutdown = observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.LogMode,
	})
	if cfg.MetricsEnabled {
		a.Metrics = observability.Init()
	}

	analysisCfg, err := analysis.LoadConfig()
	if err != nil {
		return fmt.Errorf("load analysis config: %w", err)
	}
	log.Info("Analysis config loaded",
		"transcript_models", analysisCfg.TranscriptModels(),
		"analysis_models", analysisCfg.AnalysisModels(),
		"segments", len(analysisCfg.Segments),
	)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		return fmt.Errorf("init postgres: %w", err)
	}
	a.pg = pg
	if err := pg.AutoMigrateAll(); err != nil {
		return fmt.Errorf("postgres automigrate: %w", err)
	}
	a.DB = pg.DB()

	a.Repos = wireRepos(a.DB, log)
	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		return err
	}
	a.Clients = clients
	if a.Services, err = wireServices(a.DB, log, cfg, analysisCfg, a.Repos, a.Clients); err != nil {
		return err
	}
	if a.Worker, err = wireJobs(log, cfg, analysisCfg, a.Repos, a.Clients, a.Services); err != nil {
		return err
	}

	h := wireHandlers(log, a.DB, a.Services)
	a.Server = httpapi.NewServer(httpapi.RouterConfig{
		Log:            log,
		ServiceName:    cfg.ServiceName,
		AllowedOrigins: cfg.AllowedOrigins,
		Tracing:        cfg.TracingEnabled,
		Metrics:        a.Metrics,

		AnalysisHandler: h.Analysis,
		RubricHandler:   h.Rubric,
		SchoolHandler:   h.School,
		UserHandler:     h.User,
		TeacherHandler:  h.Teacher,
		ClassHandler:    h.Class,
		LectureHandler:  h.Lecture,
		AuthHandler:     h.Auth,
		JobHandler:      h.Job,
		HealthHandler:   h.Health,
	})
	return nil
}

// Start launches the job worker and the queue depth sampler.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, a.cancel = context.WithCancel(ctx)
	if a.Worker != nil {
		a.Worker.Start(ctx)
	}
	if a.Metrics != nil {
		a.Metrics.StartJobQueueCollector(ctx, a.Log, a.DB, a.Cfg.QueueSampleRate)
	}
}

// Run serves HTTP until Close shuts the server down.
func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	addr := net.JoinHostPort("", a.Cfg.Port)
	a.Log.Info("HTTP server listening", "addr", addr)
	return a.Server.Run(addr)
}

// Close stops HTTP first so no new jobs are enqueued, then drains the worker and releases clients.
func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Log.Warn("HTTP shutdown", "error", err)
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Worker != nil {
		a.Worker.Wait()
	}
	a.Clients.Close()
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("Postgres close", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("OTel shutdown", "error", err)
		}
	}
	a.Log.Sync()
}
