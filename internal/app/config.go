package app

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/yungbote/lecturelens-backend/internal/jobs/worker"
	"github.com/yungbote/lecturelens-backend/internal/platform/envutil"
	"github.com/yungbote/lecturelens-backend/internal/platform/gcp"
	"github.com/yungbote/lecturelens-backend/internal/services"
)

const (
	TranscriberGemini    = "gemini"
	TranscriberGCPSpeech = "gcp_speech"
)

type Config struct {
	Port        string
	LogMode     string
	ServiceName string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	GeminiAPIKey string
	Poll         services.PollConfig
	MockFallback bool
	Transcriber  string
	SpeechLang   string

	UploadsDir string
	WorkDir    string
	Limits     services.FileLimits

	Document gcp.DocumentConfig
	Storage  gcp.ObjectStorageConfig

	RedisAddr              string
	AnalysisMaxConcurrency int

	Worker worker.Config

	AllowedOrigins  []string
	TracingEnabled  bool
	MetricsEnabled  bool
	QueueSampleRate time.Duration
}

func LoadConfig() (Config, error) {
	storage, err := gcp.ResolveObjectStorageConfigFromEnv()
	if err != nil {
		return Config{}, fmt.Errorf("object storage config: %w", err)
	}

	uploads := envutil.String("UPLOADS_DIR", "./uploads")
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		LogMode:     envutil.String("LOG_MODE", "development"),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "lecturelens-api"),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL: time.Duration(envutil.Int("ACCESS_TOKEN_TTL", 3600)) * time.Second,

		GeminiAPIKey: envutil.String("GEMINI_API_KEY", ""),
		Poll: services.PollConfig{
			Interval:    envutil.Duration("GEMINI_POLL_INTERVAL", 2*time.Second),
			MaxAttempts: envutil.Int("GEMINI_POLL_MAX_ATTEMPTS", 90),
		},
		MockFallback: envutil.Bool("ANALYSIS_MOCK_FALLBACK", false),
		Transcriber:  strings.ToLower(envutil.String("TRANSCRIBER", TranscriberGemini)),
		SpeechLang:   envutil.String("SPEECH_LANGUAGE_CODE", "en-US"),

		UploadsDir: uploads,
		WorkDir:    envutil.String("WORK_DIR", filepath.Join(uploads, "tmp")),
		Limits: services.FileLimits{
			MaxVideoBytes:    envutil.Int64("MAX_VIDEO_BYTES", 500<<20),
			MaxDocumentBytes: envutil.Int64("MAX_DOCUMENT_BYTES", 50<<20),
		},

		Document: gcp.DocumentConfigFromEnv(),
		Storage:  storage,

		RedisAddr:              envutil.String("REDIS_ADDR", ""),
		AnalysisMaxConcurrency: envutil.Int("ANALYSIS_MAX_CONCURRENCY", 2),

		Worker: worker.Config{
			Concurrency:  envutil.Int("WORKER_CONCURRENCY", 2),
			PollInterval: envutil.Duration("WORKER_POLL_INTERVAL", time.Second),
			MaxAttempts:  envutil.Int("JOB_MAX_ATTEMPTS", 1),
			RetryDelay:   envutil.Duration("JOB_RETRY_DELAY", 30*time.Second),
			StaleRunning: envutil.Duration("JOB_STALE_RUNNING", 2*time.Hour),
		},

		AllowedOrigins:  splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),
		TracingEnabled:  envutil.Bool("OTEL_ENABLED", false),
		MetricsEnabled:  envutil.Bool("METRICS_ENABLED", false),
		QueueSampleRate: envutil.Duration("METRICS_QUEUE_SAMPLE_INTERVAL", 15*time.Second),
	}

	switch cfg.Transcriber {
	case TranscriberGemini, TranscriberGCPSpeech:
	default:
		return Config{}, fmt.Errorf("invalid TRANSCRIBER=%q (allowed: %q, %q)", cfg.Transcriber, TranscriberGemini, TranscriberGCPSpeech)
	}
	if cfg.AnalysisMaxConcurrency <= 0 {
		cfg.AnalysisMaxConcurrency = 1
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
