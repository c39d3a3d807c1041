package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/lecturelens-backend/internal/domain"
	"github.com/yungbote/lecturelens-backend/internal/platform/envutil"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

// Metrics is a small Prometheus text-format registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	apiRequests   *CounterVec
	apiLatency    *HistogramVec
	apiInflight   *Gauge
	stageLatency  *HistogramVec
	modelAttempts *CounterVec
	jobRuns       *CounterVec
	queueDepth    *GaugeVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide registry when METRICS_ENABLED is set and returns nil otherwise.
func Init() *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() { instance = NewMetrics() })
	return instance
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("ll_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"ll_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: NewGauge("ll_api_inflight_requests", "In-flight API requests."),
		stageLatency: NewHistogramVec(
			"ll_analysis_stage_duration_seconds",
			"Lecture analysis stage latency by stage/status.",
			[]string{"stage", "status"},
			[]float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1800},
		),
		modelAttempts: NewCounterVec("ll_model_attempts_total", "Generative model calls by step/model/status.", []string{"step", "model", "status"}),
		jobRuns:       NewCounterVec("ll_job_runs_total", "Finished job runs by type/status.", []string{"job_type", "status"}),
		queueDepth:    NewGaugeVec("ll_job_queue_depth", "job_run rows by status.", []string{"status"}),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []collector{m.apiRequests, m.apiLatency, m.apiInflight, m.stageLatency, m.modelAttempts, m.jobRuns, m.queueDepth} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	method, route, status = orUnknown(method), orUnknown(route), orUnknown(status)
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Add(1)
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Add(-1)
	}
}

func (m *Metrics) ObserveStage(stage, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.stageLatency.Observe(dur.Seconds(), orUnknown(stage), orUnknown(status))
}

// ObserveModelAttempt counts one call in a model fallback walk. status is "ok", "error" or "invalid".
func (m *Metrics) ObserveModelAttempt(step, model, status string) {
	if m == nil {
		return
	}
	m.modelAttempts.Inc(orUnknown(step), orUnknown(model), orUnknown(status))
}

func (m *Metrics) ObserveJob(jobType, status string) {
	if m == nil {
		return
	}
	m.jobRuns.Inc(orUnknown(jobType), orUnknown(status))
}

// StartJobQueueCollector samples job_run counts per status until ctx ends.
func (m *Metrics) StartJobQueueCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	statuses := []string{domain.JobStatusQueued, domain.JobStatusRunning, domain.JobStatusSucceeded, domain.JobStatusFailed, domain.JobStatusCanceled}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			var rows []struct {
				Status string
				Count  int64
			}
			if err := db.WithContext(ctx).
				Model(&domain.JobRun{}).
				Select("status, count(*) as count").
				Group("status").
				Scan(&rows).Error; err != nil {
				log.Warn("metrics: job queue depth query failed", "error", err)
				continue
			}
			for _, s := range statuses {
				m.queueDepth.Set(0, s)
			}
			for _, row := range rows {
				m.queueDepth.Set(float64(row.Count), orUnknown(row.Status))
			}
		}
	}()
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return s
}
