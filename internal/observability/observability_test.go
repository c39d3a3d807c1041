package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/api/lectures/:id", "200", 30*time.Millisecond)
	m.ObserveAPI("GET", "/api/lectures/:id", "200", 2*time.Second)
	m.ObserveModelAttempt("analysis", "gemini-2.5-pro", "invalid")
	m.ObserveStage("transcribe", "succeeded", 40*time.Second)
	m.APIInflightInc()

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`ll_api_requests_total{method="GET",route="/api/lectures/:id",status="200"} 2`,
		`ll_api_request_duration_seconds_bucket{method="GET",route="/api/lectures/:id",status="200",le="0.05"} 1`,
		`ll_api_request_duration_seconds_count{method="GET",route="/api/lectures/:id",status="200"} 2`,
		`ll_model_attempts_total{step="analysis",model="gemini-2.5-pro",status="invalid"} 1`,
		`ll_analysis_stage_duration_seconds_bucket{stage="transcribe",status="succeeded",le="+Inf"} 1`,
		"ll_api_inflight_requests 1",
		"# TYPE ll_job_queue_depth gauge",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q\n%s", want, out)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Second)
	m.ObserveJob("lecture_analysis", "failed")
	m.APIInflightDec()
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil WritePrometheus: %v", err)
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"a", "b"}, []string{`x"y`})
	if got != `{a="x\"y",b="unknown"}` {
		t.Fatalf("labelString: %s", got)
	}
	if withLe("", "1") != `{le="1"}` {
		t.Fatalf("withLe empty")
	}
}

func TestParseHeadersAndRatio(t *testing.T) {
	h := parseHeaders("x-api-key=abc, bad ,=v,k=")
	if len(h) != 1 || h["x-api-key"] != "abc" {
		t.Fatalf("parseHeaders: %#v", h)
	}
	if parseHeaders("") != nil {
		t.Fatalf("expected nil headers")
	}
	t.Setenv("OTEL_SAMPLER_RATIO", "3")
	if sampleRatio() != 1 {
		t.Fatalf("ratio should clamp to 1")
	}
	t.Setenv("OTEL_SAMPLER_RATIO", "x")
	if sampleRatio() != 0.1 {
		t.Fatalf("ratio default")
	}
}

func TestStartSpanWithoutProvider(t *testing.T) {
	ctx, end := StartSpan(context.Background(), "lecture_analysis.test")
	if ctx == nil {
		t.Fatalf("nil ctx")
	}
	end(errors.New("boom"))
}
