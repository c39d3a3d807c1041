package http

import (
	"context"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/lecturelens-backend/internal/http/handlers"
	"github.com/yungbote/lecturelens-backend/internal/observability"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

func TestRouterHealthAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := observability.NewMetrics()
	r := NewRouter(RouterConfig{
		Log:           logger.Nop(),
		Metrics:       metrics,
		HealthHandler: httpH.NewHealthHandler(nil),
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/healthcheck", nil))
	if rec.Code != nethttp.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: got=%d body=%q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected a request id header")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("metrics: got=%d", rec.Code)
	}
	want := `ll_api_requests_total{method="GET",route="/healthcheck",status="200"} 1`
	if !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("metrics body missing %q:\n%s", want, rec.Body.String())
	}
}

func TestRouterWithoutMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{
		Log: logger.Nop(),
		HealthHandler: httpH.NewHealthHandler(func(context.Context) error {
			return errors.New("connection refused")
		}),
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	if rec.Code != nethttp.StatusNotFound {
		t.Fatalf("metrics should not be routed: got=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/healthcheck", nil))
	if rec.Code != nethttp.StatusServiceUnavailable {
		t.Fatalf("healthcheck with failing ping: got=%d", rec.Code)
	}
}
