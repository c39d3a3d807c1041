package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecturelens-backend/internal/platform/ctxutil"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen *ctxutil.TraceData
	r := gin.New()
	r.Use(AttachTraceContext(), RequestLogger(logger.Nop()))
	r.GET("/api/lectures/:id", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/lectures/abc", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil {
		t.Fatalf("trace data not attached to request context")
	}
	if seen.RequestID != "req-123" {
		t.Fatalf("request id: got=%q", seen.RequestID)
	}
	if seen.TraceID == "" {
		t.Fatalf("expected a generated trace id")
	}
	if got := rec.Header().Get(headerRequestID); got != "req-123" {
		t.Fatalf("request id header: got=%q", got)
	}
	if got := rec.Header().Get(headerTraceID); got != seen.TraceID {
		t.Fatalf("trace id header: got=%q want=%q", got, seen.TraceID)
	}
}
