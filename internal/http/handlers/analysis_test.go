package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lecturelens-backend/internal/http/response"
	"github.com/yungbote/lecturelens-backend/internal/platform/apierr"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
	"github.com/yungbote/lecturelens-backend/internal/services"
)

type formFile struct {
	field, name, body string
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files []formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(f.body)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func newAnalysisRouter(a *fakeAnalysis, r *fakeReports) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAnalysisHandler(logger.Nop(), a, r)
	e := gin.New()
	e.POST("/api/upload", h.Upload)
	e.GET("/api/analysis/:lecture_id", h.GetReport)
	e.GET("/api/analysis/:lecture_id/download", h.DownloadReport)
	e.POST("/api/analysis/:lecture_id/rerun", h.Rerun)
	return e
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.APIError {
	t.Helper()
	var env response.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return env.Error
}

func TestUploadAccepted(t *testing.T) {
	teacherID := uuid.New()
	lectureID := uuid.New()
	jobID := uuid.New()
	fake := &fakeAnalysis{result: &services.UploadResult{Status: services.StatusProcessing, LectureID: lectureID, JobID: jobID}}
	router := newAnalysisRouter(fake, &fakeReports{})

	req := multipartRequest(t, "/api/upload", map[string]string{
		"teacher_id":     teacherID.String(),
		"date":           "2024-01-01",
		"lecture_number": "3",
		"grade":          "5",
		"section":        " A ",
	}, []formFile{
		{"video", "lesson.mp4", "video-bytes"},
		{"cobParams", "params.pdf", "params-bytes"},
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	var got services.UploadResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "processing" || got.LectureID != lectureID || got.JobID != jobID {
		t.Fatalf("unexpected body: %+v", got)
	}

	in := fake.in
	if in.TeacherID != teacherID || in.Date != "2024-01-01" || in.Grade != "5" || in.Section != "A" {
		t.Fatalf("unexpected input: %+v", in)
	}
	if in.LectureNumber == nil || *in.LectureNumber != 3 {
		t.Fatalf("lecture number: %v", in.LectureNumber)
	}
	if len(fake.received) != 2 {
		t.Fatalf("files: got=%d want=2", len(fake.received))
	}
	// fields arrive sorted
	if fake.received[0].Field != "cobParams" || fake.received[1].Field != "video" {
		t.Fatalf("unexpected field order: %+v", fake.received)
	}
	if fake.received[1].Filename != "lesson.mp4" || fake.received[1].Body != "video-bytes" {
		t.Fatalf("video part: %+v", fake.received[1])
	}
}

func TestUploadRejections(t *testing.T) {
	cases := []struct {
		name       string
		fields     map[string]string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "bad teacher id",
			fields:     map[string]string{"teacher_id": "1", "date": "2024-01-01"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_teacher_id",
		},
		{
			name:       "bad lecture number",
			fields:     map[string]string{"teacher_id": uuid.NewString(), "lecture_number": "first"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_lecture_number",
		},
		{
			name:       "service validation",
			fields:     map[string]string{"teacher_id": uuid.NewString(), "date": "2024-01-01"},
			serviceErr: apierr.BadRequest("invalid_file_type", "video: %q is not an allowed video type", ".exe"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_file_type",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeAnalysis{err: tc.serviceErr}
			router := newAnalysisRouter(fake, &fakeReports{})
			req := multipartRequest(t, "/api/upload", tc.fields, []formFile{{"video", "lesson.exe", "x"}})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status: got=%d want=%d body=%s", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if got := decodeError(t, rec); got.Code != tc.wantCode {
				t.Fatalf("code: got=%q want=%q", got.Code, tc.wantCode)
			}
		})
	}
}

func TestUploadRequiresMultipart(t *testing.T) {
	router := newAnalysisRouter(&fakeAnalysis{}, &fakeReports{})
	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(`{"teacher_id":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got=%d", rec.Code)
	}
	if got := decodeError(t, rec); got.Code != "invalid_multipart_form" {
		t.Fatalf("code: got=%q", got.Code)
	}
}

func TestGetReport(t *testing.T) {
	lectureID := uuid.New()

	t.Run("invalid id", func(t *testing.T) {
		router := newAnalysisRouter(&fakeAnalysis{}, &fakeReports{})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analysis/42", nil))
		if rec.Code != http.StatusBadRequest || decodeError(t, rec).Code != "invalid_lecture_id" {
			t.Fatalf("got=%d body=%s", rec.Code, rec.Body.String())
		}
	})

	t.Run("not found", func(t *testing.T) {
		reports := &fakeReports{err: apierr.NotFound("report_not_found", "no report for lecture %s", lectureID)}
		router := newAnalysisRouter(&fakeAnalysis{}, reports)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analysis/"+lectureID.String(), nil))
		if rec.Code != http.StatusNotFound || decodeError(t, rec).Code != "report_not_found" {
			t.Fatalf("got=%d body=%s", rec.Code, rec.Body.String())
		}
	})

	t.Run("ok", func(t *testing.T) {
		reports := &fakeReports{view: &services.ReportView{LectureID: lectureID, GeneratedByAI: true, Patched: []string{"facilitator"}}}
		router := newAnalysisRouter(&fakeAnalysis{}, reports)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analysis/"+lectureID.String(), nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status: got=%d body=%s", rec.Code, rec.Body.String())
		}
		var got services.ReportView
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.LectureID != lectureID || !got.GeneratedByAI || len(got.Patched) != 1 {
			t.Fatalf("unexpected view: %+v", got)
		}
	})
}

func TestDownloadReport(t *testing.T) {
	lectureID := uuid.New()
	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.3 test"), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	router := newAnalysisRouter(&fakeAnalysis{}, &fakeReports{pdfPath: path})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analysis/"+lectureID.String()+"/download", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF-") {
		t.Fatalf("body is not a pdf: %q", rec.Body.String())
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "attachment") || !strings.Contains(cd, lectureID.String()) {
		t.Fatalf("content-disposition: %q", cd)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/pdf") {
		t.Fatalf("content-type: %q", ct)
	}
}

func TestRerun(t *testing.T) {
	lectureID := uuid.New()

	router := newAnalysisRouter(&fakeAnalysis{}, &fakeReports{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analysis/"+lectureID.String()+"/rerun", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		Status    string    `json:"status"`
		LectureID uuid.UUID `json:"lecture_id"`
		JobID     uuid.UUID `json:"job_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "processing" || body.LectureID != lectureID || body.JobID == uuid.Nil {
		t.Fatalf("unexpected body: %+v", body)
	}

	busy := &fakeAnalysis{rerunErr: apierr.Conflict("analysis_in_progress", "busy")}
	router = newAnalysisRouter(busy, &fakeReports{})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analysis/"+lectureID.String()+"/rerun", nil))
	if rec.Code != http.StatusConflict || decodeError(t, rec).Code != "analysis_in_progress" {
		t.Fatalf("got=%d body=%s", rec.Code, rec.Body.String())
	}
}
