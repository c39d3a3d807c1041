package services

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/yungbote/lecturelens-backend/internal/analysis"
	"github.com/yungbote/lecturelens-backend/internal/data/repos/memrepo"
	"github.com/yungbote/lecturelens-backend/internal/platform/apierr"
	"github.com/yungbote/lecturelens-backend/internal/platform/dbctx"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

const modelReport = `{"cob_report":{
  "header":{"facilitator":"Unknown Teacher","school":"N/A","grade":"5","section":"A","subject":"Science","date":"2024-01-01","topic_blm":"Fractions","duration":"","session_type":"Lecture"},
  "scores":{"overall_percentage":0,"summary":"Clear but shallow."},
  "parameters":[
    {"category":"Concepts A","name":"Accuracy","score":2,"out_of":2,"comment":"correct"},
    {"category":"Concepts B","name":"Depth","score":0,"out_of":2,"comment":"shallow"}
  ],
  "highlights":["Good use of examples"],
  "other_observations":[]
}}`

func testDBC() dbctx.Context { return dbctx.Context{Ctx: context.Background()} }

func newTestFiles(t *testing.T) FileStore {
	t.Helper()
	fs, err := NewFileStore(logger.Nop(), t.TempDir(), FileLimits{})
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return fs
}

func testConfig(t *testing.T) *analysis.Config {
	t.Helper()
	cfg, err := analysis.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	return cfg
}

func bytesFile(field, name string, data []byte) IncomingFile {
	return IncomingFile{
		Field:    field,
		Filename: name,
		Size:     int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func wantAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %d/%s, got nil error", status, code)
	}
	gotStatus, gotCode := apierr.Resolve(err, "internal")
	if gotStatus != status || gotCode != code {
		t.Fatalf("expected %d/%s, got %d/%s (%v)", status, code, gotStatus, gotCode, err)
	}
}

type testEnv struct {
	store *memrepo.Store
	files FileStore
	jobs  JobService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memrepo.New()
	return &testEnv{
		store: store,
		files: newTestFiles(t),
		jobs:  NewJobService(nil, logger.Nop(), store.Jobs()),
	}
}

func (e *testEnv) meta() LectureMetaResolver {
	return LectureMetaResolver{Teachers: e.store.Teachers(), Schools: e.store.Schools(), Classes: e.store.Classes()}
}

type stubExtractor struct{ text string }

func (s stubExtractor) Extract(_ context.Context, field string, absPath string) analysis.ExtractionResult {
	return analysis.ExtractionResult{Field: field, Path: absPath, Text: s.text, Source: "stub"}
}
