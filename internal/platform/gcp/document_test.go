package gcp

import (
	"errors"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

func TestProcessorName(t *testing.T) {
	if got := processorName("p", "eu", "abc", ""); got != "projects/p/locations/eu/processors/abc" {
		t.Fatalf("processorName: %q", got)
	}
	if got := processorName("p", "eu", "abc", "v2"); got != "projects/p/locations/eu/processors/abc/processorVersions/v2" {
		t.Fatalf("processorName with version: %q", got)
	}
	if got := processorName("", "eu", "abc", ""); got != "" {
		t.Fatalf("processorName without project: %q", got)
	}
}

func TestNewDocumentRequiresConfig(t *testing.T) {
	t.Setenv("DOCUMENTAI_PROJECT_ID", "")
	t.Setenv("DOCUMENTAI_PROCESSOR_ID", "")
	cfg := DocumentConfigFromEnv()
	if cfg.Configured() {
		t.Fatalf("expected unconfigured")
	}
	if _, err := NewDocument(logger.Nop(), cfg); !errors.Is(err, ErrDocumentAINotConfigured) {
		t.Fatalf("expected ErrDocumentAINotConfigured, got %v", err)
	}
}

func TestBuildDocAIResult(t *testing.T) {
	doc := &documentaipb.Document{Text: "  Scanned rubric\n", Pages: []*documentaipb.Document_Page{{PageNumber: 1}, {PageNumber: 2}}}
	out := buildDocAIResult(doc, "proc", "application/pdf")
	if out.PrimaryText != "Scanned rubric" || out.Pages != 2 {
		t.Fatalf("buildDocAIResult: %+v", out)
	}
}
