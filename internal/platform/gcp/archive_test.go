package gcp

import (
	"context"
	"strings"
	"testing"

	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

func TestNewArchiveLocalModeIsNoop(t *testing.T) {
	a, err := NewArchive(logger.Nop(), ObjectStorageConfig{Mode: ObjectStorageModeLocal})
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	if a.Enabled() {
		t.Fatalf("local archive should be disabled")
	}
	if err := a.Upload(context.Background(), "lectures/x/video.mp4", strings.NewReader("data")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if a.URI("k") != "" {
		t.Fatalf("disabled archive should not return a URI")
	}
}

func TestNewArchiveRejectsGCSWithoutBucket(t *testing.T) {
	if _, err := NewArchive(logger.Nop(), ObjectStorageConfig{Mode: ObjectStorageModeGCS}); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"lectures/1/report-1.pdf": "application/pdf",
		"lectures/1/VIDEO.MP4":    "video/mp4",
		"lectures/1/audio.wav":    "audio/wav",
		"lectures/1/notes.txt":    "",
	}
	for key, want := range cases {
		if got := contentTypeForKey(key); got != want {
			t.Fatalf("contentTypeForKey(%q): got=%q want=%q", key, got, want)
		}
	}
	if got := cleanKey("//lectures/../lectures/1/a.pdf"); got != "lectures/1/a.pdf" {
		t.Fatalf("cleanKey: %q", got)
	}
}
