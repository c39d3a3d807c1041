// Package mediatest provides a localmedia.Tools that never shells out.
package mediatest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/yungbote/lecturelens-backend/internal/platform/localmedia"
)

type Fake struct {
	mu         sync.Mutex
	Duration   time.Duration
	ExtractErr error
	ProbeErr   error
	// AudioSize, when set, is the byte size of every extracted audio file.
	AudioSize int
	// Extracted records every audio file written, so tests can check cleanup.
	Extracted []string
}

func New() *Fake { return &Fake{Duration: 42*time.Minute + 5*time.Second} }

func (f *Fake) AssertReady(context.Context) error { return nil }

func (f *Fake) ExtractAudio(_ context.Context, videoPath string, outPath string, _ localmedia.AudioExtractOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ExtractErr != nil {
		return "", f.ExtractErr
	}
	if _, err := os.Stat(videoPath); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	data := []byte("fake-audio")
	if f.AudioSize > 0 {
		data = make([]byte, f.AudioSize)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return "", err
	}
	f.Extracted = append(f.Extracted, outPath)
	return outPath, nil
}

func (f *Fake) ProbeDuration(context.Context, string) (time.Duration, error) {
	if f.ProbeErr != nil {
		return 0, f.ProbeErr
	}
	return f.Duration, nil
}
