// Package geminitest provides a scripted gemini.Client for tests.
package geminitest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yungbote/lecturelens-backend/internal/platform/gemini"
)

// Fake answers GenerateText from per-model scripts. A model with no script fails.
type Fake struct {
	mu sync.Mutex
	// States are returned by successive GetFile calls; the last one repeats.
	States    []gemini.FileState
	Responses map[string]string
	Errors    map[string]error
	UploadErr error

	Calls    []string
	Prompts  []string
	Uploaded []string
	Deleted  []string
	polls    int
}

func New() *Fake {
	return &Fake{
		States:    []gemini.FileState{gemini.FileStateActive},
		Responses: map[string]string{},
		Errors:    map[string]error{},
	}
}

func (f *Fake) UploadFile(_ context.Context, localPath string, mimeType string) (*gemini.RemoteFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UploadErr != nil {
		return nil, f.UploadErr
	}
	f.Uploaded = append(f.Uploaded, localPath)
	return &gemini.RemoteFile{
		Name:     fmt.Sprintf("files/%d", len(f.Uploaded)),
		URI:      "https://example.invalid/" + localPath,
		MIMEType: mimeType,
		State:    gemini.FileStateProcessing,
	}, nil
}

func (f *Fake) GetFile(_ context.Context, name string) (*gemini.RemoteFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state := gemini.FileStateActive
	if len(f.States) > 0 {
		i := f.polls
		if i >= len(f.States) {
			i = len(f.States) - 1
		}
		state = f.States[i]
	}
	f.polls++
	return &gemini.RemoteFile{Name: name, State: state}, nil
}

func (f *Fake) DeleteFile(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, name)
	return nil
}

func (f *Fake) GenerateText(ctx context.Context, model string, req gemini.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, model)
	f.Prompts = append(f.Prompts, req.Prompt)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := f.Errors[model]; ok {
		return "", err
	}
	if out, ok := f.Responses[model]; ok {
		return out, nil
	}
	return "", errors.New("model unavailable: " + model)
}

func (f *Fake) Close() error { return nil }

// Polls is the number of GetFile calls so far.
func (f *Fake) Polls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}
