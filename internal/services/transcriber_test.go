package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/lecturelens-backend/internal/analysis"
	"github.com/yungbote/lecturelens-backend/internal/platform/gcp"
	"github.com/yungbote/lecturelens-backend/internal/platform/gemini"
	"github.com/yungbote/lecturelens-backend/internal/platform/gemini/geminitest"
	"github.com/yungbote/lecturelens-backend/internal/platform/localmedia/mediatest"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

var fastPoll = PollConfig{Interval: time.Millisecond, MaxAttempts: 5}

func writeVideo(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "lecture.mp4")
	if err := os.WriteFile(p, []byte("not really a video"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	return p
}

func TestWaitForActive(t *testing.T) {
	fake := geminitest.New()
	fake.States = []gemini.FileState{gemini.FileStateProcessing, gemini.FileStateProcessing, gemini.FileStateActive}
	start := &gemini.RemoteFile{Name: "files/1", State: gemini.FileStateProcessing}

	got, err := WaitForActive(context.Background(), fake, start, fastPoll)
	if err != nil {
		t.Fatalf("WaitForActive: %v", err)
	}
	if got.State != gemini.FileStateActive || fake.Polls() != 3 {
		t.Fatalf("state=%s polls=%d", got.State, fake.Polls())
	}

	fake = geminitest.New()
	fake.States = []gemini.FileState{gemini.FileStateFailed}
	if _, err := WaitForActive(context.Background(), fake, start, fastPoll); !errors.Is(err, ErrRemoteFileFailed) {
		t.Fatalf("expected ErrRemoteFileFailed, got %v", err)
	}

	fake = geminitest.New()
	fake.States = []gemini.FileState{gemini.FileStateProcessing}
	_, err = WaitForActive(context.Background(), fake, start, PollConfig{Interval: time.Millisecond, MaxAttempts: 3})
	if !errors.Is(err, ErrRemoteFileTimeout) {
		t.Fatalf("expected ErrRemoteFileTimeout, got %v", err)
	}
	if fake.Polls() != 2 {
		t.Fatalf("expected 2 polls before giving up, got %d", fake.Polls())
	}
}

func TestGeminiTranscriberFallsBackAndCleansUp(t *testing.T) {
	cfg := testConfig(t)
	models := cfg.TranscriptModels()
	fake := geminitest.New()
	fake.Responses[models[0]] = "   "
	fake.Responses[models[1]] = " Good morning class. "
	media := mediatest.New()

	tr := NewGeminiTranscriber(logger.Nop(), media, fake, models, fastPoll, t.TempDir())
	res, err := tr.Transcribe(context.Background(), writeVideo(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Model != models[1] || res.Transcription != "Good morning class." || res.Sentiment != analysis.SentimentNotComputed {
		t.Fatalf("unexpected transcript: %+v", res)
	}
	if len(fake.Deleted) != 1 {
		t.Fatalf("remote audio not deleted: %v", fake.Deleted)
	}
	if len(media.Extracted) != 1 {
		t.Fatalf("expected one extraction, got %v", media.Extracted)
	}
	if _, err := os.Stat(media.Extracted[0]); !os.IsNotExist(err) {
		t.Fatalf("temporary audio left behind: %v", err)
	}
}

func TestGeminiTranscriberExhaustion(t *testing.T) {
	cfg := testConfig(t)
	fake := geminitest.New()
	media := mediatest.New()

	tr := NewGeminiTranscriber(logger.Nop(), media, fake, cfg.TranscriptModels(), fastPoll, t.TempDir())
	_, err := tr.Transcribe(context.Background(), writeVideo(t))
	if !errors.Is(err, analysis.ErrAllModelsFailed) {
		t.Fatalf("expected ErrAllModelsFailed, got %v", err)
	}
	if len(fake.Deleted) != 1 {
		t.Fatalf("remote audio must be deleted on failure too: %v", fake.Deleted)
	}
}

func TestGeminiTranscriberMissingVideo(t *testing.T) {
	fake := geminitest.New()
	tr := NewGeminiTranscriber(logger.Nop(), mediatest.New(), fake, []string{"m"}, fastPoll, t.TempDir())
	if _, err := tr.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Fatalf("expected error for missing video")
	}
	if len(fake.Uploaded) != 0 {
		t.Fatalf("nothing should be uploaded")
	}
}

type stagingArchive struct {
	uploaded []string
	deleted  []string
}

func (a *stagingArchive) Enabled() bool { return true }
func (a *stagingArchive) UploadFile(_ context.Context, key string, _ string) error {
	a.uploaded = append(a.uploaded, key)
	return nil
}
func (a *stagingArchive) Upload(context.Context, string, io.Reader) error    { return nil }
func (a *stagingArchive) ListKeys(context.Context, string) ([]string, error) { return nil, nil }
func (a *stagingArchive) DeletePrefix(_ context.Context, prefix string) error {
	a.deleted = append(a.deleted, prefix)
	return nil
}
func (a *stagingArchive) URI(key string) string { return "gs://test/" + key }
func (a *stagingArchive) Close() error          { return nil }

type scriptedSpeech struct {
	text    string
	err     error
	gcsURIs []string
}

func (s *scriptedSpeech) TranscribeAudioBytes(context.Context, []byte, string, gcp.SpeechConfig) (*gcp.SpeechResult, error) {
	return &gcp.SpeechResult{PrimaryText: s.text}, s.err
}

func (s *scriptedSpeech) TranscribeAudioGCS(_ context.Context, uri string, _ gcp.SpeechConfig) (*gcp.SpeechResult, error) {
	s.gcsURIs = append(s.gcsURIs, uri)
	if s.err != nil {
		return nil, s.err
	}
	return &gcp.SpeechResult{PrimaryText: s.text}, nil
}

func (s *scriptedSpeech) Close() error { return nil }

func TestSpeechTranscriberRemovesStagedAudio(t *testing.T) {
	for _, tc := range []struct {
		name    string
		speech  *scriptedSpeech
		wantErr bool
	}{
		{name: "success", speech: &scriptedSpeech{text: "Open your books."}},
		{name: "speech failure", speech: &scriptedSpeech{err: errors.New("quota")}, wantErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			media := mediatest.New()
			media.AudioSize = gcp.MaxInlineSpeechBytes + 1
			arch := &stagingArchive{}

			tr := NewSpeechTranscriber(logger.Nop(), media, tc.speech, arch, gcp.SpeechConfig{}, t.TempDir())
			res, err := tr.Transcribe(context.Background(), writeVideo(t))
			if tc.wantErr != (err != nil) {
				t.Fatalf("Transcribe err=%v wantErr=%v", err, tc.wantErr)
			}
			if !tc.wantErr && res.Transcription != "Open your books." {
				t.Fatalf("unexpected transcript: %+v", res)
			}
			if len(arch.uploaded) != 1 || len(tc.speech.gcsURIs) != 1 {
				t.Fatalf("expected one staged upload, got uploaded=%v uris=%v", arch.uploaded, tc.speech.gcsURIs)
			}
			if len(arch.deleted) != 1 || arch.deleted[0] != arch.uploaded[0] {
				t.Fatalf("staged audio not removed: uploaded=%v deleted=%v", arch.uploaded, arch.deleted)
			}
		})
	}
}

func TestSpeechTranscriberInlineSkipsStaging(t *testing.T) {
	arch := &stagingArchive{}
	tr := NewSpeechTranscriber(logger.Nop(), mediatest.New(), &scriptedSpeech{text: "hi"}, arch, gcp.SpeechConfig{}, t.TempDir())
	if _, err := tr.Transcribe(context.Background(), writeVideo(t)); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(arch.uploaded) != 0 || len(arch.deleted) != 0 {
		t.Fatalf("inline audio must not touch the archive: %+v", arch)
	}
}
