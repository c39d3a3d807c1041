package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lecturelens-backend/internal/analysis"
	"github.com/yungbote/lecturelens-backend/internal/observability"
	"github.com/yungbote/lecturelens-backend/internal/platform/ctxutil"
	"github.com/yungbote/lecturelens-backend/internal/platform/gcp"
	"github.com/yungbote/lecturelens-backend/internal/platform/gemini"
	"github.com/yungbote/lecturelens-backend/internal/platform/localmedia"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

var (
	ErrRemoteFileFailed  = errors.New("remote file processing failed")
	ErrRemoteFileTimeout = errors.New("remote file not ready before polling limit")
)

const (
	TranscriberGemini    = "gemini"
	TranscriberGCPSpeech = "gcp_speech"
)

// Transcriber turns a stored lecture video into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, videoPath string) (analysis.TranscriptResult, error)
}

type PollConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

func (p PollConfig) withDefaults() PollConfig {
	if p.Interval <= 0 {
		p.Interval = 2 * time.Second
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 90
	}
	return p
}

// WaitForActive polls the remote file at a fixed interval until it is active.
// A failed state or running out of attempts is fatal.
func WaitForActive(ctx context.Context, client gemini.Client, file *gemini.RemoteFile, poll PollConfig) (*gemini.RemoteFile, error) {
	poll = poll.withDefaults()
	cur := file
	for attempt := 1; ; attempt++ {
		switch cur.State {
		case gemini.FileStateActive:
			return cur, nil
		case gemini.FileStateFailed:
			return nil, fmt.Errorf("%s: %w", cur.Name, ErrRemoteFileFailed)
		}
		if attempt >= poll.MaxAttempts {
			return nil, fmt.Errorf("%s after %d polls: %w", cur.Name, attempt, ErrRemoteFileTimeout)
		}
		t := time.NewTimer(poll.Interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
		next, err := client.GetFile(ctx, cur.Name)
		if err != nil {
			return nil, err
		}
		cur = next
	}
}

type geminiTranscriber struct {
	log     *logger.Logger
	media   localmedia.Tools
	client  gemini.Client
	models  []string
	poll    PollConfig
	workDir string
}

func NewGeminiTranscriber(log *logger.Logger, media localmedia.Tools, client gemini.Client, models []string, poll PollConfig, workDir string) Transcriber {
	return &geminiTranscriber{
		log:     log.With("service", "GeminiTranscriber"),
		media:   media,
		client:  client,
		models:  models,
		poll:    poll.withDefaults(),
		workDir: workDir,
	}
}

func (t *geminiTranscriber) Transcribe(ctx context.Context, videoPath string) (analysis.TranscriptResult, error) {
	ctx = ctxutil.Default(ctx)
	opts := localmedia.AudioExtractOptions{Format: "mp3"}
	audioPath, cleanup, err := extractAudioTemp(ctx, t.media, t.workDir, videoPath, opts)
	if err != nil {
		return analysis.TranscriptResult{}, err
	}
	defer cleanup()

	remote, err := t.client.UploadFile(ctx, audioPath, localmedia.AudioMIME(opts.Format))
	if err != nil {
		return analysis.TranscriptResult{}, fmt.Errorf("upload audio: %w", err)
	}
	defer func() {
		// ctx may already be canceled; the remote copy should still go
		delCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := t.client.DeleteFile(delCtx, remote.Name); err != nil {
			t.log.Warn("remote audio delete failed", "name", remote.Name, "error", err)
		}
	}()

	ready, err := WaitForActive(ctx, t.client, remote, t.poll)
	if err != nil {
		return analysis.TranscriptResult{}, err
	}

	text, model, err := analysis.FirstSuccess(ctx, t.models, func(ctx context.Context, model string) (string, error) {
		out, err := t.client.GenerateText(ctx, model, gemini.Request{Prompt: analysis.TranscriptPrompt, File: ready})
		if err == nil && strings.TrimSpace(out) == "" {
			err = fmt.Errorf("empty transcript")
		}
		status := "ok"
		if err != nil {
			status = "error"
			t.log.Warn("transcript model failed", "model", model, "error", err)
		}
		observability.Current().ObserveModelAttempt("transcript", model, status)
		return out, err
	})
	if err != nil {
		return analysis.TranscriptResult{}, fmt.Errorf("transcribe: %w", err)
	}
	return analysis.TranscriptResult{
		Transcription: strings.TrimSpace(text),
		Sentiment:     analysis.SentimentNotComputed,
		Model:         model,
	}, nil
}

type speechTranscriber struct {
	log     *logger.Logger
	media   localmedia.Tools
	speech  gcp.Speech
	archive gcp.Archive
	cfg     gcp.SpeechConfig
	workDir string
}

// NewSpeechTranscriber uses Cloud Speech. Audio over the inline limit is staged in the archive
// bucket, so large lectures need OBJECT_STORAGE_MODE=gcs.
func NewSpeechTranscriber(log *logger.Logger, media localmedia.Tools, speech gcp.Speech, archive gcp.Archive, cfg gcp.SpeechConfig, workDir string) Transcriber {
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en-US"
	}
	cfg.SampleRateHertz = 16000
	cfg.AudioChannelCount = 1
	cfg.EnableAutomaticPunctuation = true
	return &speechTranscriber{
		log:     log.With("service", "SpeechTranscriber"),
		media:   media,
		speech:  speech,
		archive: archive,
		cfg:     cfg,
		workDir: workDir,
	}
}

func (t *speechTranscriber) Transcribe(ctx context.Context, videoPath string) (analysis.TranscriptResult, error) {
	ctx = ctxutil.Default(ctx)
	opts := localmedia.AudioExtractOptions{Format: "flac", SampleRateHz: 16000, Channels: 1}
	audioPath, cleanup, err := extractAudioTemp(ctx, t.media, t.workDir, videoPath, opts)
	if err != nil {
		return analysis.TranscriptResult{}, err
	}
	defer cleanup()

	info, err := os.Stat(audioPath)
	if err != nil {
		return analysis.TranscriptResult{}, err
	}
	mime := localmedia.AudioMIME(opts.Format)

	var res *gcp.SpeechResult
	switch {
	case info.Size() <= gcp.MaxInlineSpeechBytes:
		data, rerr := os.ReadFile(audioPath)
		if rerr != nil {
			return analysis.TranscriptResult{}, rerr
		}
		res, err = t.speech.TranscribeAudioBytes(ctx, data, mime, t.cfg)
	case t.archive != nil && t.archive.Enabled():
		key := "speech-staging/" + filepath.Base(audioPath)
		if err := t.archive.UploadFile(ctx, key, audioPath); err != nil {
			return analysis.TranscriptResult{}, fmt.Errorf("stage audio: %w", err)
		}
		defer func() {
			delCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := t.archive.DeletePrefix(delCtx, key); err != nil {
				t.log.Warn("staged audio delete failed", "key", key, "error", err)
			}
		}()
		res, err = t.speech.TranscribeAudioGCS(ctx, t.archive.URI(key), t.cfg)
	default:
		return analysis.TranscriptResult{}, fmt.Errorf("audio is %d bytes; speech needs the archive bucket above %d bytes", info.Size(), gcp.MaxInlineSpeechBytes)
	}
	status := "ok"
	if err == nil && (res == nil || strings.TrimSpace(res.PrimaryText) == "") {
		err = fmt.Errorf("empty transcript")
	}
	if err != nil {
		status = "error"
	}
	observability.Current().ObserveModelAttempt("transcript", TranscriberGCPSpeech, status)
	if err != nil {
		return analysis.TranscriptResult{}, fmt.Errorf("transcribe: %w", err)
	}
	return analysis.TranscriptResult{
		Transcription: strings.TrimSpace(res.PrimaryText),
		Sentiment:     analysis.SentimentNotComputed,
		Model:         TranscriberGCPSpeech,
	}, nil
}

func extractAudioTemp(ctx context.Context, media localmedia.Tools, workDir, videoPath string, opts localmedia.AudioExtractOptions) (string, func(), error) {
	if workDir == "" {
		workDir = os.TempDir()
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("audio work dir: %w", err)
	}
	dir, err := os.MkdirTemp(workDir, "audio-")
	if err != nil {
		return "", nil, fmt.Errorf("audio work dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }
	out := filepath.Join(dir, uuid.NewString()+"."+opts.Format)
	if _, err := media.ExtractAudio(ctx, videoPath, out, opts); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("extract audio: %w", err)
	}
	return out, cleanup, nil
}
