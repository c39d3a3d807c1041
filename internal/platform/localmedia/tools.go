package localmedia

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/lecturelens-backend/internal/platform/ctxutil"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

// Tools wraps the ffmpeg and ffprobe binaries. Calls block for the length of the transcode,
// so they belong in worker jobs, not request handlers.
type Tools interface {
	AssertReady(ctx context.Context) error
	ExtractAudio(ctx context.Context, videoPath string, outPath string, opts AudioExtractOptions) (string, error)
	ProbeDuration(ctx context.Context, mediaPath string) (time.Duration, error)
}

type AudioExtractOptions struct {
	SampleRateHz int
	Channels     int
	Format       string // "mp3", "wav" or "flac"
}

func (o AudioExtractOptions) withDefaults() AudioExtractOptions {
	if o.SampleRateHz <= 0 {
		o.SampleRateHz = 16000
	}
	if o.Channels <= 0 {
		o.Channels = 1
	}
	o.Format = strings.ToLower(strings.TrimSpace(o.Format))
	if o.Format == "" {
		o.Format = "mp3"
	}
	return o
}

// AudioMIME maps an output format to the MIME type the AI provider expects.
func AudioMIME(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "wav":
		return "audio/wav"
	case "flac":
		return "audio/flac"
	default:
		return "audio/mp3"
	}
}

type tools struct {
	log *logger.Logger

	ffmpegPath  string
	ffprobePath string

	defaultTimeout time.Duration
}

func New(log *logger.Logger) Tools {
	return &tools{
		log:            log.With("service", "MediaTools"),
		ffmpegPath:     "ffmpeg",
		ffprobePath:    "ffprobe",
		defaultTimeout: 30 * time.Minute,
	}
}

func (m *tools) AssertReady(ctx context.Context) error {
	for _, bin := range []string{m.ffmpegPath, m.ffprobePath} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("missing required binary %q in PATH: %w", bin, err)
		}
	}
	return nil
}

func ffmpegAudioArgs(videoPath, outPath string, opts AudioExtractOptions) ([]string, error) {
	opts = opts.withDefaults()
	args := []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-ac", strconv.Itoa(opts.Channels),
		"-ar", strconv.Itoa(opts.SampleRateHz),
	}
	switch opts.Format {
	case "mp3":
		args = append(args, "-codec:a", "libmp3lame", "-b:a", "64k", "-f", "mp3", outPath)
	case "wav":
		args = append(args, "-f", "wav", outPath)
	case "flac":
		args = append(args, "-f", "flac", outPath)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", opts.Format)
	}
	return args, nil
}

func (m *tools) ExtractAudio(ctx context.Context, videoPath string, outPath string, opts AudioExtractOptions) (string, error) {
	ctx = ctxutil.Default(ctx)
	if videoPath == "" {
		return "", fmt.Errorf("videoPath required")
	}
	if outPath == "" {
		return "", fmt.Errorf("outPath required")
	}
	args, err := ffmpegAudioArgs(videoPath, outPath, opts)
	if err != nil {
		return "", err
	}
	if err := m.AssertReady(ctx); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("mkdir outPath dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.defaultTimeout)
	defer cancel()

	start := time.Now()
	out, err := exec.CommandContext(ctx, m.ffmpegPath, args...).CombinedOutput()
	if err != nil {
		_ = os.Remove(outPath)
		return "", fmt.Errorf("ffmpeg extract audio failed: %w; out=%s", err, tail(string(out), 2000))
	}
	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("audio output missing at %s", outPath)
	}
	m.log.Debug("audio extracted", "video", filepath.Base(videoPath), "out", filepath.Base(outPath), "took", time.Since(start).String())
	return outPath, nil
}

func (m *tools) ProbeDuration(ctx context.Context, mediaPath string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), time.Minute)
	defer cancel()

	out, err := exec.CommandContext(ctx, m.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		mediaPath,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration failed: %w", err)
	}
	return parseProbeDuration(string(out))
}

func parseProbeDuration(raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("ffprobe returned no duration")
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("ffprobe duration %q: invalid", s)
	}
	return time.Duration(secs * float64(time.Second)).Round(time.Second), nil
}

// FormatClock renders d as HH:MM:SS.
func FormatClock(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d%time.Hour) / int(time.Minute)
	s := int(d%time.Minute) / int(time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
