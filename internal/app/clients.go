package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/lecturelens-backend/internal/platform/gcp"
	"github.com/yungbote/lecturelens-backend/internal/platform/gemini"
	"github.com/yungbote/lecturelens-backend/internal/platform/localmedia"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
	"github.com/yungbote/lecturelens-backend/internal/platform/slots"
)

type Clients struct {
	Gemini  gemini.Client
	Archive gcp.Archive
	// Document is nil unless Document AI is configured.
	Document gcp.Document
	// Speech is nil unless TRANSCRIBER=gcp_speech.
	Speech gcp.Speech
	Media  localmedia.Tools
	Slots  slots.Limiter
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (c Clients, err error) {
	log.Info("Wiring clients...")
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	c.Media = localmedia.New(log)
	if err := c.Media.AssertReady(ctx); err != nil {
		log.Warn("ffmpeg/ffprobe not available; analysis jobs will fail at transcribe", "error", err)
	}

	// Gemini
	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY not set; analysis jobs will fail until it is configured")
		c.Gemini = gemini.Disabled(errors.New("GEMINI_API_KEY is not configured"))
	} else {
		g, err := gemini.NewClient(ctx, log, cfg.GeminiAPIKey)
		if err != nil {
			return c, fmt.Errorf("init gemini client: %w", err)
		}
		c.Gemini = g
	}

	// Gcs archive
	archive, err := resolveArchive(log, cfg.Storage)
	if err != nil {
		return c, err
	}
	c.Archive = archive

	// Document AI
	if cfg.Document.Configured() {
		doc, err := gcp.NewDocument(log, cfg.Document)
		if err != nil {
			return c, fmt.Errorf("init document client: %w", err)
		}
		c.Document = doc
	}

	// Speech
	if cfg.Transcriber == TranscriberGCPSpeech {
		speech, err := gcp.NewSpeech(log)
		if err != nil {
			return c, fmt.Errorf("init speech client: %w", err)
		}
		c.Speech = speech
	}

	// Slots
	limiter, err := slots.New(ctx, log, slots.Config{
		RedisAddr: cfg.RedisAddr,
		Key:       "lecturelens:analysis:slots",
		Max:       cfg.AnalysisMaxConcurrency,
	})
	if err != nil {
		return c, fmt.Errorf("init slot limiter: %w", err)
	}
	c.Slots = limiter

	return c, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Slots != nil {
		_ = c.Slots.Close()
	}
	if c.Speech != nil {
		_ = c.Speech.Close()
	}
	if c.Document != nil {
		_ = c.Document.Close()
	}
	if c.Archive != nil {
		_ = c.Archive.Close()
	}
	if c.Gemini != nil {
		_ = c.Gemini.Close()
	}
}
