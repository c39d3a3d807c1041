package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/yungbote/lecturelens-backend/internal/platform/ctxutil"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

type FileState string

const (
	FileStateProcessing FileState = "processing"
	FileStateActive     FileState = "active"
	FileStateFailed     FileState = "failed"
	FileStateUnknown    FileState = "unknown"
)

// RemoteFile is a file held by the provider's file store.
type RemoteFile struct {
	Name     string
	URI      string
	MIMEType string
	State    FileState
}

type Request struct {
	Prompt string
	// File is attached as a FileData part ahead of the prompt when set.
	File *RemoteFile
	// JSON asks for an application/json response.
	JSON bool
}

// Client is the generative AI surface the pipeline needs. Model names are passed per call so
// callers can walk a fallback list.
type Client interface {
	UploadFile(ctx context.Context, localPath string, mimeType string) (*RemoteFile, error)
	GetFile(ctx context.Context, name string) (*RemoteFile, error)
	DeleteFile(ctx context.Context, name string) error
	GenerateText(ctx context.Context, model string, req Request) (string, error)
	Close() error
}

type client struct {
	log *logger.Logger
	gc  *genai.Client
}

func NewClient(ctx context.Context, log *logger.Logger, apiKey string) (Client, error) {
	ctx = ctxutil.Default(ctx)
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &client{log: log.With("service", "GeminiClient"), gc: gc}, nil
}

func (c *client) UploadFile(ctx context.Context, localPath string, mimeType string) (*RemoteFile, error) {
	f, err := c.gc.UploadFileFromPath(ctxutil.Default(ctx), localPath, &genai.UploadFileOptions{MIMEType: mimeType})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", localPath, err)
	}
	c.log.Debug("file uploaded", "name", f.Name, "mime", f.MIMEType, "size", f.SizeBytes)
	return toRemoteFile(f), nil
}

func (c *client) GetFile(ctx context.Context, name string) (*RemoteFile, error) {
	f, err := c.gc.GetFile(ctxutil.Default(ctx), name)
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", name, err)
	}
	return toRemoteFile(f), nil
}

func (c *client) DeleteFile(ctx context.Context, name string) error {
	if err := c.gc.DeleteFile(ctxutil.Default(ctx), name); err != nil {
		return fmt.Errorf("delete file %s: %w", name, err)
	}
	return nil
}

func (c *client) GenerateText(ctx context.Context, model string, req Request) (string, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return "", fmt.Errorf("model required")
	}
	gm := c.gc.GenerativeModel(model)
	if req.JSON {
		gm.ResponseMIMEType = "application/json"
	}
	parts := make([]genai.Part, 0, 2)
	if req.File != nil {
		parts = append(parts, genai.FileData{URI: req.File.URI, MIMEType: req.File.MIMEType})
	}
	parts = append(parts, genai.Text(req.Prompt))

	resp, err := gm.GenerateContent(ctxutil.Default(ctx), parts...)
	if err != nil {
		return "", fmt.Errorf("%s generate: %w", model, err)
	}
	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("%s returned no text", model)
	}
	return text, nil
}

func (c *client) Close() error {
	return c.gc.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		// first candidate with content wins
		if b.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(b.String())
}

func toRemoteFile(f *genai.File) *RemoteFile {
	if f == nil {
		return nil
	}
	return &RemoteFile{Name: f.Name, URI: f.URI, MIMEType: f.MIMEType, State: mapState(f.State)}
}

func mapState(s genai.FileState) FileState {
	switch s {
	case genai.FileStateActive:
		return FileStateActive
	case genai.FileStateProcessing:
		return FileStateProcessing
	case genai.FileStateFailed:
		return FileStateFailed
	default:
		return FileStateUnknown
	}
}
