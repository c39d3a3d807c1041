package gcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/yungbote/lecturelens-backend/internal/platform/ctxutil"
	"github.com/yungbote/lecturelens-backend/internal/platform/envutil"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

var ErrDocumentAINotConfigured = errors.New("document ai not configured")

// Document runs OCR over raw document bytes.
type Document interface {
	ProcessBytes(ctx context.Context, mimeType string, data []byte) (*DocAIResult, error)
	Close() error
}

type DocumentConfig struct {
	ProjectID        string
	Location         string
	ProcessorID      string
	ProcessorVersion string
}

func DocumentConfigFromEnv() DocumentConfig {
	return DocumentConfig{
		ProjectID:        envutil.String("DOCUMENTAI_PROJECT_ID", ""),
		Location:         envutil.String("DOCUMENTAI_LOCATION", "us"),
		ProcessorID:      envutil.String("DOCUMENTAI_PROCESSOR_ID", ""),
		ProcessorVersion: envutil.String("DOCUMENTAI_PROCESSOR_VERSION", ""),
	}
}

func (c DocumentConfig) Configured() bool {
	return processorName(c.ProjectID, c.Location, c.ProcessorID, c.ProcessorVersion) != ""
}

type DocAIResult struct {
	Processor   string `json:"processor"`
	MimeType    string `json:"mime_type"`
	PrimaryText string `json:"primary_text"`
	Pages       int    `json:"pages"`
}

type documentService struct {
	log       *logger.Logger
	docClient *documentai.DocumentProcessorClient
	processor string
}

func NewDocument(log *logger.Logger, cfg DocumentConfig) (Document, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if !cfg.Configured() {
		return nil, ErrDocumentAINotConfigured
	}
	slog := log.With("service", "gcp.Document")

	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)
	docOpts := append([]option.ClientOption{option.WithEndpoint(endpoint)}, ClientOptionsFromEnv()...)
	c, err := documentai.NewDocumentProcessorClient(context.Background(), docOpts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}
	name := processorName(cfg.ProjectID, cfg.Location, cfg.ProcessorID, cfg.ProcessorVersion)
	slog.Info("Document AI initialized", "endpoint", endpoint, "processor", name)

	return &documentService{log: slog, docClient: c, processor: name}, nil
}

func (s *documentService) Close() error {
	if s == nil || s.docClient == nil {
		return nil
	}
	return s.docClient.Close()
}

func (s *documentService) ProcessBytes(ctx context.Context, mimeType string, data []byte) (*DocAIResult, error) {
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), 3*time.Minute)
	defer cancel()

	if mimeType == "" {
		mimeType = "application/pdf"
	}
	if len(data) == 0 {
		return &DocAIResult{Processor: s.processor, MimeType: mimeType}, nil
	}
	resp, err := s.docClient.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: s.processor,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	return buildDocAIResult(resp.GetDocument(), s.processor, mimeType), nil
}

func buildDocAIResult(doc *documentaipb.Document, processor string, mimeType string) *DocAIResult {
	out := &DocAIResult{Processor: processor, MimeType: mimeType}
	if doc == nil {
		return out
	}
	out.PrimaryText = strings.TrimSpace(doc.GetText())
	out.Pages = len(doc.GetPages())
	return out
}

func processorName(project, location, processorID, version string) string {
	project = strings.TrimSpace(project)
	location = strings.TrimSpace(location)
	processorID = strings.TrimSpace(processorID)
	version = strings.TrimSpace(version)

	if project == "" || location == "" || processorID == "" {
		return ""
	}
	base := fmt.Sprintf("projects/%s/locations/%s/processors/%s", project, location, processorID)
	if version != "" {
		return base + "/processorVersions/" + version
	}
	return base
}
