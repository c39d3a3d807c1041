package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yungbote/lecturelens-backend/internal/platform/ctxutil"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

// Archive mirrors stored lecture files to a GCS bucket. In local mode every call is a no-op.
type Archive interface {
	Enabled() bool
	UploadFile(ctx context.Context, key string, localPath string) error
	Upload(ctx context.Context, key string, r io.Reader) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	DeletePrefix(ctx context.Context, prefix string) error
	// URI returns the gs:// URI of key, or "" when disabled.
	URI(key string) string
	Close() error
}

type archive struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
}

type nopArchive struct{}

func NewArchive(log *logger.Logger, cfg ObjectStorageConfig) (Archive, error) {
	if err := ValidateObjectStorageConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	if !cfg.ArchiveEnabled() {
		return nopArchive{}, nil
	}
	alog := log.With("service", "gcp.Archive")
	client, err := newStorageClientForMode(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	alog.Info("Archive storage initialized", "mode", cfg.Mode, "emulator_host", cfg.EmulatorHost, "bucket", cfg.Bucket)
	return &archive{log: alog, client: client, bucket: cfg.Bucket}, nil
}

func newStorageClientForMode(ctx context.Context, cfg ObjectStorageConfig) (*storage.Client, error) {
	switch cfg.Mode {
	case ObjectStorageModeGCS:
		opts := ClientOptionsFromEnv()
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		endpoint := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{
			Code: ObjectStorageConfigErrorInvalidMode,
			Mode: string(cfg.Mode),
		}
	}
}

func (a *archive) Enabled() bool { return true }

func (a *archive) UploadFile(ctx context.Context, key string, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()
	return a.Upload(ctx, key, f)
}

func (a *archive) Upload(ctx context.Context, key string, r io.Reader) error {
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), 10*time.Minute)
	defer cancel()

	key = cleanKey(key)
	w := a.client.Bucket(a.bucket).Object(key).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (a *archive) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), 30*time.Second)
	defer cancel()
	it := a.client.Bucket(a.bucket).Objects(ctx, &storage.Query{Prefix: cleanKey(prefix)})
	out := []string{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, attrs.Name)
	}
	return out, nil
}

func (a *archive) DeletePrefix(ctx context.Context, prefix string) error {
	keys, err := a.ListKeys(ctx, prefix)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := a.client.Bucket(a.bucket).Object(k).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			a.log.Warn("archive delete failed", "key", k, "error", err)
		}
	}
	return nil
}

func (a *archive) URI(key string) string {
	return fmt.Sprintf("gs://%s/%s", a.bucket, cleanKey(key))
}

func (a *archive) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

func (nopArchive) Enabled() bool                                      { return false }
func (nopArchive) UploadFile(context.Context, string, string) error   { return nil }
func (nopArchive) Upload(context.Context, string, io.Reader) error    { return nil }
func (nopArchive) ListKeys(context.Context, string) ([]string, error) { return nil, nil }
func (nopArchive) DeletePrefix(context.Context, string) error         { return nil }
func (nopArchive) URI(string) string                                  { return "" }
func (nopArchive) Close() error                                       { return nil }

func cleanKey(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return ""
	}
	return path.Clean(key)
}

func contentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	case ".mkv":
		return "video/x-matroska"
	case ".wav":
		return "audio/wav"
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".json":
		return "application/json"
	default:
		return ""
	}
}
