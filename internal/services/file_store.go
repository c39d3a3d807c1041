package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/yungbote/lecturelens-backend/internal/analysis"
	"github.com/yungbote/lecturelens-backend/internal/platform/apierr"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

const (
	FieldVideo  = "video"
	FieldRubric = "file"
)

var (
	videoExts    = map[string]bool{".mp4": true, ".mov": true, ".avi": true, ".mkv": true}
	documentExts = map[string]bool{".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true}
)

// IncomingFile is one multipart part, not yet written anywhere.
type IncomingFile struct {
	Field    string
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

func IncomingFromHeader(field string, fh *multipart.FileHeader) IncomingFile {
	return IncomingFile{
		Field:    field,
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// StoredFile points at a file under the uploads root. Path is relative to that root.
type StoredFile struct {
	Field string `json:"field"`
	Path  string `json:"path"`
	Ext   string `json:"ext"`
	Size  int64  `json:"size"`
}

type FileLimits struct {
	MaxVideoBytes    int64
	MaxDocumentBytes int64
}

// FileStore is the server-local uploads directory.
type FileStore interface {
	Root() string
	// Validate checks every file before anything touches disk.
	Validate(files []IncomingFile) error
	// Save validates all files, then writes them. A failed write removes what was already written.
	Save(files []IncomingFile) ([]StoredFile, error)
	// Put writes generated bytes (avatars, reports) at rel, replacing any existing file.
	Put(rel string, data []byte) error
	Abs(rel string) string
	Remove(rel string) error
	Exists(rel string) bool
}

type fileStore struct {
	log    *logger.Logger
	root   string
	limits FileLimits
	now    func() time.Time
	seq    atomic.Uint64
}

func NewFileStore(log *logger.Logger, root string, limits FileLimits) (FileStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "./uploads"
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve uploads dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	if limits.MaxVideoBytes <= 0 {
		limits.MaxVideoBytes = 500 << 20
	}
	if limits.MaxDocumentBytes <= 0 {
		limits.MaxDocumentBytes = 50 << 20
	}
	return &fileStore{
		log:    log.With("service", "FileStore"),
		root:   abs,
		limits: limits,
		now:    time.Now,
	}, nil
}

func (s *fileStore) Root() string { return s.root }

func (s *fileStore) Validate(files []IncomingFile) error {
	for _, f := range files {
		if err := s.validateOne(f); err != nil {
			return err
		}
	}
	return nil
}

func (s *fileStore) validateOne(f IncomingFile) error {
	ext := strings.ToLower(filepath.Ext(f.Filename))
	var allowed map[string]bool
	var limit int64
	var kind string
	switch f.Field {
	case FieldVideo:
		allowed, limit, kind = videoExts, s.limits.MaxVideoBytes, "video"
	case FieldRubric, analysis.FieldCobParams, analysis.FieldReadingMaterial, analysis.FieldLessonPlan:
		allowed, limit, kind = documentExts, s.limits.MaxDocumentBytes, "document"
	default:
		return apierr.BadRequest("unknown_file_field", "unexpected file field %q", f.Field)
	}
	if !allowed[ext] {
		return apierr.BadRequest("invalid_file_type", "%s: %q is not an allowed %s type (%s)", f.Field, ext, kind, allowedList(allowed))
	}
	if f.Size <= 0 {
		return apierr.BadRequest("empty_file", "%s: file is empty", f.Field)
	}
	if f.Size > limit {
		return apierr.BadRequest("file_too_large", "%s: %d bytes exceeds the %d byte limit", f.Field, f.Size, limit)
	}
	return nil
}

func (s *fileStore) Save(files []IncomingFile) ([]StoredFile, error) {
	if err := s.Validate(files); err != nil {
		return nil, err
	}
	out := make([]StoredFile, 0, len(files))
	for _, f := range files {
		stored, err := s.write(f)
		if err != nil {
			for _, done := range out {
				_ = s.Remove(done.Path)
			}
			return nil, err
		}
		out = append(out, stored)
	}
	return out, nil
}

func (s *fileStore) write(f IncomingFile) (StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(f.Filename))
	rel := s.storedName(f.Field, ext)
	src, err := f.Open()
	if err != nil {
		return StoredFile{}, fmt.Errorf("open upload %s: %w", f.Field, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(s.Abs(rel), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return StoredFile{}, fmt.Errorf("create %s: %w", rel, err)
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(s.Abs(rel))
		return StoredFile{}, fmt.Errorf("write %s: %w", rel, err)
	}
	s.log.Debug("upload stored", "field", f.Field, "path", rel, "bytes", n)
	return StoredFile{Field: f.Field, Path: rel, Ext: ext, Size: n}, nil
}

// storedName is field-timestamp[-seq]ext. The sequence only shows up when two names would collide.
func (s *fileStore) storedName(field, ext string) string {
	ts := s.now().UnixMilli()
	name := fmt.Sprintf("%s-%d%s", field, ts, ext)
	for s.Exists(name) {
		name = fmt.Sprintf("%s-%d-%d%s", field, ts, s.seq.Add(1), ext)
	}
	return name
}

func (s *fileStore) Abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(filepath.Clean("/"+rel)))
}

func (s *fileStore) Put(rel string, data []byte) error {
	abs := s.Abs(rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return err
	}
	tmp := abs + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, abs)
}

func (s *fileStore) Remove(rel string) error {
	if strings.TrimSpace(rel) == "" {
		return nil
	}
	if err := os.Remove(s.Abs(rel)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *fileStore) Exists(rel string) bool {
	if strings.TrimSpace(rel) == "" {
		return false
	}
	_, err := os.Stat(s.Abs(rel))
	return err == nil
}

func allowedList(m map[string]bool) string {
	out := make([]string, 0, len(m))
	for ext := range m {
		out = append(out, strings.TrimPrefix(ext, "."))
	}
	sort.Strings(out)
	return strings.Join(out, "|")
}
