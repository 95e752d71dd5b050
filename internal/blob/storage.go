package blob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/SAP-F-2025/skill-tracker/internal/cache"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9.\-_]`)

// SanitizeName replaces every character outside [A-Za-z0-9.-_] with '_'.
func SanitizeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

type UploadResult struct {
	Path string `json:"path"`
}

// Storage turns uploads into stored paths and back. A local blob cache, when
// present, keeps copies of uploaded and downloaded objects.
type Storage struct {
	backend Backend
	local   cache.LocalStore
	prefix  string
	logger  *slog.Logger
	now     func() time.Time
}

func NewStorage(backend Backend, local cache.LocalStore, prefix string, logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{
		backend: backend,
		local:   local,
		prefix:  strings.Trim(prefix, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Storage) newPath(name string) string {
	file := fmt.Sprintf("%d_%s", s.now().UnixMilli(), SanitizeName(name))
	if s.prefix == "" {
		return file
	}
	return s.prefix + "/" + file
}

// Upload stores data under a fresh timestamped path. On failure the result
// carries an empty path.
func (s *Storage) Upload(ctx context.Context, data []byte, contentType, suggestedName string) (UploadResult, error) {
	if suggestedName == "" {
		suggestedName = "file"
	}
	if contentType == "" {
		contentType = detectContentType(suggestedName, data)
	}

	path := s.newPath(suggestedName)
	if err := s.backend.Put(ctx, path, contentType, data); err != nil {
		s.logger.ErrorContext(ctx, "Blob upload failed", "name", suggestedName, "error", err)
		return UploadResult{}, fmt.Errorf("upload %s: %w", suggestedName, err)
	}
	s.cacheLocal(ctx, path, data)

	s.logger.DebugContext(ctx, "Blob uploaded", "path", path, "size", len(data))
	return UploadResult{Path: path}, nil
}

// UploadDataURL decodes an inline data URL and uploads its bytes.
func (s *Storage) UploadDataURL(ctx context.Context, dataURL, suggestedName string) (UploadResult, error) {
	contentType, data, err := ParseDataURL(dataURL)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload %s: %w", suggestedName, err)
	}
	return s.Upload(ctx, data, contentType, suggestedName)
}

// ResolveReference returns a stored path for ref: inline data URLs are
// uploaded first, anything else is already a path and returned unchanged.
func (s *Storage) ResolveReference(ctx context.Context, ref, suggestedName string) (string, error) {
	if !IsDataURL(ref) {
		return ref, nil
	}
	res, err := s.UploadDataURL(ctx, ref, suggestedName)
	if err != nil {
		return "", err
	}
	return res.Path, nil
}

// PublicURL derives the public URL of a stored path without any network call.
// It returns "" for an empty path. Absolute URLs and data URLs pass through.
func (s *Storage) PublicURL(path string) string {
	switch {
	case path == "":
		return ""
	case IsDataURL(path), strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path
	}
	return s.backend.BaseURL() + "/" + strings.TrimLeft(path, "/")
}

// Delete removes stored paths in bulk along with their local copies. Empty
// entries, inline data and absolute URLs are skipped.
func (s *Storage) Delete(ctx context.Context, paths []string) error {
	keys := storedKeys(paths)
	if len(keys) == 0 {
		return nil
	}

	if s.local != nil {
		for _, k := range keys {
			if err := s.local.DeleteBlob(ctx, k); err != nil && !errors.Is(err, cache.ErrBlobStoreNotInitialized) {
				s.logger.WarnContext(ctx, "Failed to drop local blob copy", "path", k, "error", err)
			}
		}
	}

	if err := s.backend.Delete(ctx, keys); err != nil {
		return fmt.Errorf("delete %d blobs: %w", len(keys), err)
	}
	return nil
}

// Download returns the object bytes, preferring the local copy.
func (s *Storage) Download(ctx context.Context, path string) ([]byte, error) {
	if IsDataURL(path) {
		_, data, err := ParseDataURL(path)
		return data, err
	}
	if s.local != nil {
		if data, ok, err := s.local.GetBlob(ctx, path); err == nil && ok {
			return data, nil
		}
	}

	data, err := s.backend.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	s.cacheLocal(ctx, path, data)
	return data, nil
}

func (s *Storage) cacheLocal(ctx context.Context, path string, data []byte) {
	if s.local == nil {
		return
	}
	if err := s.local.PutBlob(ctx, path, data); err != nil {
		s.logger.DebugContext(ctx, "Local blob copy skipped", "path", path, "error", err)
	}
}

func storedKeys(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" || IsDataURL(p) || strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		keys = append(keys, p)
	}
	return keys
}

func detectContentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return mimetype.Detect(data).String()
}
