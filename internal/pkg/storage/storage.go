// Package storage persists uploaded files either under the local static
// directory or in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidKey is returned for directory or file names that are not a single safe segment.
var ErrInvalidKey = errors.New("invalid storage key")

// ErrNotExist is returned when deleting an object that is not stored.
var ErrNotExist = errors.New("object does not exist")

// Object describes a stored file.
type Object struct {
	Dir         string `json:"type"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	Storage     string `json:"storage"`
}

// Storage is implemented by Local and S3.
type Storage interface {
	Driver() string
	Put(ctx context.Context, dir, name string, body io.Reader, size int64, contentType string) (*Object, error)
	Delete(ctx context.Context, dir, name string) error
	// Resolve maps a URL produced by Put back to (dir, name).
	Resolve(url string) (dir, name string, ok bool)
}

// BuildFileName generates a collision-resistant file name that keeps the
// original extension.
func BuildFileName(original string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(original)))
	if ext == "" || len(ext) > 10 || !IsSafeSegment(ext) {
		ext = ".dat"
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:18] + ext
}

// NormalizeDir lower-cases raw and validates it as a safe path segment.
func NormalizeDir(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || !IsSafeSegment(raw) {
		return ""
	}
	return raw
}

// SafeName returns the base name of raw only when it passes IsSafeSegment.
func SafeName(raw string) string {
	name := path.Base(strings.TrimSpace(strings.ReplaceAll(raw, "\\", "/")))
	if name == "" || name == "." || name == "/" || name == ".." {
		return ""
	}
	if !IsSafeSegment(name) {
		return ""
	}
	return name
}

// IsSafeSegment returns true when s contains only alphanumerics, hyphens,
// underscores, or dots and is not a dot-only name.
func IsSafeSegment(s string) bool {
	if s == "" || strings.Trim(s, ".") == "" {
		return false
	}
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			continue
		}
		return false
	}
	return true
}

// imageExtensions maps the sniffed image types accepted for image uploads to
// the extension they are stored under. SVG is excluded since it can carry script.
var imageExtensions = map[string]string{
	"image/png":    ".png",
	"image/jpeg":   ".jpg",
	"image/gif":    ".gif",
	"image/webp":   ".webp",
	"image/bmp":    ".bmp",
	"image/x-icon": ".ico",
}

// SniffImage reports the image type and extension for head based on its
// bytes alone.
func SniffImage(head []byte) (contentType, ext string, ok bool) {
	contentType = http.DetectContentType(head)
	ext, ok = imageExtensions[contentType]
	return contentType, ext, ok
}

// DetectContentType prefers the client header, then the extension, then sniffing.
func DetectContentType(filename string, head []byte, fallback string) string {
	if ct := strings.TrimSpace(fallback); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename))); ext != "" {
		if guessed := mime.TypeByExtension(ext); guessed != "" {
			return guessed
		}
	}
	if len(head) > 0 {
		return http.DetectContentType(head)
	}
	return "application/octet-stream"
}

func checkKey(dir, name string) error {
	if NormalizeDir(dir) != dir || SafeName(name) != name {
		return ErrInvalidKey
	}
	return nil
}
