// Package objectstore defines the storage gateway used for uploaded media and
// rendered certificates. Backends live in platform/gcp and platform/minio.
package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// Category selects the bucket an object lives in.
type Category string

const (
	CategoryMedia       Category = "media"
	CategoryCertificate Category = "certificate"
)

func (c Category) Valid() bool {
	return c == CategoryMedia || c == CategoryCertificate
}

// ErrObjectNotFound is returned by Head when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

type ObjectInfo struct {
	Size        int64
	ContentType string
	ETag        string
	Updated     time.Time
}

// Gateway is the narrow storage surface the services depend on. Signed URL
// expiry is enforced by the backend.
type Gateway interface {
	PresignPut(ctx context.Context, category Category, key, contentType string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, category Category, key string, ttl time.Duration) (string, error)
	Head(ctx context.Context, category Category, key string) (*ObjectInfo, error)
	Put(ctx context.Context, category Category, key, contentType string, r io.Reader, size int64) error
	Delete(ctx context.Context, category Category, key string) error
}

// Buckets maps categories to backend bucket names.
type Buckets struct {
	Media       string
	Certificate string
}

func (b Buckets) Name(category Category) (string, error) {
	var name string
	switch category {
	case CategoryMedia:
		name = b.Media
	case CategoryCertificate:
		name = b.Certificate
	default:
		return "", &UnknownCategoryError{Category: category}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &UnknownCategoryError{Category: category}
	}
	return name, nil
}

type UnknownCategoryError struct {
	Category Category
}

func (e *UnknownCategoryError) Error() string {
	return "no bucket configured for category " + string(e.Category)
}

// ContentTypeForKey guesses a content type from the key's extension.
func ContentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if s == "" {
		return ""
	}
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".mp4"), strings.HasSuffix(s, ".m4v"):
		return "video/mp4"
	case strings.HasSuffix(s, ".webm"):
		return "video/webm"
	case strings.HasSuffix(s, ".mov"):
		return "video/quicktime"
	case strings.HasSuffix(s, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(s, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(s, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	default:
		return ""
	}
}
