package gcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/platform/objectstore"
)

// Gateway implements objectstore.Gateway on Google Cloud Storage. In
// gcs_emulator mode (fake-gcs-server) metadata reads go through the JSON API
// and "signed" URLs are plain emulator URLs.
type Gateway struct {
	log           *logger.Logger
	client        *storage.Client
	httpClient    *http.Client
	mode          objectstore.Mode
	emulatorHost  string
	publicBaseURL string
	buckets       objectstore.Buckets
}

var _ objectstore.Gateway = (*Gateway)(nil)

func NewGateway(ctx context.Context, log *logger.Logger, storageCfg objectstore.Config, buckets objectstore.Buckets) (*Gateway, error) {
	if err := objectstore.ValidateConfig(storageCfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	if storageCfg.Mode == objectstore.ModeMinIO {
		return nil, fmt.Errorf("gcp gateway cannot serve OBJECT_STORAGE_MODE=%q", storageCfg.Mode)
	}
	if _, err := buckets.Name(objectstore.CategoryMedia); err != nil {
		return nil, fmt.Errorf("missing env var MEDIA_GCS_BUCKET_NAME")
	}
	if _, err := buckets.Name(objectstore.CategoryCertificate); err != nil {
		return nil, fmt.Errorf("missing env var CERTIFICATE_GCS_BUCKET_NAME")
	}
	publicBaseURL, publicBaseSource, err := resolvePublicBaseURL(storageCfg)
	if err != nil {
		return nil, err
	}

	client, err := newStorageClientForMode(ctx, storageCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	gwLog := log.With("service", "GCSGateway")
	gwLog.Info(
		"Object storage initialized",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"emulator_host", storageCfg.EmulatorHost,
		"public_base_source", publicBaseSource,
		"media_bucket", buckets.Media,
		"certificate_bucket", buckets.Certificate,
	)

	return &Gateway{
		log:           gwLog,
		client:        client,
		httpClient:    http.DefaultClient,
		mode:          storageCfg.Mode,
		emulatorHost:  strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/"),
		publicBaseURL: publicBaseURL,
		buckets:       buckets,
	}, nil
}

func newStorageClientForMode(ctx context.Context, storageCfg objectstore.Config) (*storage.Client, error) {
	switch storageCfg.Mode {
	case objectstore.ModeGCS:
		opts := ClientOptionsFromEnv()
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case objectstore.ModeGCSEmulator:
		endpoint := strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/")
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &objectstore.ConfigError{Code: objectstore.ConfigErrorInvalidMode, Mode: string(storageCfg.Mode)}
	}
}

// resolvePublicBaseURL picks the host browsers use for emulator URLs.
func resolvePublicBaseURL(storageCfg objectstore.Config) (baseURL string, source string, err error) {
	raw := strings.TrimSpace(os.Getenv("OBJECT_STORAGE_PUBLIC_BASE_URL"))
	if raw != "" {
		parsed, parseErr := url.Parse(raw)
		if parseErr != nil || strings.TrimSpace(parsed.Scheme) == "" || strings.TrimSpace(parsed.Host) == "" {
			return "", "", fmt.Errorf(
				"invalid OBJECT_STORAGE_PUBLIC_BASE_URL=%q; expected absolute URL like http://localhost:4443",
				raw,
			)
		}
		return strings.TrimRight(raw, "/"), "object_storage_public_base_url", nil
	}
	if storageCfg.IsEmulatorMode() {
		return strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/"), "storage_emulator_host", nil
	}
	return "", "gcs_default", nil
}

func (g *Gateway) isEmulatorMode() bool {
	return g != nil && g.mode == objectstore.ModeGCSEmulator && g.emulatorHost != ""
}

func (g *Gateway) PresignPut(ctx context.Context, category objectstore.Category, key, contentType string, ttl time.Duration) (string, error) {
	bucket, err := g.buckets.Name(category)
	if err != nil {
		return "", err
	}
	if g.isEmulatorMode() {
		return g.emulatorUploadURL(bucket, key), nil
	}
	u, err := g.client.Bucket(bucket).SignedURL(key, &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      http.MethodPut,
		ContentType: contentType,
		Expires:     time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("sign put url for %q: %w", key, err)
	}
	return u, nil
}

func (g *Gateway) PresignGet(ctx context.Context, category objectstore.Category, key string, ttl time.Duration) (string, error) {
	bucket, err := g.buckets.Name(category)
	if err != nil {
		return "", err
	}
	if g.isEmulatorMode() {
		return g.emulatorMediaURL(g.publicBase(), bucket, key), nil
	}
	u, err := g.client.Bucket(bucket).SignedURL(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("sign get url for %q: %w", key, err)
	}
	return u, nil
}

func (g *Gateway) Head(ctx context.Context, category objectstore.Category, key string) (*objectstore.ObjectInfo, error) {
	bucket, err := g.buckets.Name(category)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if g.isEmulatorMode() {
		return g.emulatorHead(ctx, bucket, key)
	}
	attrs, err := g.client.Bucket(bucket).Object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, objectstore.ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch GCS object attrs: %w", err)
	}
	return &objectstore.ObjectInfo{
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
		Updated:     attrs.Updated,
		ETag:        attrs.Etag,
	}, nil
}

func (g *Gateway) emulatorHead(ctx context.Context, bucket, key string) (*objectstore.ObjectInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.emulatorMetaURL(bucket, key), nil)
	if err != nil {
		return nil, fmt.Errorf("failed creating emulator attrs request: %w", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed emulator attrs request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, objectstore.ErrObjectNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("emulator attrs failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Size        string `json:"size"`
		ContentType string `json:"contentType"`
		Updated     string `json:"updated"`
		ETag        string `json:"etag"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode emulator attrs: %w", err)
	}
	size, _ := strconv.ParseInt(strings.TrimSpace(payload.Size), 10, 64)
	updated := time.Time{}
	if ts := strings.TrimSpace(payload.Updated); ts != "" {
		if parsed, parseErr := time.Parse(time.RFC3339, ts); parseErr == nil {
			updated = parsed
		}
	}
	return &objectstore.ObjectInfo{
		Size:        size,
		ContentType: payload.ContentType,
		Updated:     updated,
		ETag:        payload.ETag,
	}, nil
}

func (g *Gateway) Put(ctx context.Context, category objectstore.Category, key, contentType string, r io.Reader, size int64) error {
	bucket, err := g.buckets.Name(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := g.client.Bucket(bucket).Object(key).NewWriter(ctx)
	if contentType == "" {
		contentType = objectstore.ContentTypeForKey(key)
	}
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	if size > 0 && w.Attrs() != nil && w.Attrs().Size != size {
		g.log.Warn("GCS object size differs from expected", "key", key, "expected", size, "written", w.Attrs().Size)
	}
	return nil
}

func (g *Gateway) Delete(ctx context.Context, category objectstore.Category, key string) error {
	bucket, err := g.buckets.Name(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	err = g.client.Bucket(bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, bucket, err)
	}
	return nil
}

func (g *Gateway) publicBase() string {
	if g.publicBaseURL != "" {
		return g.publicBaseURL
	}
	return g.emulatorHost
}

func (g *Gateway) emulatorMediaURL(base, bucket, key string) string {
	return fmt.Sprintf(
		"%s/storage/v1/b/%s/o/%s?alt=media",
		strings.TrimRight(base, "/"),
		url.PathEscape(bucket),
		url.PathEscape(key),
	)
}

func (g *Gateway) emulatorUploadURL(bucket, key string) string {
	return fmt.Sprintf(
		"%s/upload/storage/v1/b/%s/o?uploadType=media&name=%s",
		strings.TrimRight(g.publicBase(), "/"),
		url.PathEscape(bucket),
		url.QueryEscape(key),
	)
}

func (g *Gateway) emulatorMetaURL(bucket, key string) string {
	return fmt.Sprintf(
		"%s/storage/v1/b/%s/o/%s",
		g.emulatorHost,
		url.PathEscape(bucket),
		url.PathEscape(key),
	)
}
