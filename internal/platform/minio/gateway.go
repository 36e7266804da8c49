// Package minio serves objectstore.Gateway from MinIO or any S3-compatible
// endpoint.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/platform/objectstore"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// Region pins request signing; with it set the client never asks the
	// server for the bucket location.
	Region        string
	Buckets       objectstore.Buckets
	EnsureBuckets bool
}

type Gateway struct {
	log     *logger.Logger
	client  *miniogo.Client
	buckets objectstore.Buckets
}

var _ objectstore.Gateway = (*Gateway)(nil)

func NewGateway(ctx context.Context, log *logger.Logger, cfg Config) (*Gateway, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	if endpoint == "" {
		return nil, fmt.Errorf("missing env var MINIO_ENDPOINT")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	client, err := miniogo.New(endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	gwLog := log.With("service", "MinIOGateway")
	g := &Gateway{log: gwLog, client: client, buckets: cfg.Buckets}
	for _, category := range []objectstore.Category{objectstore.CategoryMedia, objectstore.CategoryCertificate} {
		bucket, err := cfg.Buckets.Name(category)
		if err != nil {
			return nil, err
		}
		if cfg.EnsureBuckets {
			if err := g.ensureBucket(ctx, bucket, region); err != nil {
				return nil, err
			}
		}
	}
	gwLog.Info("Object storage initialized",
		"mode", objectstore.ModeMinIO,
		"endpoint", endpoint,
		"media_bucket", cfg.Buckets.Media,
		"certificate_bucket", cfg.Buckets.Certificate,
	)
	return g, nil
}

func (g *Gateway) ensureBucket(ctx context.Context, bucket, region string) error {
	exists, err := g.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := g.client.MakeBucket(ctx, bucket, miniogo.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket %q: %w", bucket, err)
	}
	g.log.Info("Created bucket", "bucket", bucket)
	return nil
}

func (g *Gateway) PresignPut(ctx context.Context, category objectstore.Category, key, contentType string, ttl time.Duration) (string, error) {
	bucket, err := g.buckets.Name(category)
	if err != nil {
		return "", err
	}
	u, err := g.client.PresignedPutObject(ctx, bucket, key, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned put URL: %w", err)
	}
	return u.String(), nil
}

func (g *Gateway) PresignGet(ctx context.Context, category objectstore.Category, key string, ttl time.Duration) (string, error) {
	bucket, err := g.buckets.Name(category)
	if err != nil {
		return "", err
	}
	u, err := g.client.PresignedGetObject(ctx, bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return u.String(), nil
}

func (g *Gateway) Head(ctx context.Context, category objectstore.Category, key string) (*objectstore.ObjectInfo, error) {
	bucket, err := g.buckets.Name(category)
	if err != nil {
		return nil, err
	}
	info, err := g.client.StatObject(ctx, bucket, key, miniogo.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, objectstore.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to stat MinIO object: %w", err)
	}
	return &objectstore.ObjectInfo{
		Size:        info.Size,
		ContentType: info.ContentType,
		ETag:        info.ETag,
		Updated:     info.LastModified,
	}, nil
}

func (g *Gateway) Put(ctx context.Context, category objectstore.Category, key, contentType string, r io.Reader, size int64) error {
	bucket, err := g.buckets.Name(category)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = objectstore.ContentTypeForKey(key)
	}
	if size <= 0 {
		size = -1
	}
	_, err = g.client.PutObject(ctx, bucket, key, r, size, miniogo.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload file to MinIO: %w", err)
	}
	return nil
}

func (g *Gateway) Delete(ctx context.Context, category objectstore.Category, key string) error {
	bucket, err := g.buckets.Name(category)
	if err != nil {
		return err
	}
	if err := g.client.RemoveObject(ctx, bucket, key, miniogo.RemoveObjectOptions{}); err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to remove file from MinIO: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	resp := miniogo.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
