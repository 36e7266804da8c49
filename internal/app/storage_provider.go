package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/coursemarket-backend/internal/platform/gcp"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/platform/minio"
	"github.com/yungbote/coursemarket-backend/internal/platform/objectstore"
)

var (
	newGCSGateway = func(ctx context.Context, log *logger.Logger, cfg objectstore.Config, buckets objectstore.Buckets) (objectstore.Gateway, error) {
		return gcp.NewGateway(ctx, log, cfg, buckets)
	}
	newMinIOGateway = func(ctx context.Context, log *logger.Logger, cfg minio.Config) (objectstore.Gateway, error) {
		return minio.NewGateway(ctx, log, cfg)
	}
)

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorMissingMinIOHost    StorageProviderBootstrapErrorCode = "missing_minio_endpoint"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// storageConfig mirrors objectstore.ResolveConfigFromEnv over an already
// loaded Config.
func storageConfig(cfg Config) objectstore.Config {
	out := objectstore.Config{
		Mode:          objectstore.Mode(strings.ToLower(strings.TrimSpace(cfg.ObjectStorageMode))),
		EmulatorHost:  strings.TrimSpace(cfg.StorageEmulatorHost),
		MinIOEndpoint: strings.TrimSpace(cfg.MinIOEndpoint),
	}
	if out.Mode == "" {
		if out.EmulatorHost != "" {
			out.Mode = objectstore.ModeGCSEmulator
			out.CompatibilityFallback = true
		} else {
			out.Mode = objectstore.ModeGCS
		}
	}
	return out
}

func resolveGateway(ctx context.Context, log *logger.Logger, cfg Config) (objectstore.Gateway, error) {
	storageCfg := storageConfig(cfg)
	if err := objectstore.ValidateConfig(storageCfg); err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		log.Error(
			"Object storage provider selection failed",
			"mode", storageCfg.Mode,
			"mode_source", storageCfg.ModeSource(),
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}

	log.Info(
		"Selecting object storage provider",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"emulator_host", storageCfg.EmulatorHost,
	)

	var (
		gw  objectstore.Gateway
		err error
	)
	if storageCfg.Mode == objectstore.ModeMinIO {
		gw, err = newMinIOGateway(ctx, log, minio.Config{
			Endpoint:  storageCfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			UseSSL:    cfg.MinIOUseSSL,
			Buckets: objectstore.Buckets{
				Media:       cfg.MinIOMediaBucket,
				Certificate: cfg.MinIOCertificateBucket,
			},
			EnsureBuckets: true,
		})
	} else {
		gw, err = newGCSGateway(ctx, log, storageCfg, objectstore.Buckets{
			Media:       cfg.MediaBucket,
			Certificate: cfg.CertificateBucket,
		})
	}
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", storageCfg.Mode,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return gw, nil
}

func classifyStorageProviderBootstrapError(storageCfg objectstore.Config, err error) error {
	out := &StorageProviderBootstrapError{
		Code:         StorageProviderBootstrapErrorConnectFailed,
		Mode:         string(storageCfg.Mode),
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
	var cfgErr *objectstore.ConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case objectstore.ConfigErrorInvalidMode:
			out.Code = StorageProviderBootstrapErrorInvalidMode
		case objectstore.ConfigErrorMissingEmulatorHost:
			out.Code = StorageProviderBootstrapErrorMissingEmulatorHost
		case objectstore.ConfigErrorInvalidEmulatorHost:
			out.Code = StorageProviderBootstrapErrorInvalidEmulatorHost
		case objectstore.ConfigErrorMissingMinIOHost:
			out.Code = StorageProviderBootstrapErrorMissingMinIOHost
		}
	}
	return out
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageProviderBootstrapErrorConnectFailed
}
