package app

import (
	"time"

	"github.com/yungbote/coursemarket-backend/internal/platform/envutil"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	Environment string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	ObjectStorageMode      string
	StorageEmulatorHost    string
	MediaBucket            string
	CertificateBucket      string
	MinIOEndpoint          string
	MinIOAccessKey         string
	MinIOSecretKey         string
	MinIOUseSSL            bool
	MinIOMediaBucket       string
	MinIOCertificateBucket string
	MediaKeyPrefix         string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CatalogCacheTTL time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    string

	PaymentWebhookSecret string
	CertificateFont      string
	CertificateBG        string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:        envutil.GetEnv("PORT", "8080", log),
		Environment: envutil.GetEnv("APP_ENV", "development", log),

		JWTSecretKey:    envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL:  time.Duration(envutil.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)) * time.Second,
		RefreshTokenTTL: time.Duration(envutil.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400*14, log)) * time.Second,

		ObjectStorageMode:      envutil.GetEnv("OBJECT_STORAGE_MODE", "", log),
		StorageEmulatorHost:    envutil.GetEnv("STORAGE_EMULATOR_HOST", "", log),
		MediaBucket:            envutil.GetEnv("MEDIA_GCS_BUCKET_NAME", "", log),
		CertificateBucket:      envutil.GetEnv("CERTIFICATE_GCS_BUCKET_NAME", "", log),
		MinIOEndpoint:          envutil.GetEnv("MINIO_ENDPOINT", "", log),
		MinIOAccessKey:         envutil.GetEnv("MINIO_ACCESS_KEY", "", log),
		MinIOSecretKey:         envutil.GetEnv("MINIO_SECRET_KEY", "", log),
		MinIOUseSSL:            envutil.GetEnvAsBool("MINIO_USE_SSL", false, log),
		MinIOMediaBucket:       envutil.GetEnv("MINIO_MEDIA_BUCKET", "media", log),
		MinIOCertificateBucket: envutil.GetEnv("MINIO_CERTIFICATE_BUCKET", "certificates", log),
		MediaKeyPrefix:         envutil.GetEnv("MEDIA_KEY_PREFIX", "media", log),

		RedisAddr:       envutil.GetEnv("REDIS_ADDR", "", log),
		RedisPassword:   envutil.GetEnv("REDIS_PASSWORD", "", log),
		RedisDB:         envutil.GetEnvAsInt("REDIS_DB", 0, log),
		CatalogCacheTTL: time.Duration(envutil.GetEnvAsInt("CATALOG_CACHE_TTL_SECONDS", 300, log)) * time.Second,

		RateLimitRPS:   float64(envutil.GetEnvAsInt("RATE_LIMIT_RPS", 20, log)),
		RateLimitBurst: envutil.GetEnvAsInt("RATE_LIMIT_BURST", 40, log),
		CORSOrigins:    envutil.GetEnv("CORS_ALLOWED_ORIGINS", "", log),

		PaymentWebhookSecret: envutil.GetEnv("PAYMENT_WEBHOOK_SECRET", "", log),
		CertificateFont:      envutil.GetEnv("CERTIFICATE_FONT", "", log),
		CertificateBG:        envutil.GetEnv("CERTIFICATE_BACKGROUND", "", log),
	}
}
