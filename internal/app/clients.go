package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/coursemarket-backend/internal/platform/cache"
	"github.com/yungbote/coursemarket-backend/internal/platform/certdoc"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/platform/objectstore"
)

type Clients struct {
	Storage  objectstore.Gateway
	Redis    *goredis.Client
	Cache    cache.Cache
	Renderer certdoc.Renderer
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	storage, err := resolveGateway(ctx, log, cfg)
	if err != nil {
		return Clients{}, err
	}

	renderer, err := certdoc.NewRenderer(log, certdoc.Options{
		FontPath:       cfg.CertificateFont,
		BackgroundPath: cfg.CertificateBG,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init certificate renderer: %w", err)
	}

	out := Clients{Storage: storage, Cache: cache.Noop{}, Renderer: renderer}
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = client
		out.Cache = cache.NewRedisCache(client, log)
	} else {
		log.Info("REDIS_ADDR unset; catalog outline cache disabled")
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
