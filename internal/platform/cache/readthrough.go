package cache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

// ReadThrough serves T from the cache and loads it on a miss. Concurrent
// misses for the same key share a single load.
type ReadThrough[T any] struct {
	cache   Cache
	log     *logger.Logger
	ttl     time.Duration
	group   singleflight.Group
	observe func(result string)
}

// NewReadThrough builds a loader. observe receives "hit", "miss" or "error"
// and may be nil.
func NewReadThrough[T any](c Cache, log *logger.Logger, ttl time.Duration, observe func(result string)) *ReadThrough[T] {
	if c == nil {
		c = Noop{}
	}
	if observe == nil {
		observe = func(string) {}
	}
	return &ReadThrough[T]{cache: c, log: log, ttl: ttl, observe: observe}
}

func (r *ReadThrough[T]) Get(ctx context.Context, key string, load func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	found, err := r.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		r.observe("error")
		r.log.Warn("cache read failed, loading from source", "key", key, "error", err)
	} else if found {
		r.observe("hit")
		return cached, nil
	}
	if err == nil {
		r.observe("miss")
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		loaded, loadErr := load(ctx)
		if loadErr != nil {
			return loaded, loadErr
		}
		if setErr := r.cache.SetJSON(ctx, key, loaded, r.ttl); setErr != nil {
			r.log.Warn("cache write failed", "key", key, "error", setErr)
		}
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache: unexpected loader result %T", v)
	}
	return out, nil
}

func (r *ReadThrough[T]) Invalidate(ctx context.Context, keys ...string) {
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.log.Warn("cache invalidation failed", "keys", keys, "error", err)
	}
}
