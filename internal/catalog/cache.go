package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/HubertasVin/pos-1206-sub000/pkg/errors"
)

// DefaultCacheTTL keeps unit prices fresh enough that an open order re-prices
// within seconds of a catalog change.
const DefaultCacheTTL = 30 * time.Second

// CachedResolver wraps a Resolver with a Redis read-through cache on unit
// lookups. Cache failures degrade to the underlying resolver; not-found
// results are never cached.
type CachedResolver struct {
	inner  Resolver
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedResolver creates a read-through cache around the given resolver.
// A non-positive ttl falls back to DefaultCacheTTL.
func NewCachedResolver(inner Resolver, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedResolver {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedResolver{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// ResolveProduct resolves a product unit through the cache.
func (r *CachedResolver) ResolveProduct(ctx context.Context, id string) (*Unit, error) {
	return r.resolve(ctx, "catalog:product:"+id, id, r.inner.ResolveProduct)
}

// ResolveVariation resolves a product variation unit through the cache.
func (r *CachedResolver) ResolveVariation(ctx context.Context, id string) (*Unit, error) {
	return r.resolve(ctx, "catalog:variation:"+id, id, r.inner.ResolveVariation)
}

// ResolveReservation resolves a reservation unit through the cache.
func (r *CachedResolver) ResolveReservation(ctx context.Context, id string) (*Unit, error) {
	return r.resolve(ctx, "catalog:reservation:"+id, id, r.inner.ResolveReservation)
}

func (r *CachedResolver) resolve(ctx context.Context, key, id string, fetch func(context.Context, string) (*Unit, error)) (*Unit, error) {
	cached, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		var unit Unit
		if err := json.Unmarshal(cached, &unit); err == nil {
			return &unit, nil
		}
		// Corrupt entry: fall through to a fresh fetch and overwrite.
	} else if !errors.Is(err, redis.Nil) {
		r.logger.WarnContext(ctx, "catalog cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	unit, err := fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(unit); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			r.logger.WarnContext(ctx, "catalog cache write failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	return unit, nil
}

// Invalidate drops a cached unit, keyed the same way the resolvers cache it.
func (r *CachedResolver) Invalidate(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return apperrors.Wrap(err, "invalidate catalog cache")
	}
	return nil
}
