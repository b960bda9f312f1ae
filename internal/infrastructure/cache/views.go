package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// ErrMiss is returned by Get when no rendered view is cached for the path,
// including while the circuit breaker is open.
var ErrMiss = errors.New("view cache miss")

// Invalidator is the one-way "the view at path P is stale" signal issued
// after successful order creation, wishlist toggles and review creation.
type Invalidator interface {
	Invalidate(ctx context.Context, paths ...string) error
}

// Views caches rendered view payloads in Redis, keyed by view path. All
// Redis traffic goes through a circuit breaker so a cache outage degrades
// to direct reads instead of taking requests down with it. Entries carry a
// TTL, which also bounds staleness if an invalidation is lost while the
// breaker is open.
type Views struct {
	client  *redis.Client
	baseTTL time.Duration
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewViews(client *redis.Client, baseTTL time.Duration) *Views {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "view-cache",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Views{client: client, baseTTL: baseTTL, breaker: breaker}
}

func viewKey(path string) string {
	return "view:" + path
}

// Get returns the cached payload for the view path, or ErrMiss.
func (v *Views) Get(ctx context.Context, path string) ([]byte, error) {
	data, err := v.breaker.Execute(func() ([]byte, error) {
		return v.client.Get(ctx, viewKey(path)).Bytes()
	})
	if errors.Is(err, redis.Nil) || errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("view cache get %s: %w", path, err)
	}
	return data, nil
}

// Set stores the rendered payload for the view path.
func (v *Views) Set(ctx context.Context, path string, payload []byte) error {
	// Jitter the TTL so a burst of renders does not expire all at once.
	ttl := v.baseTTL + time.Duration(rand.Intn(60))*time.Second
	_, err := v.breaker.Execute(func() ([]byte, error) {
		return nil, v.client.Set(ctx, viewKey(path), payload, ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("view cache set %s: %w", path, err)
	}
	return nil
}

// Invalidate drops the cached payloads for the given view paths.
func (v *Views) Invalidate(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	keys := make([]string, len(paths))
	for i, p := range paths {
		keys[i] = viewKey(p)
	}
	_, err := v.breaker.Execute(func() ([]byte, error) {
		return nil, v.client.Del(ctx, keys...).Err()
	})
	if err != nil {
		return fmt.Errorf("view cache invalidate %v: %w", paths, err)
	}
	return nil
}
