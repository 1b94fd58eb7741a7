// Package cache adds read-aside caching to a registration Store.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/lanternhq/go-push-relay/internal/registry"
)

// CacheClient defines the cache commands the decorator needs, typed to the
// registration domain so serialization stays inside the cache implementation.
type CacheClient interface {
	// Get returns the cached registration, or an error on a miss.
	Get(ctx context.Context, key string) (*registry.Registration, error)
	// Set stores the registration with a TTL.
	Set(ctx context.Context, key string, reg *registry.Registration, ttl time.Duration) error
	// Del removes the key.
	Del(ctx context.Context, key string) error
}

// CachedStore is a decorator that adds read-aside caching to any Store.
// Writes invalidate so a deleted registration stops resolving immediately.
type CachedStore struct {
	realStore registry.Store
	cache     CacheClient
	ttl       time.Duration
}

var _ registry.Store = (*CachedStore)(nil)

func NewCachedStore(realStore registry.Store, cache CacheClient, ttl time.Duration) *CachedStore {
	return &CachedStore{
		realStore: realStore,
		cache:     cache,
		ttl:       ttl,
	}
}

func (s *CachedStore) Lookup(ctx context.Context, platformApplicationARN, token string) (*registry.Registration, error) {
	key := s.cacheKey(platformApplicationARN, token)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		return cached, nil
	}

	fresh, err := s.realStore.Lookup(ctx, platformApplicationARN, token)
	if err != nil {
		return nil, err
	}

	// Caching is an optimization, not a transaction; if the cache is down we
	// still serve from the real store.
	_ = s.cache.Set(ctx, key, fresh, s.ttl)

	return fresh, nil
}

func (s *CachedStore) Save(ctx context.Context, reg registry.Registration) error {
	if err := s.realStore.Save(ctx, reg); err != nil {
		return err
	}
	return s.invalidate(ctx, reg.PlatformApplicationARN, reg.Token)
}

func (s *CachedStore) Delete(ctx context.Context, platformApplicationARN, token string) error {
	if err := s.realStore.Delete(ctx, platformApplicationARN, token); err != nil {
		return err
	}
	return s.invalidate(ctx, platformApplicationARN, token)
}

// List always hits the real store; listings are rare and the per-pair keys
// cannot answer them.
func (s *CachedStore) List(ctx context.Context, platformApplicationARN string) ([]registry.Registration, error) {
	return s.realStore.List(ctx, platformApplicationARN)
}

func (s *CachedStore) invalidate(ctx context.Context, platformApplicationARN, token string) error {
	return s.cache.Del(ctx, s.cacheKey(platformApplicationARN, token))
}

func (s *CachedStore) cacheKey(platformApplicationARN, token string) string {
	return fmt.Sprintf("pushrelay:endpoints:%s", registry.Key(platformApplicationARN, token))
}
