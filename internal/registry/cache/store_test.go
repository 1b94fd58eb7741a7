package cache_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lanternhq/go-push-relay/internal/registry"
	"github.com/lanternhq/go-push-relay/internal/registry/cache"
)

// --- Mocks ---

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (*registry.Registration, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Registration), args.Error(1)
}
func (m *MockCache) Set(ctx context.Context, key string, reg *registry.Registration, ttl time.Duration) error {
	return m.Called(ctx, key, reg, ttl).Error(0)
}
func (m *MockCache) Del(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MockRealStore struct {
	mock.Mock
}

func (m *MockRealStore) Save(ctx context.Context, reg registry.Registration) error {
	return m.Called(ctx, reg).Error(0)
}
func (m *MockRealStore) Lookup(ctx context.Context, appARN, token string) (*registry.Registration, error) {
	args := m.Called(ctx, appARN, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Registration), args.Error(1)
}
func (m *MockRealStore) Delete(ctx context.Context, appARN, token string) error {
	return m.Called(ctx, appARN, token).Error(0)
}
func (m *MockRealStore) List(ctx context.Context, appARN string) ([]registry.Registration, error) {
	args := m.Called(ctx, appARN)
	return args.Get(0).([]registry.Registration), args.Error(1)
}

const (
	appARN = "arn:aws:sns:eu-west-1:000000000000:app/APNS/my-app"
	token  = "device-token"
)

func cacheKey() string {
	return fmt.Sprintf("pushrelay:endpoints:%s", registry.Key(appARN, token))
}

func TestCachedStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Lookup - Cache hit skips the real store", func(t *testing.T) {
		mockCache := new(MockCache)
		mockDB := new(MockRealStore)
		store := cache.NewCachedStore(mockDB, mockCache, time.Hour)

		reg := &registry.Registration{
			PlatformApplicationARN: appARN,
			Token:                  token,
			EndpointARN:            "endpoint-arn",
		}

		mockCache.On("Get", ctx, cacheKey()).Return(reg, nil)

		got, err := store.Lookup(ctx, appARN, token)

		require.NoError(t, err)
		assert.Equal(t, "endpoint-arn", got.EndpointARN)
		mockDB.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything, mock.Anything)
		mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Lookup - Cache miss falls back and populates", func(t *testing.T) {
		mockCache := new(MockCache)
		mockDB := new(MockRealStore)
		store := cache.NewCachedStore(mockDB, mockCache, time.Hour)

		reg := &registry.Registration{
			PlatformApplicationARN: appARN,
			Token:                  token,
			EndpointARN:            "endpoint-arn",
		}

		mockCache.On("Get", ctx, cacheKey()).Return(nil, errors.New("cache miss"))
		mockDB.On("Lookup", ctx, appARN, token).Return(reg, nil)
		mockCache.On("Set", ctx, cacheKey(), reg, time.Hour).Return(nil)

		got, err := store.Lookup(ctx, appARN, token)

		require.NoError(t, err)
		assert.Equal(t, "endpoint-arn", got.EndpointARN)
		mockDB.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("Lookup - NotFound is not cached", func(t *testing.T) {
		mockCache := new(MockCache)
		mockDB := new(MockRealStore)
		store := cache.NewCachedStore(mockDB, mockCache, time.Hour)

		mockCache.On("Get", ctx, cacheKey()).Return(nil, errors.New("cache miss"))
		mockDB.On("Lookup", ctx, appARN, token).Return(nil, registry.ErrNotFound)

		_, err := store.Lookup(ctx, appARN, token)

		require.ErrorIs(t, err, registry.ErrNotFound)
		mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Save invalidates cache immediately", func(t *testing.T) {
		mockCache := new(MockCache)
		mockDB := new(MockRealStore)
		store := cache.NewCachedStore(mockDB, mockCache, time.Hour)

		reg := registry.Registration{
			PlatformApplicationARN: appARN,
			Token:                  token,
			EndpointARN:            "endpoint-arn",
		}

		mockDB.On("Save", ctx, reg).Return(nil)
		mockCache.On("Del", ctx, cacheKey()).Return(nil)

		require.NoError(t, store.Save(ctx, reg))
		mockDB.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("Delete invalidates cache immediately", func(t *testing.T) {
		mockCache := new(MockCache)
		mockDB := new(MockRealStore)
		store := cache.NewCachedStore(mockDB, mockCache, time.Hour)

		mockDB.On("Delete", ctx, appARN, token).Return(nil)
		mockCache.On("Del", ctx, cacheKey()).Return(nil)

		require.NoError(t, store.Delete(ctx, appARN, token))
		mockDB.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("Delete - store failure skips invalidation", func(t *testing.T) {
		mockCache := new(MockCache)
		mockDB := new(MockRealStore)
		store := cache.NewCachedStore(mockDB, mockCache, time.Hour)

		mockDB.On("Delete", ctx, appARN, token).Return(errors.New("db down"))

		err := store.Delete(ctx, appARN, token)
		require.Error(t, err)
		mockCache.AssertNotCalled(t, "Del", mock.Anything, mock.Anything)
	})
}
