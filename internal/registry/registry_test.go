package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanternhq/go-push-relay/internal/registry"
)

const (
	appARN = "arn:aws:sns:eu-west-1:000000000000:app/APNS/my-app"
	token  = "device-token"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := registry.NewMemoryStore()

	reg := registry.Registration{
		PlatformApplicationARN: appARN,
		Token:                  token,
		EndpointARN:            "endpoint-arn",
	}
	require.NoError(t, store.Save(ctx, reg))

	t.Run("Lookup returns saved registration", func(t *testing.T) {
		got, err := store.Lookup(ctx, appARN, token)
		require.NoError(t, err)
		assert.Equal(t, "endpoint-arn", got.EndpointARN)
	})

	t.Run("List filters by platform application", func(t *testing.T) {
		regs, err := store.List(ctx, appARN)
		require.NoError(t, err)
		assert.Len(t, regs, 1)

		regs, err = store.List(ctx, "arn:aws:sns:eu-west-1:000000000000:app/GCM/other-app")
		require.NoError(t, err)
		assert.Empty(t, regs)
	})

	t.Run("Save upserts", func(t *testing.T) {
		updated := reg
		updated.EndpointARN = "endpoint-arn-2"
		require.NoError(t, store.Save(ctx, updated))

		got, err := store.Lookup(ctx, appARN, token)
		require.NoError(t, err)
		assert.Equal(t, "endpoint-arn-2", got.EndpointARN)
	})

	t.Run("Delete removes", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, appARN, token))
		_, err := store.Lookup(ctx, appARN, token)
		assert.ErrorIs(t, err, registry.ErrNotFound)
	})
}

func TestKey_Stable(t *testing.T) {
	assert.Equal(t, registry.Key(appARN, token), registry.Key(appARN, token))
	assert.NotEqual(t, registry.Key(appARN, token), registry.Key(appARN, "other-token"))
	assert.NotEqual(t, registry.Key(appARN, token), registry.Key("other-app", token))
}
