package config_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lanternhq/go-push-relay/pkg/push"
	"github.com/lanternhq/go-push-relay/pushrelay/config"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUpdateConfigWithEnvOverrides(t *testing.T) {
	logger := newTestLogger()

	baseConfig := func() *config.Config {
		return &config.Config{
			ListenAddr: ":8080",
			SNS:        config.SNSConfig{Region: "eu-west-1"},
			PlatformApps: config.PlatformApps{
				APNS: "arn:aws:sns:eu-west-1:000000000000:app/APNS/base-app",
			},
		}
	}

	t.Run("Success - All overrides applied", func(t *testing.T) {
		cfg := baseConfig()

		t.Setenv("PORT", "9090")
		t.Setenv("AWS_REGION", "us-east-1")
		t.Setenv("SNS_ENDPOINT", "http://localhost:4566")
		t.Setenv("PLATFORM_APP_ARN_GCM", "arn:aws:sns:us-east-1:000000000000:app/GCM/env-app")
		t.Setenv("REDIS_ADDR", "localhost:6379")

		finalCfg, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		require.NoError(t, err)

		assert.Equal(t, ":9090", finalCfg.ListenAddr)
		assert.Equal(t, "us-east-1", finalCfg.SNS.Region)
		assert.Equal(t, "http://localhost:4566", finalCfg.SNS.Endpoint)
		assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:app/GCM/env-app", finalCfg.PlatformApps.GCM)
		assert.True(t, finalCfg.Redis.Enabled)
	})

	t.Run("Success - Defaults preserved", func(t *testing.T) {
		cfg := baseConfig()

		finalCfg, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		require.NoError(t, err)

		assert.Equal(t, ":8080", finalCfg.ListenAddr)
		assert.Equal(t, "eu-west-1", finalCfg.SNS.Region)
		assert.False(t, finalCfg.Redis.Enabled)
		assert.Equal(t, 24*time.Hour, finalCfg.CacheTTL)
	})

	t.Run("Failure - Missing region", func(t *testing.T) {
		cfg := baseConfig()
		cfg.SNS.Region = ""

		_, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "region")
	})

	t.Run("Failure - Firestore enabled without project", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Firestore.Enabled = true

		_, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		require.Error(t, err)
	})
}

func TestNewConfigFromYaml(t *testing.T) {
	raw := `
listen_addr: ":8081"
sns:
  region: eu-west-1
  endpoint: ""
platform_apps:
  apns: arn:aws:sns:eu-west-1:000000000000:app/APNS/my-app
  apns_sandbox: arn:aws:sns:eu-west-1:000000000000:app/APNS_SANDBOX/my-app
  gcm: arn:aws:sns:eu-west-1:000000000000:app/GCM/my-app
redis:
  enabled: true
  addr: localhost:6379
cache_ttl_seconds: 600
`
	var yamlCfg config.YamlConfig
	require.NoError(t, yaml.Unmarshal([]byte(raw), &yamlCfg))

	cfg, err := config.NewConfigFromYaml(&yamlCfg, newTestLogger())
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.ListenAddr)
	assert.Equal(t, "eu-west-1", cfg.SNS.Region)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.Redis.Enabled)

	assert.Equal(t, "arn:aws:sns:eu-west-1:000000000000:app/APNS/my-app", cfg.PlatformApps.ARNFor(push.TargetAPNS))
	assert.Equal(t, "arn:aws:sns:eu-west-1:000000000000:app/APNS_SANDBOX/my-app", cfg.PlatformApps.ARNFor(push.TargetAPNSSandbox))
	assert.Equal(t, "arn:aws:sns:eu-west-1:000000000000:app/GCM/my-app", cfg.PlatformApps.ARNFor(push.TargetGCM))
	assert.Equal(t, "", cfg.PlatformApps.ARNFor(push.Target("SMS")))
}
