package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/lanternhq/go-push-relay/pkg/push"
)

type SNSConfig struct {
	Region string
	// Endpoint overrides the SNS endpoint URL; empty means the regional default.
	Endpoint string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type FirestoreConfig struct {
	Enabled   bool
	ProjectID string
}

// PlatformApps maps a platform target to the relay platform-application ARN
// the infrastructure registered for it. Targets without an ARN are rejected
// per request, not at startup, so a mobile-only deployment stays valid.
type PlatformApps struct {
	APNS        string
	APNSSandbox string
	GCM         string
}

// ARNFor resolves the platform-application ARN for a target. Empty means the
// target is not configured.
func (p PlatformApps) ARNFor(target push.Target) string {
	switch target {
	case push.TargetAPNS:
		return p.APNS
	case push.TargetAPNSSandbox:
		return p.APNSSandbox
	case push.TargetGCM:
		return p.GCM
	default:
		return ""
	}
}

// Config defines the *single*, authoritative configuration.
type Config struct {
	ListenAddr   string
	SNS          SNSConfig
	Redis        RedisConfig
	Firestore    FirestoreConfig
	PlatformApps PlatformApps
	CacheTTL     time.Duration
}

// UpdateConfigWithEnvOverrides applies environment variables and final validation.
func UpdateConfigWithEnvOverrides(cfg *Config, logger *slog.Logger) (*Config, error) {
	logger.Debug("Applying environment variable overrides...")

	if val := os.Getenv("PORT"); val != "" {
		logger.Debug("Overriding config value", "key", "PORT", "source", "env")
		cfg.ListenAddr = ":" + val
	}
	if val := os.Getenv("AWS_REGION"); val != "" {
		logger.Debug("Overriding config value", "key", "AWS_REGION", "source", "env")
		cfg.SNS.Region = val
	}
	if val := os.Getenv("SNS_ENDPOINT"); val != "" {
		logger.Debug("Overriding config value", "key", "SNS_ENDPOINT", "source", "env")
		cfg.SNS.Endpoint = val
	}

	// Platform application overrides
	if val := os.Getenv("PLATFORM_APP_ARN_APNS"); val != "" {
		cfg.PlatformApps.APNS = val
	}
	if val := os.Getenv("PLATFORM_APP_ARN_APNS_SANDBOX"); val != "" {
		cfg.PlatformApps.APNSSandbox = val
	}
	if val := os.Getenv("PLATFORM_APP_ARN_GCM"); val != "" {
		cfg.PlatformApps.GCM = val
	}

	// Redis Overrides
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		cfg.Redis.Addr = val
		cfg.Redis.Enabled = true
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		cfg.Redis.Password = val
	}
	if val := os.Getenv("REDIS_DB"); val != "" {
		if db, err := strconv.Atoi(val); err == nil {
			cfg.Redis.DB = db
		}
	}
	if val := os.Getenv("REDIS_ENABLED"); val != "" {
		enabled, _ := strconv.ParseBool(val)
		cfg.Redis.Enabled = enabled
	}

	// Firestore Overrides
	if val := os.Getenv("FIRESTORE_PROJECT_ID"); val != "" {
		cfg.Firestore.ProjectID = val
		cfg.Firestore.Enabled = true
	}

	// Final Validation
	if cfg.SNS.Region == "" {
		return nil, fmt.Errorf("sns region is required (set via YAML or AWS_REGION env var)")
	}
	if cfg.Firestore.Enabled && cfg.Firestore.ProjectID == "" {
		return nil, fmt.Errorf("firestore enabled but project_id missing")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}

	logger.Debug("Configuration finalized and validated successfully")
	return cfg, nil
}
