package config

import (
	"log/slog"
	"time"
)

type YamlSNSConfig struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

type YamlRedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
}

type YamlFirestoreConfig struct {
	ProjectID string `yaml:"project_id"`
	Enabled   bool   `yaml:"enabled"`
}

type YamlPlatformApps struct {
	APNS        string `yaml:"apns"`
	APNSSandbox string `yaml:"apns_sandbox"`
	GCM         string `yaml:"gcm"`
}

// YamlConfig is the structure that mirrors the raw config.yaml file.
type YamlConfig struct {
	ListenAddr      string              `yaml:"listen_addr"`
	SNS             YamlSNSConfig       `yaml:"sns"`
	Redis           YamlRedisConfig     `yaml:"redis"`
	Firestore       YamlFirestoreConfig `yaml:"firestore"`
	PlatformApps    YamlPlatformApps    `yaml:"platform_apps"`
	CacheTTLSeconds int                 `yaml:"cache_ttl_seconds"`
}

// NewConfigFromYaml converts the YamlConfig into a clean, base Config struct.
func NewConfigFromYaml(baseCfg *YamlConfig, logger *slog.Logger) (*Config, error) {
	logger.Debug("Mapping YAML config to base config struct")

	cfg := &Config{
		ListenAddr: baseCfg.ListenAddr,
		SNS: SNSConfig{
			Region:   baseCfg.SNS.Region,
			Endpoint: baseCfg.SNS.Endpoint,
		},
		Redis: RedisConfig{
			Addr:     baseCfg.Redis.Addr,
			Password: baseCfg.Redis.Password,
			DB:       baseCfg.Redis.DB,
			Enabled:  baseCfg.Redis.Enabled,
		},
		Firestore: FirestoreConfig{
			ProjectID: baseCfg.Firestore.ProjectID,
			Enabled:   baseCfg.Firestore.Enabled,
		},
		PlatformApps: PlatformApps{
			APNS:        baseCfg.PlatformApps.APNS,
			APNSSandbox: baseCfg.PlatformApps.APNSSandbox,
			GCM:         baseCfg.PlatformApps.GCM,
		},
		CacheTTL: time.Duration(baseCfg.CacheTTLSeconds) * time.Second,
	}

	logger.Debug("YAML config mapping complete",
		"listen_addr", cfg.ListenAddr,
		"region", cfg.SNS.Region,
	)

	return cfg, nil
}
