package main

import (
	"context"
	_ "embed"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"gopkg.in/yaml.v3"

	"github.com/lanternhq/go-push-relay/internal/metrics"
	"github.com/lanternhq/go-push-relay/internal/registry"
	"github.com/lanternhq/go-push-relay/internal/registry/cache"
	fsStore "github.com/lanternhq/go-push-relay/internal/registry/firestore"
	"github.com/lanternhq/go-push-relay/internal/relay/sns"
	"github.com/lanternhq/go-push-relay/pushrelay"
	"github.com/lanternhq/go-push-relay/pushrelay/config"
)

//go:embed local.yaml
var configFile []byte

func main() {
	var logLevel slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "debug", "DEBUG":
		logLevel = slog.LevelDebug
	case "info", "INFO":
		logLevel = slog.LevelInfo
	case "warn", "WARN":
		logLevel = slog.LevelWarn
	case "error", "ERROR":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})).With("service", "go-push-relay")
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Config Loading ---
	var yamlCfg config.YamlConfig
	if err := yaml.Unmarshal(configFile, &yamlCfg); err != nil {
		logger.Error("Failed to unmarshal embedded yaml config", "err", err)
		os.Exit(1)
	}
	baseCfg, _ := config.NewConfigFromYaml(&yamlCfg, logger)
	cfg, err := config.UpdateConfigWithEnvOverrides(baseCfg, logger)
	if err != nil {
		logger.Error("Config failed", "err", err)
		os.Exit(1)
	}

	metrics.Register()

	// --- Relay ---
	relayClient, err := sns.New(ctx, sns.Config{
		Region:   cfg.SNS.Region,
		Endpoint: cfg.SNS.Endpoint,
	}, logger)
	if err != nil {
		logger.Error("SNS relay failed", "err", err)
		os.Exit(1)
	}

	// --- Endpoint Registry (Decorated) ---
	var store registry.Store = registry.NewMemoryStore()
	logger.Info("Registry initialized", "type", "memory")

	if cfg.Firestore.Enabled {
		fsClient, err := firestore.NewClient(ctx, cfg.Firestore.ProjectID)
		if err != nil {
			logger.Error("Firestore client failed", "err", err)
			os.Exit(1)
		}
		defer fsClient.Close()
		store = fsStore.NewStore(fsClient)
		logger.Info("Registry upgraded", "type", "firestore")
	}

	if cfg.Redis.Enabled {
		logger.Info("Initializing Redis cache layer...", "addr", cfg.Redis.Addr)
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Error("Failed to connect to Redis", "err", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		store = cache.NewCachedStore(store, redisClient, cfg.CacheTTL)
		logger.Info("Registry upgraded", "type", "redis_cached")
	}

	// --- Service ---
	service := pushrelay.NewService(cfg, relayClient, store, logger)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = service.Shutdown(shutdownCtx)
	}()

	logger.Info("Starting service...")
	if err := service.Start(); err != nil {
		logger.Error("Service shutdown with error", "err", err)
		os.Exit(1)
	}
}
