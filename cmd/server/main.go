package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"anoa.com/coursemarket/internal/agent/providers"
	"anoa.com/coursemarket/internal/bootstrap"
	"anoa.com/coursemarket/internal/config"
	"anoa.com/coursemarket/internal/server"
	"anoa.com/coursemarket/pkg/database"
	"anoa.com/coursemarket/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DSN(), !cfg.IsProduction())
	if err != nil {
		return err
	}
	if err := bootstrap.Migrate(db); err != nil {
		return err
	}
	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedAdminUser(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}

	deps := server.Dependencies{DB: db, Logger: logger}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, live notifications and cooldowns disabled", "error", err)
		} else {
			deps.Redis = redisClient
		}
	} else {
		logger.Warn("REDIS_URL not set, live notifications and cooldowns disabled")
	}

	if cfg.MeiliSearchHost != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		deps.Search = meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	} else {
		logger.Warn("MEILISEARCH_HOST not set, course search disabled")
	}

	imageStorage, err := storage.NewCloudinaryStorage(storage.CloudinaryConfig{
		URL:       cfg.CloudinaryURL,
		CloudName: cfg.CloudinaryCloudName,
		Folder:    cfg.CloudinaryUploadFolder,
	})
	if err != nil {
		logger.Warn("cloudinary not configured, image uploads disabled", "error", err)
	} else {
		deps.Storage = imageStorage
	}

	if cfg.GeminiAPIKey != "" {
		llm, err := providers.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		defer llm.Close()
		deps.LLM = llm
	} else {
		logger.Warn("GEMINI_API_KEY not set, AI features disabled")
	}

	srv, err := server.NewServer(cfg, deps)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
