package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-erp/meridian-erp/internal/app"
	"github.com/meridian-erp/meridian-erp/internal/fixedassets"
	"github.com/meridian-erp/meridian-erp/internal/fx"
	"github.com/meridian-erp/meridian-erp/internal/masterdata/assetcategories"
	"github.com/meridian-erp/meridian-erp/internal/masterdata/currencies"
	"github.com/meridian-erp/meridian-erp/internal/platform/db"
	"github.com/meridian-erp/meridian-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	currenciesRepo := currencies.NewRepository(pool)
	rateResolver := fx.NewResolver(currenciesRepo, fx.NewCache(redisClient, cfg.RateCacheTTL))
	categoriesService := assetcategories.NewService(assetcategories.NewRepository(pool))

	assetsRepo := fixedassets.NewRepository(pool)
	processor := fixedassets.NewProcessor(assetsRepo, categoriesService, rateResolver, logger)

	nightlyRun, err := jobs.NewDepreciationRunTask(jobs.DepreciationRunPayload{})
	if err != nil {
		logger.Error("build depreciation task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDepreciationRun, Handler: jobs.HandleDepreciationRun(processor, logger)},
			{Type: jobs.TaskDebtPaymentPosted, Handler: jobs.HandleDebtPaymentPosted(logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.DepreciationCron, Task: nightlyRun},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("cron", cfg.DepreciationCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
