package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-erp/meridian-erp/internal/app"
	"github.com/meridian-erp/meridian-erp/internal/debts"
	"github.com/meridian-erp/meridian-erp/internal/fixedassets"
	"github.com/meridian-erp/meridian-erp/internal/fx"
	"github.com/meridian-erp/meridian-erp/internal/leasing"
	"github.com/meridian-erp/meridian-erp/internal/ledger"
	"github.com/meridian-erp/meridian-erp/internal/masterdata/assetcategories"
	"github.com/meridian-erp/meridian-erp/internal/masterdata/branches"
	"github.com/meridian-erp/meridian-erp/internal/masterdata/companies"
	"github.com/meridian-erp/meridian-erp/internal/masterdata/currencies"
	"github.com/meridian-erp/meridian-erp/internal/masterdata/partners"
	"github.com/meridian-erp/meridian-erp/internal/masterdata/taxes"
	"github.com/meridian-erp/meridian-erp/internal/platform/db"
	"github.com/meridian-erp/meridian-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	rateCache := fx.NewCache(redisClient, cfg.RateCacheTTL)

	currenciesRepo := currencies.NewRepository(pool)
	currenciesService := currencies.NewService(currenciesRepo).WithRateInvalidator(rateCache)
	currenciesHandler := currencies.NewHandler(logger, currenciesService)

	companiesService := companies.NewService(companies.NewRepository(pool))
	companiesHandler := companies.NewHandler(logger, companiesService)

	branchesService := branches.NewService(branches.NewRepository(pool))
	branchesHandler := branches.NewHandler(logger, branchesService)

	partnersService := partners.NewService(partners.NewRepository(pool))
	partnersHandler := partners.NewHandler(logger, partnersService)

	categoriesService := assetcategories.NewService(assetcategories.NewRepository(pool))
	categoriesHandler := assetcategories.NewHandler(logger, categoriesService)

	taxesService := taxes.NewService(taxes.NewRepository(pool))
	taxesHandler := taxes.NewHandler(logger, taxesService)

	ledgerService := ledger.NewService(ledger.NewRepository(pool))
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	rateResolver := fx.NewResolver(currenciesRepo, rateCache)

	assetsRepo := fixedassets.NewRepository(pool)
	assetsService := fixedassets.NewService(assetsRepo)
	processor := fixedassets.NewProcessor(assetsRepo, categoriesService, rateResolver, logger)
	assetsHandler := fixedassets.NewHandler(logger, assetsService, processor)

	leasingService := leasing.NewService(leasing.NewRepository(pool))
	leasingHandler := leasing.NewHandler(logger, leasingService)

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	debtsService := debts.NewService(debts.NewRepository(pool), jobsClient, logger)
	debtsHandler := debts.NewHandler(logger, debtsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Config:          cfg,
		Logger:          logger,
		Currencies:      currenciesHandler,
		Companies:       companiesHandler,
		Branches:        branchesHandler,
		Partners:        partnersHandler,
		AssetCategories: categoriesHandler,
		Taxes:           taxesHandler,
		Ledger:          ledgerHandler,
		FixedAssets:     assetsHandler,
		Leasing:         leasingHandler,
		Debts:           debtsHandler,
		Jobs:            jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
