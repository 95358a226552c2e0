// Package main is the entrypoint for the flashdeck API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/flashdeck/flashdeck/internal/auth"
	"github.com/flashdeck/flashdeck/internal/cache"
	"github.com/flashdeck/flashdeck/internal/config"
	"github.com/flashdeck/flashdeck/internal/handler"
	"github.com/flashdeck/flashdeck/internal/metrics"
	"github.com/flashdeck/flashdeck/internal/middleware"
	"github.com/flashdeck/flashdeck/internal/repository"
	"github.com/flashdeck/flashdeck/internal/review"
	"github.com/flashdeck/flashdeck/internal/server"
	"github.com/flashdeck/flashdeck/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := repository.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error("failed to run migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			)
			return err
		}
		logger.Info("migrations applied")
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.WithMaxConns(cfg.DatabaseMaxConns))
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", config.RedactURL(cfg.DatabaseURL)),
		)
		return err
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL, cache.WithIdentityTTL(cfg.IdentityCacheTTL))
	if err != nil {
		logger.Error("failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", config.RedactURL(cfg.RedisURL)),
		)
		return err
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	var recorder metrics.Recorder = metrics.NewNoop()
	if cfg.MetricsEnabled {
		recorder = metrics.NewPrometheus()
	}

	reviews := repository.NewReviewEventRepository(repo)
	publisher := review.NewPublisher(cacheClient.Client(), logger, recorder)

	deckService := service.NewDeckService(repo, recorder)
	cardService := service.NewCardService(repo, publisher, recorder)
	statsService := service.NewStatsService(repo, reviews)

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.Error("invalid TRUSTED_PROXIES", slog.String("error", err.Error()))
		return err
	}

	routerCfg := server.RouterConfig{
		Logger:         logger,
		IsDevelopment:  cfg.IsDevelopment(),
		MaxBodyBytes:   cfg.MaxBodyBytes,
		TrustedProxies: trustedProxies,
		CORS:          middleware.CORSConfig{AllowedOrigins: cfg.AllowedOrigins()},
		Identity: middleware.IdentityConfig{
			Logger:     logger,
			Sessions:   auth.NewSessions(cfg.SessionSecret, cfg.SessionIssuer),
			Users:      repo,
			Cache:      cacheClient,
			CookieName: cfg.SessionCookieName,
			Metrics:    recorder,
		},
		RateLimit: middleware.RateLimitConfig{
			Logger:        logger,
			Metrics:       recorder,
			Users:         cacheClient,
			UserPerMinute: cfg.RateLimitPerMinute,
			UserBurst:     cfg.RateLimitBurst,
			IPs:           cacheClient,
			IPPerSecond:   cfg.RateLimitIPPerSecond,
			IPBurst:       cfg.RateLimitIPBurst,
		},
		Health: handler.NewHealthHandler(repo, cacheClient),
		Decks:  handler.NewDeckHandler(deckService, statsService, logger),
		Cards:  handler.NewCardHandler(cardService, logger),
	}
	if cfg.MetricsEnabled {
		routerCfg.Metrics = recorder
	}

	srv := server.New(server.NewRouter(routerCfg), server.Options{
		Addr:            cfg.Addr(),
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Registered first so it stops last, after in-flight publishes are flushed.
	if cfg.ReviewWorkerEnabled {
		worker := review.NewWorker(cacheClient.Client(), reviews, logger, review.NewConsumerID(), recorder, review.WorkerOptions{})
		workerCtx, cancelWorker := context.WithCancel(context.Background())
		go func() {
			if err := worker.Run(workerCtx); err != nil {
				logger.Error("review worker stopped", "error", err)
			}
		}()
		srv.OnShutdown("review-worker", func(ctx context.Context) error {
			defer cancelWorker()
			return worker.Shutdown(ctx)
		})
	}
	srv.OnShutdown("review-publisher", publisher.Flush)

	logger.Info("starting server",
		"addr", cfg.Addr(),
		"env", cfg.AppEnv,
		"metrics", cfg.MetricsEnabled,
		"review_worker", cfg.ReviewWorkerEnabled,
	)
	return srv.Run(ctx)
}

func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var h slog.Handler
	if cfg.LogFormat == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// sanitizeError strips connection secrets from driver error messages.
func sanitizeError(err error, secrets ...string) string {
	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		msg = strings.ReplaceAll(msg, secret, config.RedactURL(secret))
	}
	return msg
}
