package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ayushbridge/ayushbridge/internal/config"
	"github.com/ayushbridge/ayushbridge/internal/domain/terminology"
	"github.com/ayushbridge/ayushbridge/internal/mapping"
	"github.com/ayushbridge/ayushbridge/internal/platform/db"
	"github.com/ayushbridge/ayushbridge/internal/platform/explain"
	"github.com/ayushbridge/ayushbridge/internal/platform/fhir"
	"github.com/ayushbridge/ayushbridge/internal/platform/middleware"
)

const shutdownTimeout = 10 * time.Second

func runServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	src, err := newStoreSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	store, err := src.Load(ctx)
	if err != nil {
		return err
	}
	logger.Info().
		Str("source", src.Describe()).
		Int("mappings", store.Len()).
		Int("icd11_codes", store.ReverseLen()).
		Msg("mappings loaded")
	holder := mapping.NewHolder(store)

	explainer, closeExplainer := newExplainer(ctx, cfg, logger)
	defer closeExplainer()

	svc := terminology.NewService(holder, explainer, terminology.Config{
		BaseURL:            cfg.BaseURL,
		Version:            version,
		ExplanationTimeout: cfg.ExplanationTimeout,
		AnalysisTimeout:    cfg.AnalysisTimeout,
	}, logger)
	if pool := src.Pool(); pool != nil {
		svc.WithDatabaseCheck(func(ctx context.Context) string { return db.Check(ctx, pool) })
	}

	e := newServer(cfg, logger, svc)
	if pool := src.Pool(); pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Bool("tls", cfg.TLSEnabled).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signals)

	for sig := range signals {
		if sig == syscall.SIGHUP {
			reloadStore(ctx, src, holder, logger)
			continue
		}
		break
	}

	logger.Info().Msg("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// reloadStore rebuilds the store from src and installs it. On failure the
// current store keeps serving.
func reloadStore(ctx context.Context, src *storeSource, holder *mapping.Holder, logger zerolog.Logger) {
	start := time.Now()
	store, err := src.Load(ctx)
	if err != nil {
		logger.Error().Err(err).Str("source", src.Describe()).Msg("reload failed, keeping current mappings")
		return
	}
	old := holder.Swap(store)
	ev := logger.Info().
		Str("source", src.Describe()).
		Int("mappings", store.Len()).
		Dur("took", time.Since(start))
	if old != nil {
		ev = ev.Int("previous_mappings", old.Len())
	}
	ev.Msg("mappings reloaded")
}

// newExplainer returns the Gemini client, wrapped in a Redis cache when
// REDIS_URL is set. Without an API key explanations are disabled.
func newExplainer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (explain.Explainer, func()) {
	noop := func() {}
	if !cfg.ExplanationsEnabled() {
		logger.Info().Msg("GEMINI_API_KEY not set, explanations disabled")
		return explain.Disabled{}, noop
	}

	client, err := explain.NewGeminiClient(explain.GeminiConfig{
		APIKey:   cfg.GeminiAPIKey,
		Model:    cfg.GeminiModel,
		BaseURL:  cfg.GeminiBaseURL,
		Timeout:  cfg.AnalysisTimeout,
		RetryMax: 2,
		Logger:   logger.With().Str("component", "gemini").Logger(),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("explanation client unavailable, explanations disabled")
		return explain.Disabled{}, noop
	}
	if cfg.RedisURL == "" {
		return client, noop
	}

	rdb, err := explain.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, explanations are not cached")
		return client, noop
	}
	logger.Info().Dur("ttl", cfg.ExplanationCacheTTL).Msg("explanation cache enabled")
	return explain.NewCachedExplainer(client, rdb, cfg.ExplanationCacheTTL, logger), func() { rdb.Close() }
}

// newServer wires the middleware chain and the terminology routes.
func newServer(cfg *config.Config, logger zerolog.Logger, svc *terminology.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept, middleware.RequestIDHeader},
	}))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.BurstSize <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	e.Use(middleware.RateLimit(rateLimitCfg))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	root := e.Group("")
	fhirGroup := e.Group("/fhir", fhir.ContentNegotiationMiddleware())

	terminology.NewHandler(svc).RegisterRoutes(root, fhirGroup)
	return e
}
