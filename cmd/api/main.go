package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-api/internal/config"
	"catalog-api/internal/handler"
	"catalog-api/internal/middleware"
	"catalog-api/internal/model"
	"catalog-api/internal/repository"
	"catalog-api/internal/response"
	"catalog-api/internal/router"
	"catalog-api/internal/seed"
	"catalog-api/internal/service"
	"catalog-api/internal/telemetry"
	"catalog-api/internal/validation"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the process environment still applies.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().
		Str("version", version).
		Str("env", cfg.App.Env).
		Msg("starting catalog API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracerProvider, shutdownTracing, err := telemetry.Setup(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("failed to flush traces")
		}
	}()
	tracer := tracerProvider.Tracer(cfg.OTEL.ServiceName)

	validator := validation.NewProductValidator()

	products, err := loadSeed(ctx, cfg, validator, logger)
	if err != nil {
		return fmt.Errorf("failed to load seed catalogue: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	productRepo := repository.NewProductRepository(products, tracer, logger)
	productService := service.NewProductService(productRepo, tracer, registry, logger)

	formatter := response.NewFormatter(cfg.App.IsDevelopment(), logger)
	productHandler := handler.NewProductHandler(productService, validator, formatter, logger)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.RPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	} else {
		logger.Info().Msg("rate limiting disabled")
	}

	mux := router.New(router.Dependencies{
		ProductHandler: productHandler,
		Authenticator:  middleware.NewAPIKeyAuthenticator(cfg.Auth.APIKey),
		Formatter:      formatter,
		Metrics:        middleware.NewMetrics(registry),
		Gatherer:       registry,
		RateLimiter:    limiter,
		Logger:         logger,
	})

	server := &http.Server{
		Addr: cfg.Server.Address(),
		Handler: otelhttp.NewHandler(mux, "http-server",
			otelhttp.WithTracerProvider(tracerProvider),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Int("products", len(products)).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// loadSeed returns the catalogue the store starts with: the built-in products
// unless a seed file is configured, read from S3 first when S3 is enabled.
func loadSeed(ctx context.Context, cfg *config.Config, validator validation.ProductValidator, logger zerolog.Logger) ([]model.Product, error) {
	if cfg.Seed.File == "" {
		logger.Info().Msg("no seed file configured, using built-in catalogue")
		return seed.DefaultProducts(), nil
	}

	fileLoader := seed.NewFileLoader(validator, logger)

	var s3Loader seed.Loader
	if cfg.S3.Enabled {
		loader, err := seed.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, validator, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = loader
		}
	} else {
		logger.Info().Msg("using local file system for seed file (S3 disabled)")
	}

	return seed.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger).Load(ctx, cfg.Seed.File)
}
