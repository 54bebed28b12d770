package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sanvivo/price-dashboard/config"
	"github.com/sanvivo/price-dashboard/internal/dashboard"
	"github.com/sanvivo/price-dashboard/internal/gateway"
	"github.com/sanvivo/price-dashboard/internal/groups"
	"github.com/sanvivo/price-dashboard/internal/handlers"
	"github.com/sanvivo/price-dashboard/internal/metrics"
	"github.com/sanvivo/price-dashboard/internal/middleware"
	"github.com/sanvivo/price-dashboard/internal/storage"
	"github.com/sanvivo/price-dashboard/internal/telemetry"
)

func main() {
	cfg, err := config.Load(os.Getenv("PRICE_DASHBOARD_CONFIG"))
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting price dashboard")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry,
		telemetry.DashboardAttributes(cfg.API.BaseURL, cfg.Storage.Type, cfg.Filter.DesignatedPharmacies)...)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	store, err := storage.New(storage.StorageType(cfg.Storage.Type), cfg.Storage.BasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open group storage")
	}
	logger.Info().Str("type", cfg.Storage.Type).Str("path", cfg.Storage.BasePath).Msg("Group storage ready")

	// Prices keep the API's numeric JSON form.
	decimal.MarshalJSONWithoutQuotes = true

	recorder := metrics.NewRecorder()
	gw := gateway.New(cfg.GatewayConfig(), gateway.WithMetrics(recorder), gateway.WithLogger(logger))
	runtime := dashboard.NewRuntime(
		dashboard.Initial(cfg.Filter.DesignatedPharmacies),
		gw,
		groups.NewStore(store, recorder, logger),
		dashboard.WithMetrics(recorder),
		dashboard.WithLogger(logger),
	)
	if err := runtime.Start(ctx); err != nil {
		logger.Warn().Err(err).Msg("Dashboard started without a timestamp index")
	}

	if cfg.Logging.Level == "debug" || cfg.Logging.Level == "trace" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewClientRateLimiter(middleware.DefaultRateLimiterConfig())
	go limiter.Run(ctx)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimit(limiter))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.NewDashboard(runtime, store, logger).Register(router)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	runtime.Wait()

	if closer, ok := store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close group storage")
		}
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to shutdown telemetry")
	}

	logger.Info().Msg("Server exited")
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "price-dashboard").Logger()
	return &logger
}
