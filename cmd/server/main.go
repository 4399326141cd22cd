package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	reportapp "github.com/tafa/dashboard/internal/application/report"
	"github.com/tafa/dashboard/internal/infrastructure/cache"
	"github.com/tafa/dashboard/internal/infrastructure/config"
	"github.com/tafa/dashboard/internal/infrastructure/logger"
	"github.com/tafa/dashboard/internal/infrastructure/scheduler"
	"github.com/tafa/dashboard/internal/infrastructure/source"
	"github.com/tafa/dashboard/internal/infrastructure/telemetry"
	"github.com/tafa/dashboard/internal/interfaces/http/handler"
	"github.com/tafa/dashboard/internal/interfaces/http/middleware"
	"github.com/tafa/dashboard/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const pingPath = "/api/v1/system/ping"

func main() {
	// A missing .env file is normal outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		// An unwritable log file should not keep the dashboard down
		fallback, ferr := logger.NewForEnvironment(cfg.App.Env)
		if ferr != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
		log = fallback
		log.Warn("Configured log output unavailable, logging to stdout", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting dashboard",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("source", cfg.Source.Backend),
		zap.String("cache", cfg.Cache.Backend),
	)

	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		ExportInterval:    cfg.Telemetry.ExportInterval,
	}
	telemetryLog := logger.Named(log, "telemetry")
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetryCfg, telemetryLog)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetryCfg, telemetryLog)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	fileLoader, err := source.NewLoader(cfg, logger.Named(log, "source"))
	if err != nil {
		log.Fatal("Failed to initialize table source", zap.Error(err))
	}
	loader, err := telemetry.NewInstrumentedLoader(fileLoader,
		tracerProvider.Tracer("dashboard/source"), meterProvider.Meter("dashboard/source"))
	if err != nil {
		log.Fatal("Failed to instrument table source", zap.Error(err))
	}

	store, err := cache.NewTableStoreFactory(cfg.Cache, cfg.Redis,
		cache.WithLogger(logger.Named(log, "cache")),
		cache.WithInMemoryFallback(true),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize table cache", zap.Error(err))
	}

	var systemOpts []handler.SystemOption
	var cacheMetrics metric.Registration
	if tiered, ok := store.(*cache.TieredTableStore); ok {
		systemOpts = append(systemOpts, handler.WithCacheStats(tiered.Stats))
		cacheMetrics, err = telemetry.RegisterCacheMetrics(meterProvider.Meter("dashboard/cache"), tiered.Stats)
		if err != nil {
			log.Fatal("Failed to register cache metrics", zap.Error(err))
		}
	}

	tables := reportapp.NewTableService(loader, store, log)
	reports := reportapp.NewReportService(tables, reportapp.Options{
		MobileMethods: cfg.Report.MobileMethods,
		TopN:          cfg.Report.TopN,
		InsightN:      cfg.Report.InsightN,
	}, log)

	// Pages still answer 503 for tables that fail here
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), 30*time.Second)
	if err := tables.Warm(warmCtx); err != nil {
		log.Warn("Some tables could not be preloaded", zap.Error(err))
	}
	cancelWarm()

	refresher, err := scheduler.NewRefreshScheduler(scheduler.Config{
		Interval: cfg.Cache.RefreshInterval,
	}, tables, logger.Named(log, "refresh"))
	if err != nil {
		log.Fatal("Failed to initialize refresh scheduler", zap.Error(err))
	}
	if err := refresher.Start(context.Background()); err != nil && !errors.Is(err, scheduler.ErrSchedulerDisabled) {
		log.Fatal("Failed to start refresh scheduler", zap.Error(err))
	}
	systemOpts = append(systemOpts, handler.WithRefreshStatus(refresher.Status))

	if !cfg.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		Enabled:       meterProvider.IsEnabled(),
	}))
	engine.Use(logger.GinMiddleware(log, logger.WithSkipPaths(pingPath)))
	engine.Use(middleware.CORSWithConfig(corsConfig(cfg.HTTP)))

	r := router.NewRouter(engine)
	r.Register(router.DashboardGroups(router.Handlers{
		Reports: handler.NewReportHandler(reports),
		Tables:  handler.NewTableHandler(reports, tables),
		System:  handler.NewSystemHandler(cfg.App.Name, version, systemOpts...),
	})...)
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	if err := refresher.Stop(ctx); err != nil {
		log.Warn("Refresh scheduler did not stop cleanly", zap.Error(err))
	}
	if cacheMetrics != nil {
		_ = cacheMetrics.Unregister()
	}
	if err := cache.Close(store); err != nil {
		log.Warn("Table cache did not close cleanly", zap.Error(err))
	}
	if err := meterProvider.Shutdown(ctx); err != nil {
		log.Warn("Metrics did not flush", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(ctx); err != nil {
		log.Warn("Traces did not flush", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// corsConfig overlays the configured CORS lists on the defaults
func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.CORSAllowOrigins
	}
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	return cors
}
