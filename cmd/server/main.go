package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appintegration "github.com/erp/storesync/internal/application/integration"
	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/infrastructure/cache"
	"github.com/erp/storesync/internal/infrastructure/config"
	"github.com/erp/storesync/internal/infrastructure/ecommerce"
	"github.com/erp/storesync/internal/infrastructure/logger"
	"github.com/erp/storesync/internal/infrastructure/persistence"
	"github.com/erp/storesync/internal/infrastructure/scheduler"
	"github.com/erp/storesync/internal/infrastructure/storage"
	"github.com/erp/storesync/internal/infrastructure/telemetry"
	"github.com/erp/storesync/internal/interfaces/http/handler"
	"github.com/erp/storesync/internal/interfaces/http/middleware"
	"github.com/erp/storesync/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//go:generate swag init -g cmd/server/main.go -d ../../ -o ../../docs

//	@title			Store Sync API
//	@version		1.0
//	@description	Synchronises the ERP catalog, stock and orders with a WooCommerce storefront.

//	@contact.name	API Support

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting store sync service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, zapcore.InfoLevel)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.PyroscopeAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.PyroscopeUser,
		BasicAuthPassword: cfg.Telemetry.PyroscopePassword,
		ProfileTypes:      cfg.Telemetry.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Telemetry.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	// Database
	gormCfg := logger.DefaultGormConfig()
	gormCfg.Level, _ = logger.ParseGormLevel(cfg.Log.GormLevel)
	gormCfg.SlowThreshold = cfg.Log.GormSlowThreshold
	gormLog := logger.NewGormLogger(log, gormCfg)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.DefaultDBTracingConfig()
		dbTracing.Enabled = true
		if cfg.Database.Driver == "sqlite" {
			dbTracing.DBSystem = "sqlite"
		}
		if err := telemetry.NewDBTracingPlugin(dbTracing, log).RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Database tracing disabled", zap.Error(err))
		}
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	// Sync lock
	locker, closeLocker := newSyncLocker(ctx, cfg, log)
	defer closeLocker()

	// Storefront
	wooCfg := ecommerce.NewWooCommerceConfig(cfg.WooCommerce.URL, cfg.WooCommerce.ConsumerKey, cfg.WooCommerce.ConsumerSecret)
	wooCfg.APIVersion = cfg.WooCommerce.APIVersion
	wooCfg.Timeout = cfg.WooCommerce.Timeout
	wooCfg.PageSize = cfg.WooCommerce.PageSize
	wooCfg.BatchSize = cfg.WooCommerce.BatchSize
	wooCfg.RateLimit = cfg.WooCommerce.RateLimit
	wooCfg.RateBurst = cfg.WooCommerce.RateBurst
	platform, err := ecommerce.NewPlatform(wooCfg, log)
	if err != nil {
		log.Fatal("Invalid WooCommerce configuration", zap.Error(err))
	}

	media, err := storage.NewMediaResolver(&cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize media storage", zap.Error(err))
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	syncLogRepo := persistence.NewGormSyncLogRepository(db.DB)
	settingRepo := persistence.NewGormSyncSettingRepository(db.DB)
	vatRateRepo := persistence.NewGormVatRateRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Services
	retry := appintegration.RetryPolicy{MaxRetries: cfg.Sync.MaxRetries, Delay: cfg.Sync.RetryDelay}
	settingsService := appintegration.NewSyncSettingsService(settingRepo, accountRepo, log)
	ledgerService := appintegration.NewSyncLedgerService(syncLogRepo, log)

	catalogSync := appintegration.NewCatalogSyncService(platform, productRepo, categoryRepo, settingsService, ledgerService, log)
	catalogSync.SetMediaResolver(media)
	catalogSync.SetRetryPolicy(retry)
	catalogSync.SetPageSize(cfg.Sync.ProductPageSize)

	orderSync := appintegration.NewOrderSyncService(platform, txScope, productRepo, invoiceRepo, accountRepo, settingsService, ledgerService, log)
	orderSync.SetRetryPolicy(retry)

	taxRates := appintegration.NewTaxRateService(platform, vatRateRepo, log)
	taxRates.SetRetryPolicy(retry)

	coordinator := appintegration.NewSyncCoordinator(catalogSync, orderSync, locker, cfg.Sync.Timeout, log)
	if meterProvider.IsEnabled() {
		syncMetrics, err := telemetry.NewSyncMetrics(meterProvider.Meter("storesync/sync"))
		if err != nil {
			log.Warn("Sync metrics disabled", zap.Error(err))
		} else {
			coordinator.SetMetrics(syncMetrics)
		}
	}

	// Scheduler
	var (
		syncScheduler *scheduler.SyncScheduler
		trigger       *scheduler.IntervalTrigger
	)
	if cfg.Sync.SchedulerEnabled {
		syncScheduler, trigger = startScheduler(ctx, cfg, coordinator, log)
	}

	// HTTP
	engine := router.NewEngine(router.EngineConfig{
		Logger:         log,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		Meter:          httpMeter(meterProvider),
		CORS:           corsConfig(cfg),
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		RateLimiter:    rateLimiter(cfg),
		Swagger:        cfg.HTTP.SwaggerEnabled,
	})

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to access database handle", zap.Error(err))
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, sqlDB)
	engine.GET("/health", systemHandler.Health)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(router.NewSyncGroup(handler.NewSyncHandler(coordinator, ledgerService, settingsService, taxRates))).
		Register(router.NewSystemGroup(systemHandler)).
		Setup()

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

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if trigger != nil {
		if err := trigger.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping sync trigger", zap.Error(err))
		}
	}
	if syncScheduler != nil {
		if err := syncScheduler.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping sync scheduler", zap.Error(err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Logger provider shutdown error", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newSyncLocker uses redis when a host is configured so several instances
// share one lock per kind. Otherwise locks are process-local.
func newSyncLocker(ctx context.Context, cfg *config.Config, log *zap.Logger) (appintegration.SyncLocker, func()) {
	if cfg.Redis.Host == "" {
		log.Info("Redis not configured, using in-process sync locks")
		return appintegration.NewLocalSyncLocker(), func() {}
	}

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	log.Info("Redis sync locks enabled", zap.String("addr", cfg.Redis.Addr()))
	return cache.NewRedisSyncLocker(client, cfg.Sync.LockTTL, log), func() {
		if err := client.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}
}

func startScheduler(
	ctx context.Context,
	cfg *config.Config,
	coordinator *appintegration.SyncCoordinator,
	log *zap.Logger,
) (*scheduler.SyncScheduler, *scheduler.IntervalTrigger) {
	var actor *uuid.UUID
	if cfg.Sync.SystemActorID != "" {
		id, err := uuid.Parse(cfg.Sync.SystemActorID)
		if err != nil {
			log.Fatal("Invalid sync.system_actor_id", zap.Error(err))
		}
		actor = &id
	}

	schedCfg := scheduler.DefaultSyncSchedulerConfig()
	schedCfg.MaxConcurrentJobs = cfg.Sync.MaxConcurrentJobs
	schedCfg.RetryAttempts = cfg.Sync.JobRetryAttempts
	schedCfg.RetryDelay = cfg.Sync.JobRetryDelay
	if cfg.Sync.Timeout > 0 {
		// leaves room for the pass to record its ledger entries after the deadline
		schedCfg.JobTimeout = cfg.Sync.Timeout + time.Minute
	}

	executor := scheduler.NewRunnerExecutor(coordinator, actor, log)
	syncScheduler, err := scheduler.NewSyncScheduler(schedCfg, executor, log)
	if err != nil {
		log.Fatal("Invalid sync scheduler configuration", zap.Error(err))
	}
	if err := syncScheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start sync scheduler", zap.Error(err))
	}

	triggerCfg := scheduler.DefaultIntervalTriggerConfig()
	triggerCfg.Intervals = map[integration.SyncKind]time.Duration{
		integration.SyncKindCategories: cfg.Sync.CategoryInterval,
		integration.SyncKindProducts:   cfg.Sync.ProductInterval,
		integration.SyncKindOrders:     cfg.Sync.OrderInterval,
	}
	trigger := scheduler.NewIntervalTrigger(triggerCfg, syncScheduler, log)
	if err := trigger.Start(ctx); err != nil {
		log.Fatal("Failed to start sync trigger", zap.Error(err))
	}
	return syncScheduler, trigger
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.AllowOrigins
	return cors
}

func rateLimiter(cfg *config.Config) *middleware.RateLimiter {
	if cfg.HTTP.RateLimitRequests <= 0 {
		return nil
	}
	return middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
}

func httpMeter(mp *telemetry.MeterProvider) metric.Meter {
	if !mp.IsEnabled() {
		return nil
	}
	return mp.Meter("storesync/http")
}
