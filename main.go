// Package main provides the main entry point for the SDR power queue service
//
// @title SDR Power Queue API
// @version 1.0
// @description Prioritized call queue, call logging and call blocks for sales development reps.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/sdr-power-queue/app/handlers"
	"github.com/amirphl/sdr-power-queue/app/middleware"
	"github.com/amirphl/sdr-power-queue/app/router"
	"github.com/amirphl/sdr-power-queue/app/scheduler"
	"github.com/amirphl/sdr-power-queue/app/services"
	businessflow "github.com/amirphl/sdr-power-queue/business_flow"
	"github.com/amirphl/sdr-power-queue/config"
	"github.com/amirphl/sdr-power-queue/models"
	"github.com/amirphl/sdr-power-queue/repository"
	"github.com/amirphl/sdr-power-queue/utils"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	tokens    services.TokenService
	stopFuncs []func()
}

func main() {
	issueFor := flag.String("issue-token", "", "print a bearer token for the given operator scope and exit")
	flag.Parse()

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	closeLog := initializeLogging(cfg.Logging)
	defer closeLog()

	if *issueFor != "" {
		tokens, err := initializeTokenService(cfg.JWT)
		if err != nil {
			log.Fatalf("Failed to initialize token service: %v", err)
		}
		token, err := tokens.GenerateToken(*issueFor)
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(token)
		return
	}

	log.Printf("Starting SDR power queue %s (%s)...", cfg.Deployment.Version, cfg.Deployment.Environment)

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.router.Start(cfg.Server.Address())
	}()

	select {
	case <-sigChan:
		log.Println("Shutting down gracefully...")
	case err := <-serverErr:
		if err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}

	// Stop background workers and subscriptions before the server so open streams end
	for i := len(app.stopFuncs) - 1; i >= 0; i-- {
		app.stopFuncs[i]()
	}

	done := make(chan error, 1)
	go func() { done <- app.router.Shutdown() }()
	select {
	case err := <-done:
		if err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case <-time.After(cfg.Server.ShutdownTimeout):
		log.Printf("Shutdown timed out after %s", cfg.Server.ShutdownTimeout)
	}

	log.Println("Server stopped")
}

// initializeLogging routes the standard logger to stdout, a rotated file, or both
func initializeLogging(cfg config.LoggingConfig) func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.LUTC)
	if cfg.Output == "stdout" {
		return func() {}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	var out io.Writer = rotator
	if cfg.Output == "both" {
		out = io.MultiWriter(os.Stdout, rotator)
	}
	log.SetOutput(out)
	return func() {
		_ = rotator.Close()
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{}
	if cfg.SlowQueryLog {
		gormCfg.Logger = gormlogger.New(log.Default(), gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&models.Contact{}, &models.CallLogEntry{}); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the redis client and verifies connectivity; nil when disabled
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor periodically pings redis so a lost change feed shows up in the logs
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

func initializeTokenService(cfg config.JWTConfig) (services.TokenService, error) {
	return services.NewTokenService(
		cfg.AccessTokenTTL,
		cfg.Issuer,
		cfg.Audience,
		cfg.UseRSAKeys,
		cfg.PrivateKey,
		cfg.PublicKey,
		cfg.SecretKey,
	)
}

// storeBundle is the repository set behind the flows
type storeBundle struct {
	contacts repository.ContactRepository
	logs     repository.CallLogRepository
	tx       repository.Transactor
	close    func()
}

// initializeStore opens the configured store; change notifications travel over redis when a client is given
func initializeStore(cfg *config.ProductionConfig, rc *redis.Client) (*storeBundle, error) {
	var feed repository.ChangeFeed = repository.NewLocalChangeFeed()
	if rc != nil {
		feed = repository.NewRedisChangeFeed(rc, cfg.Cache.RedisPrefix)
	}

	switch cfg.Store.Provider {
	case config.StoreProviderMemory:
		store := repository.NewMemoryStore(feed)
		log.Println("Using in-memory store; data is lost on restart")
		return &storeBundle{
			contacts: repository.NewMemoryContactRepository(store),
			logs:     repository.NewMemoryCallLogRepository(store),
			tx:       store,
			close:    func() {},
		}, nil
	case config.StoreProviderPostgres:
		db, err := initializeDatabase(cfg.Database)
		if err != nil {
			return nil, err
		}
		return &storeBundle{
			contacts: repository.NewContactRepository(db, feed),
			logs:     repository.NewCallLogRepository(db, feed),
			tx:       repository.NewGormTransactor(db),
			close: func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			},
		}, nil
	default:
		return nil, errors.New("unknown store provider " + cfg.Store.Provider)
	}
}

// queueSettings converts the configured window rules and buckets
func queueSettings(cfg config.QueueConfig) ([]businessflow.WindowRule, *businessflow.CallWindow, []businessflow.TimezoneBucket) {
	rules := make([]businessflow.WindowRule, 0, len(cfg.WindowRules))
	for _, r := range cfg.WindowRules {
		rules = append(rules, businessflow.WindowRule{
			Keyword: r.Keyword,
			Window:  businessflow.CallWindow{Start: r.Start, End: r.End},
		})
	}
	buckets := make([]businessflow.TimezoneBucket, 0, len(cfg.TimezoneBuckets))
	for _, b := range cfg.TimezoneBuckets {
		buckets = append(buckets, businessflow.TimezoneBucket{Label: b.Label, Match: b.Match})
	}
	return rules, &businessflow.CallWindow{Start: cfg.DefaultStart, End: cfg.DefaultEnd}, buckets
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		stopFuncs = append(stopFuncs, func() { _ = rc.Close() })
		stopFuncs = append(stopFuncs, startCacheHealthMonitor(context.Background(), rc, 30*time.Second))
	}

	store, err := initializeStore(cfg, rc)
	if err != nil {
		return nil, err
	}
	stopFuncs = append(stopFuncs, store.close)

	tokenService, err := initializeTokenService(cfg.JWT)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	flowLogger := log.New(log.Writer(), "dialer ", log.Flags())
	notifier := services.NewNotificationService(services.NewLogNotificationSink(flowLogger))

	clock := utils.SystemClock{}
	rules, defaultWindow, buckets := queueSettings(cfg.Queue)
	resolver := businessflow.NewWindowResolver(clock, rules, defaultWindow, buckets)
	ledger := businessflow.NewCallLedger(store.contacts, store.logs, store.tx, clock, flowLogger)
	contactFlow := businessflow.NewContactFlow(store.contacts, ledger, resolver, cfg.Queue.DefaultTimezone, cfg.Store.SeedSamples, flowLogger)
	dialerFlow := businessflow.NewDialerFlow(
		contactFlow,
		store.contacts,
		store.logs,
		ledger,
		resolver,
		businessflow.NewCallBlockRegistry(clock),
		notifier,
		flowLogger,
	)
	stopFuncs = append(stopFuncs, dialerFlow.Close)
	exportFlow := businessflow.NewExportFlow(store.contacts, store.logs, clock)

	appRouter := router.NewFiberRouter(
		router.Options{
			Version:        cfg.Deployment.Version,
			Environment:    cfg.Deployment.Environment,
			BodyLimit:      cfg.Server.BodyLimit,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			IdleTimeout:    cfg.Server.IdleTimeout,
			AllowedOrigins: cfg.Security.AllowedOrigins,
			RateLimit:      cfg.Security.GlobalRateLimit,
			RateWindow:     cfg.Security.RateLimitWindow,
			MetricsEnabled: cfg.Metrics.Enabled,
			MetricsPath:    cfg.Metrics.Path,
			DocsEnabled:    cfg.Server.EnableDocs,
		},
		router.Handlers{
			Contacts: handlers.NewContactHandler(dialerFlow),
			Queue:    handlers.NewQueueHandler(dialerFlow),
			Calls:    handlers.NewCallHandler(dialerFlow),
			Export:   handlers.NewExportHandler(exportFlow),
			Events:   handlers.NewEventsHandler(notifier),
		},
		middleware.NewAuthMiddleware(tokenService),
	)

	sched := scheduler.NewQueueScheduler(dialerFlow, notifier, flowLogger, cfg.Queue.RefreshInterval, cfg.Queue.BlockTick)
	stopFuncs = append(stopFuncs, sched.Start(context.Background()))

	return &Application{
		router:    appRouter,
		config:    cfg,
		tokens:    tokenService,
		stopFuncs: stopFuncs,
	}, nil
}
