package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/openjwks/jwksd/internal/application"
	"github.com/openjwks/jwksd/internal/config"
	"github.com/openjwks/jwksd/internal/domain/service"
	"github.com/openjwks/jwksd/internal/infrastructure/audit"
	"github.com/openjwks/jwksd/internal/infrastructure/cache"
	"github.com/openjwks/jwksd/internal/infrastructure/crypto"
	"github.com/openjwks/jwksd/internal/infrastructure/monitoring"
	"github.com/openjwks/jwksd/internal/infrastructure/persistence/postgres"
	"github.com/openjwks/jwksd/internal/interfaces/http/handlers"
	"github.com/openjwks/jwksd/internal/interfaces/http/router"
)

func main() {
	startupLogger, _ := monitoring.NewZapLogger(&config.LogConfig{Level: "info"})

	cfg, err := config.Load(startupLogger)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracing, err := monitoring.NewTracingManager(&cfg.Tracing, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to initialize tracing", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracing.Shutdown(shutdownCtx)
	}()

	db, err := postgres.NewDBConnection(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to connect to database", err)
	}

	var redisClient redis.UniversalClient
	var jwksCache service.JwksCache
	if cfg.Redis.Enabled() {
		redisClient = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    cfg.Redis.Addresses,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			appLogger.Fatal(ctx, "failed to connect to redis", err)
		}
		defer redisClient.Close()
		jwksCache = cache.NewRedisJwksCache(redisClient, cfg.Keys.JWKSCacheTTL, appLogger)
	} else {
		jwksCache = cache.NewMemoryJwksCache(cfg.Keys.JWKSCacheTTL)
	}

	var auditSink service.AuditService
	if cfg.Audit.Enabled() {
		auditSink = audit.NewKafkaProducer(cfg.Audit, appLogger)
	} else {
		auditSink = audit.NewLogSink(appLogger)
	}
	defer auditSink.Close()

	metrics := monitoring.NewMetrics()
	clock := service.NewRealClock()
	lifecycle := service.NewLifecycleManager()
	generator := crypto.NewGenerator(clock, appLogger)
	repo := postgres.NewKeyRepository(db)

	keyService := application.NewKeyService(
		repo, generator, lifecycle, clock, auditSink, jwksCache, metrics, appLogger,
		application.KeyServiceConfig{
			PrivateKeyTTL: cfg.Keys.PrivateKeyTTL,
			KeyTTL:        cfg.Keys.KeyTTL,
		},
	)

	sweeper := application.NewSweeper(
		repo, lifecycle, clock, auditSink, jwksCache, metrics, appLogger,
		application.SweeperConfig{
			Interval:               cfg.Keys.SweepInterval,
			AutoDeleteOnFullExpiry: cfg.Keys.AutoDeleteOnFullExpiry,
		},
	)

	keysHandler := handlers.NewKeysHandler(keyService, appLogger)
	jwksHandler := handlers.NewJwksHandler(keyService, appLogger)
	healthHandler := handlers.NewHealthHandler(db, redisClient, appLogger)

	r := router.NewRouter(cfg, appLogger, healthHandler, keysHandler, jwksHandler, metrics)
	r.SetupRoutes()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.Start()
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return r.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		appLogger.Error(context.Background(), "server exited with error", err)
	}
	appLogger.Info(context.Background(), "server stopped")
}
