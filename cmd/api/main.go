package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/inventory-backend/api/controllers"
	"github.com/angelmondragon/inventory-backend/api/routes"
	"github.com/angelmondragon/inventory-backend/internal/auth"
	"github.com/angelmondragon/inventory-backend/internal/items"
	"github.com/angelmondragon/inventory-backend/internal/users"
	"github.com/angelmondragon/inventory-backend/pkg/auth/session"
	"github.com/angelmondragon/inventory-backend/pkg/cache"
	"github.com/angelmondragon/inventory-backend/pkg/config"
	"github.com/angelmondragon/inventory-backend/pkg/db"
	"github.com/angelmondragon/inventory-backend/pkg/logger"
	"github.com/angelmondragon/inventory-backend/pkg/metrics"
	"github.com/angelmondragon/inventory-backend/pkg/migrate"
	"github.com/angelmondragon/inventory-backend/pkg/redis"
	"github.com/angelmondragon/inventory-backend/pkg/security"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(ctx, logg, "session manager", err)

	itemCache, err := newItemCache(cfg.Cache, redisClient)
	requireResource(ctx, logg, "item cache", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	itemService, err := items.NewService(items.ServiceParams{
		Repo:    items.NewRepository(dbClient.DB()),
		Cache:   itemCache,
		TTL:     cfg.Cache.TTL,
		Logger:  logg,
		Metrics: metrics.NewCacheMetrics(registry),
	})
	requireResource(ctx, logg, "item service", err)

	hasher := security.NewHasher(cfg.Password)
	userRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		Passwords:      hasher,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	requireResource(ctx, logg, "auth service", err)

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		UserRepo: userRepo,
		Hasher:   hasher,
	})
	requireResource(ctx, logg, "register service", err)

	readiness := map[string]controllers.Pinger{
		"db":    dbClient,
		"redis": redisClient,
	}
	if !strings.EqualFold(cfg.Cache.Driver, config.CacheDriverRedis) {
		readiness["cache"] = itemCache
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"cache_driver": cfg.Cache.Driver,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:      cfg,
			Logger:      logg,
			Gatherer:    registry,
			HTTPMetrics: metrics.NewHTTPMetrics(registry),
			Readiness:   readiness,
			Idempotency: redisClient,
			Items:       itemService,
			Auth:        authService,
			Register:    registerService,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func newItemCache(cfg config.CacheConfig, redisClient *redis.Client) (cache.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case config.CacheDriverRedis:
		return cache.NewRedisStore(redisClient), nil
	case config.CacheDriverMemcache:
		return cache.NewMemcacheStore(cfg.MemcacheServers, cfg.MemcacheTimeout)
	case config.CacheDriverMemory:
		return cache.NewMemoryStore(cfg.MemoryMaxEntries)
	}
	return nil, fmt.Errorf("unsupported cache driver %q", cfg.Driver)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
