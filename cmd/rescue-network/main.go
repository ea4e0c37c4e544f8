package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/mr1hm/go-rescue-network/internal/api"
	"github.com/mr1hm/go-rescue-network/internal/config"
	"github.com/mr1hm/go-rescue-network/internal/fixtures"
	internalgrpc "github.com/mr1hm/go-rescue-network/internal/grpc"
	"github.com/mr1hm/go-rescue-network/internal/ingestion"
	"github.com/mr1hm/go-rescue-network/internal/logging"
	"github.com/mr1hm/go-rescue-network/internal/repository"
	"github.com/mr1hm/go-rescue-network/internal/rescue"
	"github.com/mr1hm/go-rescue-network/internal/routing"
)

func loadSeed(cfg *config.Config) (*fixtures.Seed, error) {
	now := time.Now()
	if cfg.Fixtures.Path != "" {
		return fixtures.LoadFile(cfg.Fixtures.Path, now)
	}
	return fixtures.Default(now)
}

// newRouteCache prefers Redis when configured and reachable.
func newRouteCache(ctx context.Context, cfg *config.Config) (routing.Cache, func()) {
	if cfg.Redis.Addr == "" {
		return routing.NewMemoryCache(cfg.Routing.CacheTTL), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Warn("redis unreachable, using in-memory route cache", "addr", cfg.Redis.Addr, "error", err)
		_ = client.Close()
		return routing.NewMemoryCache(cfg.Routing.CacheTTL), func() {}
	}

	slog.Info("using redis route cache", "addr", cfg.Redis.Addr)
	return routing.NewRedisCache(client, cfg.Routing.CacheTTL), func() { _ = client.Close() }
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	seed, err := loadSeed(cfg)
	if err != nil {
		logging.Fatalf("Failed to load fixtures: %v", err)
	}

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache, closeCache := newRouteCache(ctx, cfg)
	defer closeCache()
	router := routing.NewCachedRouter(routing.NewOSRMClient(cfg.Routing.OSRMURL, cfg.Routing.Timeout), cache)

	// Fan crisis events out to SSE subscribers
	broadcaster := internalgrpc.NewBroadcaster()

	network, err := rescue.NewNetwork(seed, rescue.WithPublisher(broadcaster))
	if err != nil {
		logging.Fatalf("Failed to initialize network: %v", err)
	}
	dispatcher := rescue.NewDispatcher(db, router)

	// Start ingestion manager
	mgr := ingestion.NewManager(cfg, network)
	mgr.Start(ctx)

	var grpcServer *internalgrpc.Server
	if cfg.GRPC.Enabled {
		grpcServer = internalgrpc.NewServer()
		go func() {
			grpcAddr := fmt.Sprintf(":%d", cfg.GRPC.Port)
			if err := grpcServer.Start(grpcAddr); err != nil {
				logging.Fatalf("gRPC server error: %v", err)
			}
		}()
	}

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	engine.Use(api.RateLimitMiddleware(cfg.Server.RateLimitRPS))

	handler := api.NewHandler(network, dispatcher, router, broadcaster, db)
	handler.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	if grpcServer != nil {
		grpcServer.SetServing(false)
	}

	cancel()
	mgr.Stop()
	broadcaster.Close() // ends open SSE streams
	if grpcServer != nil {
		grpcServer.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
