package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/Jackster042/live-score/internal/admission"
	"github.com/Jackster042/live-score/internal/config"
	"github.com/Jackster042/live-score/internal/coordination"
	"github.com/Jackster042/live-score/internal/database"
	"github.com/Jackster042/live-score/internal/gateway"
	"github.com/Jackster042/live-score/internal/logging"
	"github.com/Jackster042/live-score/internal/redis"
	"github.com/Jackster042/live-score/internal/scheduler"
	"github.com/Jackster042/live-score/internal/server"
)

func setupConfig() *config.Config {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server, hub *gateway.Hub, cancel context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		hub.Stop()
		cancel()
		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "instance", cfg.InstanceID)

	pool := setupDB(cfg)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := setupRedis(ctx, cfg)
	defer func() { _ = redisClient.Close() }()

	bus := redis.NewBus(redisClient)
	queue := redis.NewJobQueue(redisClient, clock)

	matchRepo := database.NewMatchRepo(pool)
	commentaryRepo := database.NewCommentaryRepo(pool)

	hub := gateway.NewHub(bus, cfg.InstanceID, clock)
	if err := hub.StartRelay(ctx); err != nil {
		slog.Error("Failed to start bus relay", "error", err)
		os.Exit(1)
	}

	planner := scheduler.NewPlanner(queue, clock)
	admissionCtrl := admission.New(cfg.WSRateLimit, cfg.WSRateWindow, cfg.BlockedUserAgents)

	instances := coordination.NewInstanceRegistry(redisClient.Underlying(), cfg.InstanceID, "gateway", clock)
	go instances.Start(ctx)

	srv := server.NewServer(cfg, hub, planner, matchRepo, commentaryRepo, queue,
		admissionCtrl, instances, pool, redisClient.Underlying())

	done := runGracefulShutdown(srv, hub, cancel)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
