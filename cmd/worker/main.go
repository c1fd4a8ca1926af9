package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/Jackster042/live-score/internal/config"
	"github.com/Jackster042/live-score/internal/coordination"
	"github.com/Jackster042/live-score/internal/database"
	"github.com/Jackster042/live-score/internal/logging"
	"github.com/Jackster042/live-score/internal/redis"
	"github.com/Jackster042/live-score/internal/scheduler"
)

// The worker binary runs the transition scheduler without any HTTP or
// WebSocket surface. It can be scaled independently of the gateways;
// the atomic claim in the job queue keeps concurrent workers from
// double-firing a job.
func main() {
	clock := clockwork.NewRealClock()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Worker starting", "env", cfg.AppEnv, "instance", cfg.InstanceID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := database.Connect(connectCtx, cfg.DatabaseURL)
	connectCancel()
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer func() { _ = redisClient.Close() }()

	bus := redis.NewBus(redisClient)
	queue := redis.NewJobQueue(redisClient, clock)
	matchRepo := database.NewMatchRepo(pool)

	publisher := scheduler.NewBusPublisher(bus, cfg.InstanceID)
	processor := scheduler.NewProcessor(matchRepo, publisher, clock)
	worker := scheduler.NewWorker(queue, processor, clock)

	instances := coordination.NewInstanceRegistry(redisClient.Underlying(), cfg.InstanceID, "worker", clock)
	go instances.Start(ctx)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		slog.Info("Shutdown signal received")
		cancel()
	}()

	worker.Run(ctx)
}
