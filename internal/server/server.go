package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Jackster042/live-score/internal/config"
	"github.com/Jackster042/live-score/internal/coordination"
	"github.com/Jackster042/live-score/internal/domain"
	"github.com/Jackster042/live-score/internal/gateway"
	"github.com/Jackster042/live-score/internal/scheduler"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	hub       *gateway.Hub
	planner   *scheduler.Planner
	matches   domain.MatchRepository
	comments  domain.CommentaryRepository
	queue     domain.JobQueue
	admission domain.AdmissionController
	instances *coordination.InstanceRegistry

	pool        *pgxpool.Pool
	redisClient *goredis.Client
	startTime   time.Time
}

func NewServer(
	cfg *config.Config,
	hub *gateway.Hub,
	planner *scheduler.Planner,
	matches domain.MatchRepository,
	comments domain.CommentaryRepository,
	queue domain.JobQueue,
	admission domain.AdmissionController,
	instances *coordination.InstanceRegistry,
	pool *pgxpool.Pool,
	redisClient *goredis.Client,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())

	srv := &Server{
		echo:        e,
		config:      cfg,
		hub:         hub,
		planner:     planner,
		matches:     matches,
		comments:    comments,
		queue:       queue,
		admission:   admission,
		instances:   instances,
		pool:        pool,
		redisClient: redisClient,
		startTime:   time.Now(),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port, "instance", s.config.InstanceID)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
