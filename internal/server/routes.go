package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Match lifecycle
	s.echo.POST("/api/matches", s.handleCreateMatch)
	s.echo.GET("/api/matches/:id", s.handleGetMatch)
	s.echo.PATCH("/api/matches/:id/score", s.handleUpdateScore)
	s.echo.PATCH("/api/matches/:id/times", s.handleUpdateTimes)
	s.echo.DELETE("/api/matches/:id", s.handleDeleteMatch)

	// Commentary timeline
	s.echo.POST("/api/matches/:id/commentary", s.handleCreateCommentary)
	s.echo.GET("/api/matches/:id/commentary", s.handleListCommentary)

	// Operator views
	s.echo.GET("/api/jobs/failed", s.handleFailedJobs)
	s.echo.GET("/api/instances", s.handleInstances)

	// WebSocket endpoint (admission-gated before the handshake)
	s.echo.GET("/ws", s.handleWebSocket)
}
