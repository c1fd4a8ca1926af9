package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Jackster042/live-score/internal/domain"
)

const (
	defaultCommentaryLimit = 50
	maxCommentaryLimit     = 500
)

func matchIDParam(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

// --- Match handlers ---

type createMatchRequest struct {
	Sport     string    `json:"sport"`
	HomeTeam  string    `json:"homeTeam"`
	AwayTeam  string    `json:"awayTeam"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

func (r createMatchRequest) validate() string {
	switch {
	case strings.TrimSpace(r.Sport) == "":
		return "sport is required"
	case strings.TrimSpace(r.HomeTeam) == "":
		return "homeTeam is required"
	case strings.TrimSpace(r.AwayTeam) == "":
		return "awayTeam is required"
	case r.StartTime.IsZero() || r.EndTime.IsZero():
		return "startTime and endTime are required"
	case !r.EndTime.After(r.StartTime):
		return "endTime must be after startTime"
	}
	return ""
}

func (s *Server) handleCreateMatch(c echo.Context) error {
	var req createMatchRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, 400, "Invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return errorJSON(c, 400, msg)
	}

	ctx := c.Request().Context()

	match, err := s.matches.Create(ctx, domain.NewMatch{
		Sport:     req.Sport,
		HomeTeam:  req.HomeTeam,
		AwayTeam:  req.AwayTeam,
		Status:    s.planner.DeriveInitialStatus(req.StartTime, req.EndTime),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		slog.Error("Failed to create match", "error", err)
		return errorJSON(c, 500, "Failed to create match")
	}

	if err := s.planner.PlanMatch(ctx, match); err != nil {
		slog.Error("Failed to schedule transitions", "matchId", match.ID, "error", err)
		return errorJSON(c, 500, "Match created but transitions could not be scheduled")
	}

	s.hub.BroadcastMatchCreated(ctx, match)
	return c.JSON(201, match)
}

func (s *Server) handleGetMatch(c echo.Context) error {
	id, ok := matchIDParam(c)
	if !ok {
		return errorJSON(c, 400, "Invalid match id")
	}

	match, err := s.matches.GetByID(c.Request().Context(), id)
	if errors.Is(err, domain.ErrMatchNotFound) {
		return errorJSON(c, 404, "Match not found")
	}
	if err != nil {
		slog.Error("Failed to load match", "matchId", id, "error", err)
		return errorJSON(c, 500, "Failed to load match")
	}
	return c.JSON(200, match)
}

type updateScoreRequest struct {
	HomeScore int `json:"homeScore"`
	AwayScore int `json:"awayScore"`
}

func (s *Server) handleUpdateScore(c echo.Context) error {
	id, ok := matchIDParam(c)
	if !ok {
		return errorJSON(c, 400, "Invalid match id")
	}

	var req updateScoreRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, 400, "Invalid request body")
	}
	if req.HomeScore < 0 || req.AwayScore < 0 {
		return errorJSON(c, 400, "Scores must not be negative")
	}

	ctx := c.Request().Context()
	match, err := s.matches.UpdateScore(ctx, id, req.HomeScore, req.AwayScore)
	if errors.Is(err, domain.ErrMatchNotFound) {
		return errorJSON(c, 404, "Match not found")
	}
	if err != nil {
		slog.Error("Failed to update score", "matchId", id, "error", err)
		return errorJSON(c, 500, "Failed to update score")
	}

	s.hub.BroadcastScoreUpdated(ctx, match)
	return c.JSON(200, match)
}

type updateTimesRequest struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

func (s *Server) handleUpdateTimes(c echo.Context) error {
	id, ok := matchIDParam(c)
	if !ok {
		return errorJSON(c, 400, "Invalid match id")
	}

	var req updateTimesRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, 400, "Invalid request body")
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return errorJSON(c, 400, "startTime and endTime are required")
	}
	if !req.EndTime.After(req.StartTime) {
		return errorJSON(c, 400, "endTime must be after startTime")
	}

	ctx := c.Request().Context()
	match, err := s.matches.UpdateTimes(ctx, id, req.StartTime, req.EndTime)
	if errors.Is(err, domain.ErrMatchNotFound) {
		return errorJSON(c, 404, "Match not found")
	}
	if err != nil {
		slog.Error("Failed to update times", "matchId", id, "error", err)
		return errorJSON(c, 500, "Failed to update times")
	}

	if err := s.planner.ReplanMatch(ctx, match); err != nil {
		slog.Error("Failed to re-schedule transitions", "matchId", id, "error", err)
		return errorJSON(c, 500, "Times updated but transitions could not be re-scheduled")
	}
	return c.JSON(200, match)
}

func (s *Server) handleDeleteMatch(c echo.Context) error {
	id, ok := matchIDParam(c)
	if !ok {
		return errorJSON(c, 400, "Invalid match id")
	}

	ctx := c.Request().Context()
	err := s.matches.Delete(ctx, id)
	if errors.Is(err, domain.ErrMatchNotFound) {
		return errorJSON(c, 404, "Match not found")
	}
	if err != nil {
		slog.Error("Failed to delete match", "matchId", id, "error", err)
		return errorJSON(c, 500, "Failed to delete match")
	}

	if err := s.planner.CancelMatch(ctx, id); err != nil {
		slog.Error("Failed to cancel transitions for deleted match", "matchId", id, "error", err)
	}
	return c.NoContent(204)
}

// --- Commentary handlers ---

type createCommentaryRequest struct {
	Minute    int             `json:"minute"`
	Sequence  int             `json:"sequence"`
	Period    int             `json:"period"`
	EventType string          `json:"eventType"`
	Actor     string          `json:"actor"`
	Team      string          `json:"team"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata"`
	Tags      []string        `json:"tags"`
}

func (s *Server) handleCreateCommentary(c echo.Context) error {
	id, ok := matchIDParam(c)
	if !ok {
		return errorJSON(c, 400, "Invalid match id")
	}

	var req createCommentaryRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, 400, "Invalid request body")
	}
	if strings.TrimSpace(req.EventType) == "" {
		return errorJSON(c, 400, "eventType is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return errorJSON(c, 400, "message is required")
	}
	if req.Minute < 0 || req.Period < 0 || req.Sequence < 0 {
		return errorJSON(c, 400, "minute, period and sequence must not be negative")
	}

	ctx := c.Request().Context()
	if _, err := s.matches.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrMatchNotFound) {
			return errorJSON(c, 404, "Match not found")
		}
		slog.Error("Failed to load match", "matchId", id, "error", err)
		return errorJSON(c, 500, "Failed to load match")
	}

	comment, err := s.comments.Create(ctx, domain.NewCommentary{
		MatchID:   id,
		Minute:    req.Minute,
		Sequence:  req.Sequence,
		Period:    req.Period,
		EventType: req.EventType,
		Actor:     req.Actor,
		Team:      req.Team,
		Message:   req.Message,
		Metadata:  req.Metadata,
		Tags:      req.Tags,
	})
	if err != nil {
		slog.Error("Failed to create commentary", "matchId", id, "error", err)
		return errorJSON(c, 500, "Failed to create commentary")
	}

	s.hub.BroadcastCommentary(ctx, comment)
	return c.JSON(201, comment)
}

func (s *Server) handleListCommentary(c echo.Context) error {
	id, ok := matchIDParam(c)
	if !ok {
		return errorJSON(c, 400, "Invalid match id")
	}

	limit := defaultCommentaryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxCommentaryLimit {
			return errorJSON(c, 400, "limit must be between 1 and 500")
		}
		limit = parsed
	}

	entries, err := s.comments.ListByMatch(c.Request().Context(), id, limit)
	if err != nil {
		slog.Error("Failed to list commentary", "matchId", id, "error", err)
		return errorJSON(c, 500, "Failed to list commentary")
	}
	return c.JSON(200, entries)
}

// --- Operator handlers ---

func (s *Server) handleFailedJobs(c echo.Context) error {
	jobs, err := s.queue.Failed(c.Request().Context())
	if err != nil {
		slog.Error("Failed to list failed jobs", "error", err)
		return errorJSON(c, 500, "Failed to list failed jobs")
	}
	return c.JSON(200, map[string]any{"count": len(jobs), "jobs": jobs})
}

func (s *Server) handleInstances(c echo.Context) error {
	infos, err := s.instances.ActiveInstances(c.Request().Context())
	if err != nil {
		slog.Error("Failed to list instances", "error", err)
		return errorJSON(c, 500, "Failed to list instances")
	}
	return c.JSON(200, map[string]any{"count": len(infos), "instances": infos})
}
