package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jackster042/live-score/internal/domain"
)

const matchColumns = "id, sport, home_team, away_team, status, start_time, end_time, home_score, away_score, created_at"

// MatchRepo implements domain.MatchRepository on Postgres.
type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var m domain.Match
	err := row.Scan(&m.ID, &m.Sport, &m.HomeTeam, &m.AwayTeam, &m.Status,
		&m.StartTime, &m.EndTime, &m.HomeScore, &m.AwayScore, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MatchRepo) Create(ctx context.Context, nm domain.NewMatch) (*domain.Match, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO matches (sport, home_team, away_team, status, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+matchColumns,
		nm.Sport, nm.HomeTeam, nm.AwayTeam, nm.Status, nm.StartTime, nm.EndTime)

	m, err := scanMatch(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return m, nil
}

func (r *MatchRepo) GetByID(ctx context.Context, id int64) (*domain.Match, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)

	m, err := scanMatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return m, nil
}

// UpdateStatusFrom is the guarded, conditional status update: the row
// only changes if its status still equals from. When the guard fails the
// caller can distinguish a vanished match from a concurrent transition.
func (r *MatchRepo) UpdateStatusFrom(ctx context.Context, id int64, from, to domain.MatchStatus) (*domain.Match, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE matches SET status = $1
		WHERE id = $2 AND status = $3
		RETURNING `+matchColumns,
		to, id, from)

	m, err := scanMatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, domain.ErrStatusConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update status of match %d: %w", id, err)
	}
	return m, nil
}

func (r *MatchRepo) UpdateScore(ctx context.Context, id int64, homeScore, awayScore int) (*domain.Match, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE matches SET home_score = $1, away_score = $2
		WHERE id = $3
		RETURNING `+matchColumns,
		homeScore, awayScore, id)

	m, err := scanMatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update score of match %d: %w", id, err)
	}
	return m, nil
}

func (r *MatchRepo) UpdateTimes(ctx context.Context, id int64, startTime, endTime time.Time) (*domain.Match, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE matches SET start_time = $1, end_time = $2
		WHERE id = $3
		RETURNING `+matchColumns,
		startTime, endTime, id)

	m, err := scanMatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update times of match %d: %w", id, err)
	}
	return m, nil
}

func (r *MatchRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMatchNotFound
	}
	return nil
}
