package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jackster042/live-score/internal/domain"
)

const commentaryColumns = "id, match_id, minute, sequence, period, event_type, actor, team, message, metadata, tags, created_at"

// CommentaryRepo implements domain.CommentaryRepository on Postgres.
type CommentaryRepo struct {
	pool *pgxpool.Pool
}

func NewCommentaryRepo(pool *pgxpool.Pool) *CommentaryRepo {
	return &CommentaryRepo{pool: pool}
}

func scanCommentary(row pgx.Row) (*domain.Commentary, error) {
	var c domain.Commentary
	var actor, team *string
	err := row.Scan(&c.ID, &c.MatchID, &c.Minute, &c.Sequence, &c.Period,
		&c.EventType, &actor, &team, &c.Message, &c.Metadata, &c.Tags, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if actor != nil {
		c.Actor = *actor
	}
	if team != nil {
		c.Team = *team
	}
	return &c, nil
}

func (r *CommentaryRepo) Create(ctx context.Context, nc domain.NewCommentary) (*domain.Commentary, error) {
	var metadata any
	if len(nc.Metadata) > 0 {
		metadata = nc.Metadata
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO commentary (match_id, minute, sequence, period, event_type, actor, team, message, metadata, tags)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10)
		RETURNING `+commentaryColumns,
		nc.MatchID, nc.Minute, nc.Sequence, nc.Period, nc.EventType,
		nc.Actor, nc.Team, nc.Message, metadata, nc.Tags)

	c, err := scanCommentary(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create commentary for match %d: %w", nc.MatchID, err)
	}
	return c, nil
}

func (r *CommentaryRepo) ListByMatch(ctx context.Context, matchID int64, limit int) ([]domain.Commentary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+commentaryColumns+` FROM commentary
		WHERE match_id = $1
		ORDER BY period DESC, minute DESC, sequence DESC
		LIMIT $2`,
		matchID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list commentary for match %d: %w", matchID, err)
	}
	defer rows.Close()

	var entries []domain.Commentary
	for rows.Next() {
		c, err := scanCommentary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commentary row: %w", err)
		}
		entries = append(entries, *c)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to read commentary rows: %w", err)
	}
	return entries, nil
}
