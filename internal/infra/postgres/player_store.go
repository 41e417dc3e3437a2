package postgres

import (
	"context"
	"errors"
	"fmt"

	"daily-trivia-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PlayerStore keeps one JSONB player record per row in player_records.
type PlayerStore struct {
	pool *pgxpool.Pool
}

func NewPlayerStore(pool *pgxpool.Pool) *PlayerStore {
	return &PlayerStore{pool: pool}
}

func (s *PlayerStore) Get(ctx context.Context, playerID string) ([]byte, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM player_records WHERE id=$1`, playerID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load player: %v", domain.ErrPersistence, err)
	}
	return raw, nil
}

func (s *PlayerStore) Put(ctx context.Context, playerID string, data []byte) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO player_records (id, data, updated_at) VALUES ($1, $2::jsonb, now())
ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`, playerID, string(data))
	if err != nil {
		return fmt.Errorf("%w: save player: %v", domain.ErrPersistence, err)
	}
	return nil
}
