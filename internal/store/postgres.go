package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a durable ScoreStore backed by PostgreSQL.
//
// Schema:
//
//	CREATE TABLE vault_threat_scores (
//	    vault_id   UUID PRIMARY KEY,
//	    score      DOUBLE PRECISION NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgres creates a PostgresStore on the given pool.
func NewPostgres(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetThreatScore implements ScoreStore. A vault without a row reads as 0.
func (s *PostgresStore) GetThreatScore(ctx context.Context, vaultID uuid.UUID) (float64, error) {
	var score float64
	err := s.db.QueryRow(ctx,
		`SELECT score FROM vault_threat_scores WHERE vault_id = $1`, vaultID,
	).Scan(&score)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: get threat score: %v", ErrUnavailable, err)
	}
	return score, nil
}

// PutThreatScore implements ScoreStore.
func (s *PostgresStore) PutThreatScore(ctx context.Context, vaultID uuid.UUID, score float64) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO vault_threat_scores (vault_id, score, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (vault_id) DO UPDATE SET score = $2, updated_at = now()`,
		vaultID, score,
	)
	if err != nil {
		return fmt.Errorf("%w: put threat score: %v", ErrUnavailable, err)
	}
	return nil
}
