package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists contexts in Postgres so sessions survive restarts and
// multiple replicas share state.
//
// Expected schema:
//
//	CREATE TABLE sessions (
//	    session_id text PRIMARY KEY,
//	    context    jsonb NOT NULL,
//	    updated_at timestamptz NOT NULL DEFAULT now()
//	);
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Close() {
	s.pool.Close()
}

func (s *PGStore) Get(ctx context.Context, sessionID string) (*Context, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT context FROM sessions WHERE session_id = $1`, sessionID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}

	var conv Context
	if err := json.Unmarshal(raw, &conv); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &conv, nil
}

func (s *PGStore) Put(ctx context.Context, conv *Context) error {
	raw, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO sessions (session_id, context, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (session_id) DO UPDATE SET context = $2, updated_at = now()`,
		conv.SessionID, raw,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *PGStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}
