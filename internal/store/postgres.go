package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parley-dm/parley/internal/domain"
)

// PostgresStore persists sessions as JSONB documents.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the sessions table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS dialogue_sessions (
			id         TEXT PRIMARY KEY,
			agent_id   TEXT NOT NULL,
			state      JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("create dialogue_sessions: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, sess *domain.Session) error {
	data, err := domain.EncodeState(sess.State)
	if err != nil {
		return err
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO dialogue_sessions (id, agent_id, state)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id)
		 DO UPDATE SET agent_id = EXCLUDED.agent_id,
		               state = EXCLUDED.state,
		               updated_at = NOW()
		 RETURNING created_at, updated_at`,
		sess.ID, sess.AgentID, data,
	).Scan(&sess.CreatedAt, &sess.UpdatedAt)
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	var (
		sess domain.Session
		raw  []byte
	)
	err := s.db.QueryRow(ctx,
		`SELECT id, agent_id, state, created_at, updated_at
		 FROM dialogue_sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.AgentID, &raw, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	state, err := domain.DecodeState(raw)
	if err != nil {
		return nil, err
	}
	sess.State = state
	return &sess, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]domain.SessionInfo, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, agent_id, updated_at FROM dialogue_sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []domain.SessionInfo
	for rows.Next() {
		var info domain.SessionInfo
		if err := rows.Scan(&info.ID, &info.AgentID, &info.UpdatedAt); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM dialogue_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	tag, err := s.db.Exec(ctx,
		`DELETE FROM dialogue_sessions WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
