package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/parley-dm/parley/internal/domain"
)

// SQLiteStore persists sessions in a single SQLite database file with
// WAL journaling.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the session database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS dialogue_sessions (
			id         TEXT PRIMARY KEY,
			agent_id   TEXT NOT NULL,
			state      TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Save(ctx context.Context, sess *domain.Session) error {
	data, err := domain.EncodeState(sess.State)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO dialogue_sessions (id, agent_id, state, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id)
		 DO UPDATE SET agent_id = excluded.agent_id,
		               state = excluded.state,
		               updated_at = excluded.updated_at`,
		sess.ID, sess.AgentID, string(data), now, now,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return s.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM dialogue_sessions WHERE id = ?`, sess.ID,
	).Scan(&sess.CreatedAt, &sess.UpdatedAt)
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	var (
		sess domain.Session
		raw  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, agent_id, state, created_at, updated_at
		 FROM dialogue_sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.AgentID, &raw, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	state, err := domain.DecodeState([]byte(raw))
	if err != nil {
		return nil, err
	}
	sess.State = state
	return &sess, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]domain.SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx,
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

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM dialogue_sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM dialogue_sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
