package localstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres opens dsn with the pgx driver and checks the connection.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS client_local_state (
  client_id TEXT PRIMARY KEY,
  state JSONB NOT NULL DEFAULT '{}'::jsonb,
  updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Load(ctx context.Context, clientID string) (State, error) {
	id, err := normalizeClientID(clientID)
	if err != nil {
		return State{}, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return State{}, err
	}
	var raw []byte
	err = s.db.QueryRowContext(ctx, `SELECT state FROM client_local_state WHERE client_id = $1`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return State{}, nil
	}
	if err != nil {
		return State{}, err
	}
	return decode(raw)
}

func (s *PostgresStore) Save(ctx context.Context, clientID string, st State) error {
	id, err := normalizeClientID(clientID)
	if err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	raw, err := encode(st)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO client_local_state (client_id, state, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (client_id)
DO UPDATE SET state = EXCLUDED.state, updated_at = NOW()`, id, raw)
	return err
}
