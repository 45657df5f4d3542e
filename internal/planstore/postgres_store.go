package planstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const plansSchema = `
CREATE TABLE IF NOT EXISTS document_plans (
	plan_id    TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore persists plans as JSONB rows. The table is created on
// first use.
type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("planstore: open postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		if _, err := s.db.ExecContext(ctx, plansSchema); err != nil {
			s.schemaErr = fmt.Errorf("planstore: ensure schema: %w", err)
		}
	})
	return s.schemaErr
}

func (s *PostgresStore) Put(ctx context.Context, planID string, data []byte) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO document_plans (plan_id, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (plan_id) DO UPDATE SET data = $2, updated_at = now()`,
		planID, data)
	if err != nil {
		return fmt.Errorf("planstore: put %s: %w", planID, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, planID string) ([]byte, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM document_plans WHERE plan_id = $1`, planID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("planstore: get %s: %w", planID, err)
	}
	return data, nil
}

func (s *PostgresStore) List(ctx context.Context) ([][]byte, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM document_plans ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("planstore: list: %w", err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("planstore: list scan: %w", err)
		}
		out = append(out, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("planstore: list rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
