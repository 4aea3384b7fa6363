package agent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const agentsSchema = `
CREATE TABLE IF NOT EXISTS agents (
	name            TEXT PRIMARY KEY,
	description     TEXT NOT NULL,
	instruction     TEXT NOT NULL,
	model           TEXT NOT NULL,
	thinking_budget INTEGER NOT NULL,
	created_at      TIMESTAMP NOT NULL,
	updated_at      TIMESTAMP NOT NULL
);
`

// SQLiteConfigStore persists agent records in a SQLite database.
type SQLiteConfigStore struct {
	db      *sql.DB
	ownsDB  bool
}

var _ ConfigStore = (*SQLiteConfigStore)(nil)

// NewSQLiteConfigStore opens (or creates) the database at path and prepares
// the agents table.
func NewSQLiteConfigStore(path string) (*SQLiteConfigStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	s, err := NewSQLiteConfigStoreFromDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

// NewSQLiteConfigStoreFromDB wraps an existing database handle. The caller
// retains ownership of the handle.
func NewSQLiteConfigStoreFromDB(db *sql.DB) (*SQLiteConfigStore, error) {
	if _, err := db.Exec(agentsSchema); err != nil {
		return nil, fmt.Errorf("create agents table: %w", err)
	}
	return &SQLiteConfigStore{db: db}, nil
}

// Get implements ConfigStore.
func (s *SQLiteConfigStore) Get(ctx context.Context, name string) (*Agent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, description, instruction, model, thinking_budget, created_at, updated_at
		FROM agents WHERE name = ?`, name)

	var a Agent
	err := row.Scan(&a.Name, &a.Description, &a.Instruction, &a.Model, &a.ThinkingBudget, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load agent %q: %w", name, err)
	}
	return &a, nil
}

// Put implements ConfigStore.
func (s *SQLiteConfigStore) Put(ctx context.Context, a *Agent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agents (name, description, instruction, model, thinking_budget, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description     = excluded.description,
			instruction     = excluded.instruction,
			model           = excluded.model,
			thinking_budget = excluded.thinking_budget,
			updated_at      = excluded.updated_at`,
		a.Name, a.Description, a.Instruction, a.Model, a.ThinkingBudget, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store agent %q: %w", a.Name, err)
	}
	return nil
}

// Close releases the database handle if this store opened it.
func (s *SQLiteConfigStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}
