package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aion-pfm/aion/core"
	_ "modernc.org/sqlite"
)

// SQLiteStore is a durable Store backed by a SQLite database. Each turn is
// persisted as a JSON document alongside its (agent, user) key; a monotonic
// rowid preserves append order across process restarts.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and initializes the
// schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// NewSQLiteStoreFromDB wraps an existing database handle, initializing the
// schema. Useful when several stores share one database file.
func NewSQLiteStoreFromDB(db *sql.DB) (*SQLiteStore, error) {
	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		agent_name TEXT NOT NULL,
		user_id TEXT NOT NULL,
		turn TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_agent_user ON turns(agent_name, user_id, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, agentName, userID string, turn core.Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO turns (id, agent_name, user_id, turn, created_at) VALUES (?, ?, ?, ?, ?)`,
		turn.ID, agentName, userID, string(data), turn.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return nil
}

// Replay implements Store.
func (s *SQLiteStore) Replay(ctx context.Context, agentName, userID string) ([]core.Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT turn FROM turns WHERE agent_name = ? AND user_id = ? ORDER BY seq`,
		agentName, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	turns := []core.Turn{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		var turn core.Turn
		if err := json.Unmarshal([]byte(raw), &turn); err != nil {
			return nil, fmt.Errorf("failed to unmarshal turn: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turns: %w", err)
	}
	return turns, nil
}

// Clear implements Store.
func (s *SQLiteStore) Clear(ctx context.Context, agentName, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM turns WHERE agent_name = ? AND user_id = ?`,
		agentName, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear turns: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }
