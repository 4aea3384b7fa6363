package budget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const budgetsSchema = `
CREATE TABLE IF NOT EXISTS budgets (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	title      TEXT NOT NULL,
	amount     REAL NOT NULL,
	spent      REAL NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_budgets_user ON budgets (user_id, created_at);
`

// SQLiteStore persists budgets in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	ownsDB bool
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path and prepares the
// budgets table.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	s, err := NewSQLiteStoreFromDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

// NewSQLiteStoreFromDB wraps an existing database handle. The caller retains
// ownership of the handle.
func NewSQLiteStoreFromDB(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(budgetsSchema); err != nil {
		return nil, fmt.Errorf("create budgets table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, userID string) ([]Budget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, amount, spent, created_at, updated_at
		FROM budgets WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets for user %q: %w", userID, err)
	}
	defer rows.Close()

	var out []Budget
	for rows.Next() {
		var b Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Title, &b.Amount, &b.Spent, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Budget, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, amount, spent, created_at, updated_at
		FROM budgets WHERE id = ?`, id)

	var b Budget
	err := row.Scan(&b.ID, &b.UserID, &b.Title, &b.Amount, &b.Spent, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load budget %q: %w", id, err)
	}
	return &b, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, b *Budget) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (id, user_id, title, amount, spent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title      = excluded.title,
			amount     = excluded.amount,
			spent      = excluded.spent,
			updated_at = excluded.updated_at`,
		b.ID, b.UserID, b.Title, b.Amount, b.Spent, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store budget %q: %w", b.ID, err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget %q: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Replace implements Store.
func (s *SQLiteStore) Replace(ctx context.Context, userID string, budgets []Budget) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace for user %q: %w", userID, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM budgets WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear budgets for user %q: %w", userID, err)
	}
	for _, b := range budgets {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO budgets (id, user_id, title, amount, spent, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.UserID, b.Title, b.Amount, b.Spent, b.CreatedAt, b.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert budget %q: %w", b.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace for user %q: %w", userID, err)
	}
	return nil
}

// Close releases the database handle if this store opened it.
func (s *SQLiteStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}
