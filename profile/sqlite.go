package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const profilesSchema = `
CREATE TABLE IF NOT EXISTS profiles (
	user_id           TEXT PRIMARY KEY,
	onboarding_status TEXT NOT NULL,
	monthly_income    REAL,
	savings           REAL,
	investments       REAL,
	debts             REAL,
	ai_preferences    TEXT,
	personal_info     TEXT,
	extra_info        TEXT,
	ai_summary        TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMP NOT NULL,
	updated_at        TIMESTAMP NOT NULL
);
`

// SQLiteStore persists profiles in a SQLite database. Map-valued fields are
// stored as JSON text columns.
type SQLiteStore struct {
	db     *sql.DB
	ownsDB bool
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path and prepares the
// profiles table.
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
	if _, err := db.Exec(profilesSchema); err != nil {
		return nil, fmt.Errorf("create profiles table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, userID string) (*Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, onboarding_status, monthly_income, savings, investments, debts,
		       ai_preferences, personal_info, extra_info, ai_summary, created_at, updated_at
		FROM profiles WHERE user_id = ?`, userID)

	var (
		p        Profile
		prefs    sql.NullString
		personal sql.NullString
		extra    sql.NullString
	)
	err := row.Scan(&p.UserID, &p.OnboardingStatus, &p.MonthlyIncome, &p.Savings,
		&p.Investments, &p.Debts, &prefs, &personal, &extra, &p.AISummary,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load profile for user %q: %w", userID, err)
	}

	if p.AIPreferences, err = decodeMap(prefs); err != nil {
		return nil, fmt.Errorf("decode ai_preferences for user %q: %w", userID, err)
	}
	if p.PersonalInfo, err = decodeMap(personal); err != nil {
		return nil, fmt.Errorf("decode personal_info for user %q: %w", userID, err)
	}
	if p.ExtraInfo, err = decodeMap(extra); err != nil {
		return nil, fmt.Errorf("decode extra_info for user %q: %w", userID, err)
	}
	return &p, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, p *Profile) error {
	prefs, err := encodeMap(p.AIPreferences)
	if err != nil {
		return fmt.Errorf("encode ai_preferences for user %q: %w", p.UserID, err)
	}
	personal, err := encodeMap(p.PersonalInfo)
	if err != nil {
		return fmt.Errorf("encode personal_info for user %q: %w", p.UserID, err)
	}
	extra, err := encodeMap(p.ExtraInfo)
	if err != nil {
		return fmt.Errorf("encode extra_info for user %q: %w", p.UserID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, onboarding_status, monthly_income, savings, investments, debts,
		                      ai_preferences, personal_info, extra_info, ai_summary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			onboarding_status = excluded.onboarding_status,
			monthly_income    = excluded.monthly_income,
			savings           = excluded.savings,
			investments       = excluded.investments,
			debts             = excluded.debts,
			ai_preferences    = excluded.ai_preferences,
			personal_info     = excluded.personal_info,
			extra_info        = excluded.extra_info,
			ai_summary        = excluded.ai_summary,
			updated_at        = excluded.updated_at`,
		p.UserID, p.OnboardingStatus, p.MonthlyIncome, p.Savings, p.Investments, p.Debts,
		prefs, personal, extra, p.AISummary, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store profile for user %q: %w", p.UserID, err)
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

func encodeMap(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func decodeMap(v sql.NullString) (map[string]any, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(v.String), &m); err != nil {
		return nil, err
	}
	return m, nil
}
