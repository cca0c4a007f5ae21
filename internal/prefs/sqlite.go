package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"fraud-dashboard/internal/models"
)

// SQLiteRepository stores preferences in a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database at dsn and creates the table.
func NewSQLiteRepository(ctx context.Context, dsn string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "prefs: open sqlite")
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "prefs: exec %s", pragma)
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS dashboard_preferences (
		user_email TEXT NOT NULL,
		pref_key   TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_email, pref_key)
	)`); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "prefs: migrate sqlite")
	}
	return &SQLiteRepository{db: db}, nil
}

// Load returns the preferences of user, or the defaults.
func (r *SQLiteRepository) Load(ctx context.Context, user string) (models.NotificationPreferences, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM dashboard_preferences WHERE user_email = ? AND pref_key = ?`, user, Key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultNotificationPreferences(), nil
	}
	if err != nil {
		return models.DefaultNotificationPreferences(), eris.Wrap(err, "prefs: load sqlite")
	}
	return decode(user, []byte(raw)), nil
}

// Save upserts the preferences of user.
func (r *SQLiteRepository) Save(ctx context.Context, user string, p models.NotificationPreferences) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "prefs: marshal preferences")
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO dashboard_preferences (user_email, pref_key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_email, pref_key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		user, Key, string(raw),
	)
	return eris.Wrap(err, "prefs: save sqlite")
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
