package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"fraud-dashboard/internal/models"
)

// Pool is the subset of *pgxpool.Pool the repository needs.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores preferences in a dashboard_preferences table.
type PostgresRepository struct {
	pool    Pool
	closeFn func()
}

// NewPostgresRepository connects to databaseURL and creates the table if
// needed.
func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "prefs: parse database url")
	}
	cfg.MaxConns = 4
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "prefs: connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "prefs: ping postgres")
	}

	r := &PostgresRepository{pool: pool, closeFn: pool.Close}
	if err := r.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

const pgMigration = `CREATE TABLE IF NOT EXISTS dashboard_preferences (
	user_email TEXT NOT NULL,
	pref_key   TEXT NOT NULL,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_email, pref_key)
)`

// Migrate creates the preferences table.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, pgMigration)
	return eris.Wrap(err, "prefs: migrate postgres")
}

// Load returns the preferences of user, or the defaults.
func (r *PostgresRepository) Load(ctx context.Context, user string) (models.NotificationPreferences, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT value FROM dashboard_preferences WHERE user_email = $1 AND pref_key = $2`,
		user, Key,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultNotificationPreferences(), nil
	}
	if err != nil {
		return models.DefaultNotificationPreferences(), eris.Wrap(err, "prefs: load postgres")
	}
	return decode(user, raw), nil
}

// Save upserts the preferences of user.
func (r *PostgresRepository) Save(ctx context.Context, user string, p models.NotificationPreferences) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "prefs: marshal preferences")
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO dashboard_preferences (user_email, pref_key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_email, pref_key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		user, Key, raw,
	)
	return eris.Wrap(err, "prefs: save postgres")
}

// Close releases the connection pool.
func (r *PostgresRepository) Close() {
	if r.closeFn != nil {
		r.closeFn()
	}
}
