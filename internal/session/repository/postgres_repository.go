package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/ridloal/storefront-dashboard/internal/platform/logger"
)

type postgresSessionRepository struct {
	db    *sql.DB
	table string // already quoted
}

// NewPostgresSessionRepository stores session slots in table, which is created if missing.
func NewPostgresSessionRepository(ctx context.Context, db *sql.DB, table string) (SessionRepository, error) {
	r := &postgresSessionRepository{db: db, table: pq.QuoteIdentifier(table)}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *postgresSessionRepository) ensureSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS ` + r.table + ` (
              sid        TEXT NOT NULL,
              key        TEXT NOT NULL,
              value      BYTEA NOT NULL,
              expires_at TIMESTAMPTZ NULL,
              PRIMARY KEY (sid, key))`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		logger.Error("PostgresSessionRepository: failed to create table "+r.table, err)
		return fmt.Errorf("failed to create session table: %w", err)
	}
	return nil
}

func (r *postgresSessionRepository) Get(ctx context.Context, sid, key string) ([]byte, error) {
	query := `SELECT value FROM ` + r.table + `
              WHERE sid = $1 AND key = $2 AND (expires_at IS NULL OR expires_at > now())`
	var value []byte
	err := r.db.QueryRowContext(ctx, query, sid, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.Error("PostgresSessionRepository.Get: query failed", err, "sid", sid, "key", key)
		return nil, err
	}
	return value, nil
}

func (r *postgresSessionRepository) Set(ctx context.Context, sid, key string, value []byte, ttl time.Duration) error {
	query := `INSERT INTO ` + r.table + ` (sid, key, value, expires_at)
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (sid, key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`
	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: time.Now().Add(ttl), Valid: true}
	}
	if _, err := r.db.ExecContext(ctx, query, sid, key, value, expiresAt); err != nil {
		logger.Error("PostgresSessionRepository.Set: upsert failed", err, "sid", sid, "key", key)
		return err
	}
	return nil
}

func (r *postgresSessionRepository) Delete(ctx context.Context, sid, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE sid = $1 AND key = $2`, sid, key)
	return err
}

func (r *postgresSessionRepository) DeleteSession(ctx context.Context, sid string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE sid = $1`, sid)
	return err
}

func (r *postgresSessionRepository) Sweep(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(n), nil
}
