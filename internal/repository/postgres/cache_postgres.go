package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB — то, что кэшу нужно от пула: *pgxpool.Pool подходит как есть
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CacheRepo — кэш в UNLOGGED-таблице cache_entries. Это не хранилище данных: после рестарта БД таблица пуста.
type CacheRepo struct {
	db DB
}

// NewCacheRepository - Создаёт кэш на основе пула соединений.
func NewCacheRepository(db DB) *CacheRepo {
	return &CacheRepo{db: db}
}

// EnsureSchema - Создаёт таблицу кэша, если её нет.
func (r *CacheRepo) EnsureSchema(ctx context.Context) error {
	const query = `
		CREATE UNLOGGED TABLE IF NOT EXISTS cache_entries (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			expires_at TIMESTAMPTZ NULL
		)`
	_, err := r.db.Exec(ctx, query)
	return err
}

// Get - Значение по ключу, если оно ещё не истекло.
func (r *CacheRepo) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `
		SELECT value
		FROM cache_entries
		WHERE key = $1
		  AND (expires_at IS NULL OR expires_at > now())`

	var value string
	err := r.db.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set - Заменяет значение по ключу (upsert одной строкой).
func (r *CacheRepo) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	const query = `
		INSERT INTO cache_entries (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value,
		              expires_at = EXCLUDED.expires_at`

	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().UTC().Add(ttl)
		expiresAt = &t
	}
	_, err := r.db.Exec(ctx, query, key, value, expiresAt)
	return err
}

// Prune - Удаляет истёкшие записи, возвращает их количество.
func (r *CacheRepo) Prune(ctx context.Context) (int64, error) {
	const query = `DELETE FROM cache_entries WHERE expires_at IS NOT NULL AND expires_at <= now()`
	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
