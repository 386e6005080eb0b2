package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expiresWithin — аргумент expires_at: момент в будущем не дальше ttl от текущего
type expiresWithin time.Duration

func (e expiresWithin) Match(v any) bool {
	t, ok := v.(*time.Time)
	if !ok || t == nil {
		return false
	}
	now := time.Now().UTC()
	return t.After(now) && !t.After(now.Add(time.Duration(e)))
}

// noExpiry — аргумент expires_at для записи без срока
type noExpiry struct{}

func (noExpiry) Match(v any) bool {
	t, ok := v.(*time.Time)
	return ok && t == nil
}

func newTestRepo(t *testing.T) (pgxmock.PgxPoolIface, *CacheRepo) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock, NewCacheRepository(mock)
}

func TestCacheRepo_GetLiveEntry(t *testing.T) {
	mock, repo := newTestRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("AND (expires_at IS NULL OR expires_at > now())")).
		WithArgs("crypto-symbols").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(`[{"name":"Bitcoin","symbol":"BTC"}]`))

	v, ok, err := repo.Get(context.Background(), "crypto-symbols")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"name":"Bitcoin","symbol":"BTC"}]`, v)
}

// Истёкшую запись отсекает фильтр в запросе: строк нет — промах, не ошибка
func TestCacheRepo_GetExpiredOrMissingIsAbsent(t *testing.T) {
	mock, repo := newTestRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("expires_at > now()")).
		WithArgs("exchange-rates").
		WillReturnRows(pgxmock.NewRows([]string{"value"}))

	v, ok, err := repo.Get(context.Background(), "exchange-rates")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestCacheRepo_GetError(t *testing.T) {
	mock, repo := newTestRepo(t)

	mock.ExpectQuery("SELECT value").
		WithArgs("k").
		WillReturnError(errors.New("connection reset"))

	_, ok, err := repo.Get(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, ok)
}

// Повторный Set по тому же ключу — upsert, а не вторая строка
func TestCacheRepo_SetUpserts(t *testing.T) {
	mock, repo := newTestRepo(t)
	ctx := context.Background()

	upsert := regexp.QuoteMeta("ON CONFLICT (key)") + `\s+` + regexp.QuoteMeta("DO UPDATE SET value = EXCLUDED.value")
	mock.ExpectExec(upsert).
		WithArgs("k", "old", expiresWithin(time.Hour)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(upsert).
		WithArgs("k", "new", expiresWithin(time.Hour)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Set(ctx, "k", "old", time.Hour))
	require.NoError(t, repo.Set(ctx, "k", "new", time.Hour))
}

func TestCacheRepo_SetWithoutTTL(t *testing.T) {
	mock, repo := newTestRepo(t)

	mock.ExpectExec("INSERT INTO cache_entries").
		WithArgs("k", "v", noExpiry{}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Set(context.Background(), "k", "v", 0))
}

func TestCacheRepo_PruneReportsDeleted(t *testing.T) {
	mock, repo := newTestRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cache_entries WHERE expires_at IS NOT NULL AND expires_at <= now()")).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := repo.Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCacheRepo_PruneError(t *testing.T) {
	mock, repo := newTestRepo(t)

	mock.ExpectExec("DELETE FROM cache_entries").
		WillReturnError(errors.New("permission denied"))

	n, err := repo.Prune(context.Background())
	require.Error(t, err)
	assert.Zero(t, n)
}

func TestCacheRepo_EnsureSchema(t *testing.T) {
	mock, repo := newTestRepo(t)

	mock.ExpectExec("CREATE UNLOGGED TABLE IF NOT EXISTS cache_entries").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
}
