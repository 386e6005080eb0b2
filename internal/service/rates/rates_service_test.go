package rates_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/domain"
	errs "github.com/NastyaGoryachaya/crypto-quotes-service/internal/errors"
	cachemocks "github.com/NastyaGoryachaya/crypto-quotes-service/internal/interfaces/mocks"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/repository/memory"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/service/rates"
	ratesmocks "github.com/NastyaGoryachaya/crypto-quotes-service/internal/service/rates/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
)

const ttl = time.Hour

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func sampleRates() []domain.ExchangeRate {
	return []domain.ExchangeRate{
		{Currency: "USD", Rate: decimal.RequireFromString("1.08")},
		{Currency: "BRL", Rate: decimal.RequireFromString("6.1")},
		{Currency: "GBP", Rate: decimal.RequireFromString("0.85")},
	}
}

func setupSvc(t *testing.T) (context.Context, *ratesmocks.MockProvider, *fakeClock, rates.Service) {
	t.Helper()
	ctrl := gomock.NewController(t)
	provider := ratesmocks.NewMockProvider(ctrl)
	clk := &fakeClock{now: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}
	svc := rates.NewService(provider, memory.NewCacheWithClock(clk), rates.Config{CacheKey: "exchange-rates", TTL: ttl}, nil, slog.Default())
	return context.Background(), provider, clk, svc
}

func assertRates(t *testing.T, got, want []domain.ExchangeRate) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d rates, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Currency != want[i].Currency || !got[i].Rate.Equal(want[i].Rate) {
			t.Fatalf("rate %d: expected %s=%s, got %s=%s", i, want[i].Currency, want[i].Rate, got[i].Currency, got[i].Rate)
		}
	}
}

// В пределах TTL провайдер вызывается один раз, порядок курсов сохраняется
func TestGetRates_CachedWithinTTL(t *testing.T) {
	ctx, provider, clk, svc := setupSvc(t)

	provider.EXPECT().FetchRates(gomock.Any()).Return(sampleRates(), nil).Times(1)

	first, err := svc.GetRates(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertRates(t, first, sampleRates())

	clk.Advance(30 * time.Minute)
	second, err := svc.GetRates(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertRates(t, second, sampleRates())
}

func TestGetRates_RefreshAfterTTL(t *testing.T) {
	ctx, provider, clk, svc := setupSvc(t)

	next := []domain.ExchangeRate{{Currency: "USD", Rate: decimal.RequireFromString("1.1")}}
	gomock.InOrder(
		provider.EXPECT().FetchRates(gomock.Any()).Return(sampleRates(), nil),
		provider.EXPECT().FetchRates(gomock.Any()).Return(next, nil),
	)

	if _, err := svc.GetRates(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clk.Advance(ttl + time.Second)

	got, err := svc.GetRates(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertRates(t, got, next)

	got, err = svc.GetRates(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertRates(t, got, next)
}

// Пустой ответ — успех, но не кэшируется: второй вызов снова идёт к провайдеру
func TestGetRates_EmptyResultNotCached(t *testing.T) {
	ctx, provider, _, svc := setupSvc(t)

	gomock.InOrder(
		provider.EXPECT().FetchRates(gomock.Any()).Return(nil, nil),
		provider.EXPECT().FetchRates(gomock.Any()).Return(sampleRates(), nil),
	)

	got, err := svc.GetRates(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}

	got, err = svc.GetRates(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertRates(t, got, sampleRates())
}

func TestGetRates_ProviderErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind errs.Kind
	}{
		{"upstream", errs.Upstream("exchangerates.rates.bad_status", errors.New("503")), errs.KindUpstreamUnavailable},
		{"parse", errs.Parse("exchangerates.rates.parse", errors.New("bad json")), errs.KindParse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, provider, _, svc := setupSvc(t)
			provider.EXPECT().FetchRates(gomock.Any()).Return(nil, tc.err)

			_, err := svc.GetRates(ctx)
			if !errors.Is(err, tc.err) || errs.KindOf(err) != tc.kind {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestGetRates_CorruptCacheIsMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := ratesmocks.NewMockProvider(ctrl)
	cache := cachemocks.NewMockCache(ctrl)
	svc := rates.NewService(provider, cache, rates.Config{CacheKey: "exchange-rates", TTL: ttl}, nil, slog.Default())

	cache.EXPECT().Get(gomock.Any(), "exchange-rates").Return(`[{"currency":"USD","rate":`, true, nil)
	provider.EXPECT().FetchRates(gomock.Any()).Return(sampleRates(), nil)
	cache.EXPECT().Set(gomock.Any(), "exchange-rates", gomock.Any(), ttl).Return(errors.New("write failed"))

	got, err := svc.GetRates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertRates(t, got, sampleRates())
}

// Курсы из кэша возвращаются без округления
func TestGetRates_DecodesCachedDecimals(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := ratesmocks.NewMockProvider(ctrl)
	cache := cachemocks.NewMockCache(ctrl)
	svc := rates.NewService(provider, cache, rates.Config{CacheKey: "exchange-rates", TTL: ttl}, nil, slog.Default())

	cache.EXPECT().Get(gomock.Any(), "exchange-rates").
		Return(`[{"currency":"USD","rate":"1.083912345678901234"},{"currency":"AUD","rate":1.65}]`, true, nil)
	provider.EXPECT().FetchRates(gomock.Any()).Times(0)

	got, err := svc.GetRates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertRates(t, got, []domain.ExchangeRate{
		{Currency: "USD", Rate: decimal.RequireFromString("1.083912345678901234")},
		{Currency: "AUD", Rate: decimal.RequireFromString("1.65")},
	})
}

// Отмена одного вызывающего не обрывает общее обновление для остальных
func TestGetRates_CallerCancelDoesNotBreakSharedRefresh(t *testing.T) {
	_, provider, _, svc := setupSvc(t)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	provider.EXPECT().FetchRates(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]domain.ExchangeRate, error) {
		once.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return sampleRates(), nil
	}).MinTimes(1).MaxTimes(2)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.GetRates(ctxA)
		errA <- err
	}()
	<-started

	type result struct {
		rates []domain.ExchangeRate
		err   error
	}
	resB := make(chan result, 1)
	go func() {
		got, err := svc.GetRates(context.Background())
		resB <- result{got, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled for cancelled caller, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("cancelled caller still waiting for refresh")
	}

	close(release)
	res := <-resB
	if res.err != nil {
		t.Fatalf("unexpected error for live caller: %v", res.err)
	}
	assertRates(t, res.rates, sampleRates())
}

// Общее обновление ограничено собственным таймаутом
func TestGetRates_RefreshTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := ratesmocks.NewMockProvider(ctrl)
	clk := &fakeClock{now: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}
	svc := rates.NewService(provider, memory.NewCacheWithClock(clk), rates.Config{
		CacheKey:       "exchange-rates",
		TTL:            ttl,
		RefreshTimeout: 20 * time.Millisecond,
	}, nil, slog.Default())

	provider.EXPECT().FetchRates(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]domain.ExchangeRate, error) {
		<-ctx.Done()
		return nil, errs.Upstream("exchangerates.request", ctx.Err())
	})

	_, err := svc.GetRates(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
