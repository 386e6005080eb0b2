package symbols

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/domain"
	errs "github.com/NastyaGoryachaya/crypto-quotes-service/internal/errors"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/interfaces"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/metrics"
	"golang.org/x/sync/singleflight"
)

const cacheName = "symbols"

// Каталог монет: read-through кэш поверх провайдера

type Service interface {
	// GetSymbols — каталог из кэша, при промахе — свежий с провайдера
	GetSymbols(ctx context.Context) ([]domain.Symbol, error)
	// ValidateSymbols — известные тикеры из запроса, порядок и повторы сохраняются
	ValidateSymbols(ctx context.Context, requested []string) ([]string, error)
}

type Config struct {
	CacheKey       string
	TTL            time.Duration
	// RefreshTimeout — предел для общего обновления каталога
	RefreshTimeout time.Duration
}

const defaultRefreshTimeout = 30 * time.Second

type service struct {
	provider Provider
	cache    interfaces.Cache
	cfg      Config
	group    singleflight.Group
	metrics  metrics.Recorder
	logger   *slog.Logger
}

func NewService(provider Provider, cache interfaces.Cache, cfg Config, rec metrics.Recorder, logger *slog.Logger) Service {
	if provider == nil || cache == nil {
		panic("symbols: nil provider or cache")
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = defaultRefreshTimeout
	}
	return &service{
		provider: provider,
		cache:    cache,
		cfg:      cfg,
		metrics:  metrics.OrNop(rec),
		logger:   logger,
	}
}

func (s *service) GetSymbols(ctx context.Context) ([]domain.Symbol, error) {
	if cached, ok := s.readCache(ctx); ok {
		return cached, nil
	}

	// параллельные промахи ходят к провайдеру один раз. Само обновление
	// отвязано от контекста первого вызывающего, каждый ждёт его по своему ctx.
	ch := s.group.DoChan(s.cfg.CacheKey, func() (v any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errs.Unexpected("symbols.refresh.panic", fmt.Errorf("panic: %v", r))
			}
		}()
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.RefreshTimeout)
		defer cancel()
		return s.refresh(rctx)
	})

	select {
	case <-ctx.Done():
		s.logger.Debug("symbols: caller left before refresh finished", slog.Any("err", ctx.Err()))
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("symbols: refresh shared between callers")
		}
		return res.Val.([]domain.Symbol), nil
	}
}

func (s *service) ValidateSymbols(ctx context.Context, requested []string) ([]string, error) {
	catalog, err := s.GetSymbols(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(catalog))
	for _, sym := range catalog {
		known[strings.ToUpper(sym.Ticker)] = struct{}{}
	}

	valid := make([]string, 0, len(requested))
	for _, r := range requested {
		if _, ok := known[strings.ToUpper(r)]; ok {
			valid = append(valid, r)
		}
	}
	s.logger.Debug("symbols validated",
		slog.Int("requested", len(requested)),
		slog.Int("valid", len(valid)),
	)
	return valid, nil
}

func (s *service) refresh(ctx context.Context) ([]domain.Symbol, error) {
	fetched, err := s.provider.FetchSymbols(ctx)
	if err != nil {
		s.logger.Error("symbols: fetch from provider failed", slog.Any("err", err))
		return nil, err
	}

	cleaned := Clean(fetched)
	if dropped := len(fetched) - len(cleaned); dropped > 0 {
		s.logger.Debug("symbols: dropped duplicate or incomplete entries", slog.Int("dropped", dropped))
	}
	if len(cleaned) > 0 {
		s.writeCache(ctx, cleaned)
	}
	s.logger.Info("symbols: catalog refreshed", slog.Int("count", len(cleaned)))
	return cleaned, nil
}

// Clean — убирает записи без имени или тикера и повторы тикера (побеждает первая).
// Тикеры сравниваются как есть, без смены регистра.
func Clean(in []domain.Symbol) []domain.Symbol {
	seen := make(map[string]struct{}, len(in))
	out := make([]domain.Symbol, 0, len(in))
	for _, sym := range in {
		if strings.TrimSpace(sym.Name) == "" || strings.TrimSpace(sym.Ticker) == "" {
			continue
		}
		if _, dup := seen[sym.Ticker]; dup {
			continue
		}
		seen[sym.Ticker] = struct{}{}
		out = append(out, sym)
	}
	return out
}

// readCache — битое или пустое значение в кэше считается промахом
func (s *service) readCache(ctx context.Context) ([]domain.Symbol, bool) {
	raw, ok, err := s.cache.Get(ctx, s.cfg.CacheKey)
	if err != nil {
		s.metrics.CacheRequest(cacheName, metrics.ResultError)
		s.logger.Warn("symbols: cache read failed", slog.String("key", s.cfg.CacheKey), slog.Any("err", err))
		return nil, false
	}
	if !ok {
		s.metrics.CacheRequest(cacheName, metrics.ResultMiss)
		s.logger.Debug("symbols: cache miss", slog.String("key", s.cfg.CacheKey))
		return nil, false
	}

	var cached []domain.Symbol
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		s.metrics.CacheRequest(cacheName, metrics.ResultError)
		s.logger.Warn("symbols: corrupt cache entry", slog.String("key", s.cfg.CacheKey), slog.Any("err", err))
		return nil, false
	}
	if len(cached) == 0 {
		s.metrics.CacheRequest(cacheName, metrics.ResultMiss)
		return nil, false
	}

	s.metrics.CacheRequest(cacheName, metrics.ResultHit)
	s.logger.Debug("symbols: cache hit", slog.Int("count", len(cached)))
	return cached, true
}

// writeCache — ошибка записи не роняет запрос: свежие данные всё равно отдаём
func (s *service) writeCache(ctx context.Context, list []domain.Symbol) {
	raw, err := json.Marshal(list)
	if err != nil {
		s.logger.Warn("symbols: encode cache entry", slog.Any("err", err))
		return
	}
	if err := s.cache.Set(ctx, s.cfg.CacheKey, string(raw), s.cfg.TTL); err != nil {
		s.logger.Warn("symbols: cache write failed", slog.String("key", s.cfg.CacheKey), slog.Any("err", err))
	}
}

var _ Service = (*service)(nil)
