package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/domain"
	errs "github.com/NastyaGoryachaya/crypto-quotes-service/internal/errors"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/interfaces"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/metrics"
	"golang.org/x/sync/singleflight"
)

const cacheName = "rates"

// Курсы валют относительно базовой: read-through кэш с коротким TTL

type Service interface {
	// GetRates — курсы из кэша, при промахе — с провайдера
	GetRates(ctx context.Context) ([]domain.ExchangeRate, error)
}

type Config struct {
	CacheKey       string
	TTL            time.Duration
	// RefreshTimeout ограничивает общее обновление, которое не зависит от отмены отдельного вызова
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
		panic("rates: nil provider or cache")
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

func (s *service) GetRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	if cached, ok := s.readCache(ctx); ok {
		return cached, nil
	}

	ch := s.group.DoChan(s.cfg.CacheKey, func() (v any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errs.Unexpected("rates.refresh.panic", fmt.Errorf("panic: %v", r))
			}
		}()
		// отмена одного вызывающего не должна обрывать обновление для остальных
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.RefreshTimeout)
		defer cancel()
		return s.refresh(rctx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.ExchangeRate), nil
	}
}

func (s *service) refresh(ctx context.Context) ([]domain.ExchangeRate, error) {
	fetched, err := s.provider.FetchRates(ctx)
	if err != nil {
		s.logger.Error("rates: fetch from provider failed", slog.Any("err", err))
		return nil, err
	}
	if len(fetched) == 0 {
		// пустой ответ не кэшируем: следующий вызов снова спросит провайдера
		s.logger.Warn("rates: provider returned no rates")
		return []domain.ExchangeRate{}, nil
	}

	s.writeCache(ctx, fetched)
	s.logger.Info("rates: refreshed", slog.Int("count", len(fetched)))
	return fetched, nil
}

func (s *service) readCache(ctx context.Context) ([]domain.ExchangeRate, bool) {
	raw, ok, err := s.cache.Get(ctx, s.cfg.CacheKey)
	if err != nil {
		s.metrics.CacheRequest(cacheName, metrics.ResultError)
		s.logger.Warn("rates: cache read failed", slog.String("key", s.cfg.CacheKey), slog.Any("err", err))
		return nil, false
	}
	if !ok {
		s.metrics.CacheRequest(cacheName, metrics.ResultMiss)
		s.logger.Debug("rates: cache miss", slog.String("key", s.cfg.CacheKey))
		return nil, false
	}

	var cached []domain.ExchangeRate
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		s.metrics.CacheRequest(cacheName, metrics.ResultError)
		s.logger.Warn("rates: corrupt cache entry", slog.String("key", s.cfg.CacheKey), slog.Any("err", err))
		return nil, false
	}
	if len(cached) == 0 {
		s.metrics.CacheRequest(cacheName, metrics.ResultMiss)
		return nil, false
	}

	s.metrics.CacheRequest(cacheName, metrics.ResultHit)
	return cached, true
}

func (s *service) writeCache(ctx context.Context, list []domain.ExchangeRate) {
	raw, err := json.Marshal(list)
	if err != nil {
		s.logger.Warn("rates: encode cache entry", slog.Any("err", err))
		return
	}
	if err := s.cache.Set(ctx, s.cfg.CacheKey, string(raw), s.cfg.TTL); err != nil {
		s.logger.Warn("rates: cache write failed", slog.String("key", s.cfg.CacheKey), slog.Any("err", err))
	}
}
