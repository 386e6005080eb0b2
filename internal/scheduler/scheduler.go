package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/service/warmup"
)

type Scheduler struct {
	warmup   warmup.Service
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler — конструктор планировщика фонового прогрева кэшей
func NewScheduler(warmupService warmup.Service, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		warmup:   warmupService,
		interval: interval,
		logger:   logger,
	}
}

// Start — запускает периодический прогрев до остановки контекста
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("scheduler started")
	s.logger.Debug("scheduler interval configured", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// первый запуск сразу
	s.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		}
	}
}

// runOnce — одна итерация: прогреть каталог и курсы. Ошибки только логируются.
func (s *Scheduler) runOnce(ctx context.Context) {
	s.logger.Debug("tick: warming caches")
	if err := s.warmup.Warm(ctx); err != nil {
		s.logger.Error("tick: warmup failed", slog.Any("err", err))
		return
	}
	s.logger.Debug("tick: caches warm")
}
