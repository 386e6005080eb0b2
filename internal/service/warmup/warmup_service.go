package warmup

//go:generate mockgen -source=warmup_service.go -destination=mocks/deps.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/domain"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/interfaces"
)

type Service interface {
	// Warm — прогревает кэши каталога и курсов; ошибки шагов собираются вместе
	Warm(ctx context.Context) error
}

type SymbolsLoader interface {
	GetSymbols(ctx context.Context) ([]domain.Symbol, error)
}

type RatesLoader interface {
	GetRates(ctx context.Context) ([]domain.ExchangeRate, error)
}

type warmupService struct {
	symbols SymbolsLoader
	rates   RatesLoader
	pruner  interfaces.Pruner // nil, если хранилищу чистка не нужна
	logger  *slog.Logger
}

// NewService — конструктор сервиса прогрева кэшей. pruner может быть nil.
func NewService(symbols SymbolsLoader, rates RatesLoader, pruner interfaces.Pruner, logger *slog.Logger) Service {
	return &warmupService{
		symbols: symbols,
		rates:   rates,
		pruner:  pruner,
		logger:  logger,
	}
}

// Warm — дёргает read-through кэши: при промахе они сами сходят к провайдерам.
func (s *warmupService) Warm(ctx context.Context) error {
	var errList []error

	syms, err := s.symbols.GetSymbols(ctx)
	if err != nil {
		s.logger.Error("warm symbols", slog.Any("err", err))
		errList = append(errList, fmt.Errorf("warm symbols: %w", err))
	} else {
		s.logger.Debug("symbols warm", slog.Int("count", len(syms)))
	}

	rates, err := s.rates.GetRates(ctx)
	if err != nil {
		s.logger.Error("warm rates", slog.Any("err", err))
		errList = append(errList, fmt.Errorf("warm rates: %w", err))
	} else {
		s.logger.Debug("rates warm", slog.Int("count", len(rates)))
	}

	if s.pruner != nil {
		removed, err := s.pruner.Prune(ctx)
		if err != nil {
			s.logger.Warn("prune expired cache entries", slog.Any("err", err))
			errList = append(errList, fmt.Errorf("prune cache: %w", err))
		} else if removed > 0 {
			s.logger.Debug("expired cache entries pruned", slog.Int64("count", removed))
		}
	}

	return errors.Join(errList...)
}
