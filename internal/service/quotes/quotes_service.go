package quotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/domain"
	errs "github.com/NastyaGoryachaya/crypto-quotes-service/internal/errors"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// Агрегация котировок: проверка тикеров, цены, курсы, сборка результата

type Service interface {
	// GetPrices — цены запрошенных монет в базовой и во всех целевых валютах
	GetPrices(ctx context.Context, requested []string) ([]domain.PricedResult, error)
}

type service struct {
	quotes    QuoteFetcher
	catalog   SymbolCatalog
	rates     RateSource
	reference string
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewService — reference: код базовой валюты, в которой провайдер отдаёт цены.
func NewService(quotes QuoteFetcher, catalog SymbolCatalog, rates RateSource, reference string, rec metrics.Recorder, logger *slog.Logger) Service {
	if quotes == nil || catalog == nil || rates == nil {
		panic("quotes: nil collaborator")
	}
	return &service{
		quotes:    quotes,
		catalog:   catalog,
		rates:     rates,
		reference: strings.ToUpper(reference),
		metrics:   metrics.OrNop(rec),
		logger:    logger,
	}
}

func (s *service) GetPrices(ctx context.Context, requested []string) (results []domain.PricedResult, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("quotes: panic recovered",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			results, err = nil, errs.Unexpected("quotes.panic", fmt.Errorf("panic: %v", r))
		}
		s.metrics.ObserveGetPrices(time.Since(start), err)
	}()

	if len(requested) == 0 {
		return nil, errs.ErrNoSymbolsProvided
	}

	normalized := make([]string, len(requested))
	for i, r := range requested {
		normalized[i] = strings.ToUpper(r)
	}

	valid, err := s.catalog.ValidateSymbols(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if len(valid) == 0 {
		s.logger.Debug("quotes: no valid symbols", slog.Any("requested", normalized))
		return nil, errs.ErrNoValidSymbols
	}

	in, err := s.collect(ctx, valid)
	if err != nil {
		return nil, err
	}

	results = s.compose(valid, in)
	s.logger.Debug("quotes: prices composed",
		slog.Int("requested", len(requested)),
		slog.Int("valid", len(valid)),
		slog.Int("results", len(results)),
	)
	return results, nil
}

type inputs struct {
	quotes  []domain.Quote
	rates   []domain.ExchangeRate
	catalog []domain.Symbol
}

// collect — котировки, курсы и каталог параллельно.
// Ошибка выбирается в порядке шагов: котировки, курсы, каталог.
// Отмена, вызванная падением соседней ветки, ошибкой шага не считается.
func (s *service) collect(ctx context.Context, tickers []string) (inputs, error) {
	var (
		in       inputs
		stepErrs [3]error
	)
	g, gctx := errgroup.WithContext(ctx)

	run := func(i int, step string, fn func(ctx context.Context) error) {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("quotes: panic in step",
						slog.String("step", step),
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())),
					)
					err = errs.Unexpected("quotes."+step+".panic", fmt.Errorf("panic: %v", r))
				}
				stepErrs[i] = err
			}()
			return fn(gctx)
		})
	}

	run(0, "quotes", func(ctx context.Context) (err error) {
		in.quotes, err = s.quotes.FetchQuotes(ctx, unique(tickers))
		return err
	})
	run(1, "rates", func(ctx context.Context) (err error) {
		in.rates, err = s.rates.GetRates(ctx)
		return err
	})
	run(2, "catalog", func(ctx context.Context) (err error) {
		in.catalog, err = s.catalog.GetSymbols(ctx)
		return err
	})

	groupErr := g.Wait()
	if groupErr == nil {
		return in, nil
	}
	for _, err := range stepErrs {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			continue
		}
		return inputs{}, err
	}
	return inputs{}, groupErr
}

func (s *service) compose(tickers []string, in inputs) []domain.PricedResult {
	quoteBy := make(map[string]domain.Quote, len(in.quotes))
	for _, q := range in.quotes {
		if _, ok := quoteBy[q.Ticker]; !ok {
			quoteBy[q.Ticker] = q
		}
	}
	symbolBy := make(map[string]domain.Symbol, len(in.catalog))
	for _, sym := range in.catalog {
		if _, ok := symbolBy[sym.Ticker]; !ok {
			symbolBy[sym.Ticker] = sym
		}
	}

	results := make([]domain.PricedResult, 0, len(tickers))
	for _, ticker := range tickers {
		q, ok := quoteBy[ticker]
		if !ok {
			s.logger.Debug("quotes: no quote for symbol", slog.String("symbol", ticker))
			continue
		}

		prices := make([]domain.Price, 0, len(in.rates)+1)
		prices = append(prices, domain.Price{Currency: s.reference, Value: q.Price})
		for _, r := range in.rates {
			prices = append(prices, domain.Price{Currency: r.Currency, Value: q.Price.Mul(r.Rate)})
		}

		var symbol *domain.Symbol
		if sym, ok := symbolBy[ticker]; ok {
			symbol = &sym
		}
		results = append(results, domain.PricedResult{Symbol: symbol, Prices: prices})
	}
	return results
}

// unique — тикеры без повторов, в порядке первого появления
func unique(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
