package quotes

//go:generate mockgen -source=deps.go -destination=mocks/deps.go -package=mocks

import (
	"context"

	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/domain"
)

// QuoteFetcher — текущие цены в базовой валюте. Тикеры без данных в ответе отсутствуют.
type QuoteFetcher interface {
	FetchQuotes(ctx context.Context, tickers []string) ([]domain.Quote, error)
}

// SymbolCatalog — каталог монет и проверка тикеров
type SymbolCatalog interface {
	GetSymbols(ctx context.Context) ([]domain.Symbol, error)
	ValidateSymbols(ctx context.Context, requested []string) ([]string, error)
}

// RateSource — курсы базовой валюты к целевым
type RateSource interface {
	GetRates(ctx context.Context) ([]domain.ExchangeRate, error)
}
