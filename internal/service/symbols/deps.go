package symbols

//go:generate mockgen -source=deps.go -destination=mocks/deps.go -package=mocks

import (
	"context"

	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/domain"
)

// Provider — источник каталога монет (CoinMarketCap)
type Provider interface {
	FetchSymbols(ctx context.Context) ([]domain.Symbol, error)
}
