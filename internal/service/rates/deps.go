package rates

//go:generate mockgen -source=deps.go -destination=mocks/deps.go -package=mocks

import (
	"context"

	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/domain"
)

// Provider — источник курсов валют
type Provider interface {
	FetchRates(ctx context.Context) ([]domain.ExchangeRate, error)
}
