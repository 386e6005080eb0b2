package botfmt

import (
	"fmt"
	"strings"

	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/domain"
	"github.com/shopspring/decimal"
)

var oneCent = decimal.New(1, -2)

// FormatResult — сообщение с ценами одной монеты для /quotes
func FormatResult(r domain.PricedResult) string {
	var b strings.Builder
	if r.Symbol != nil {
		fmt.Fprintf(&b, "[%s] %s", r.Symbol.Ticker, r.Symbol.Name)
	} else {
		b.WriteString("[?]")
	}
	for _, p := range r.Prices {
		fmt.Fprintf(&b, "\n%s: %s", p.Currency, humanPrice(p))
	}
	return b.String()
}

// FormatSymbols — первые limit монет каталога, по одной на строку
func FormatSymbols(list []domain.Symbol, limit int) string {
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}
	var b strings.Builder
	for i, s := range list[:limit] {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s - %s", s.Ticker, s.Name)
	}
	if rest := len(list) - limit; rest > 0 {
		fmt.Fprintf(&b, "\n…и ещё %d", rest)
	}
	return b.String()
}

// humanPrice — два знака после запятой; у копеечных монет точность сохраняется
func humanPrice(p domain.Price) string {
	if !p.Value.IsZero() && p.Value.Abs().LessThan(oneCent) {
		return p.Value.String()
	}
	return p.Value.StringFixed(2)
}
