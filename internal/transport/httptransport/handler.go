package httptransport

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/domain"
	"github.com/labstack/echo/v4"
)

// QuotesService — агрегатор котировок.
type QuotesService interface {
	GetPrices(ctx context.Context, requested []string) ([]domain.PricedResult, error)
}

// SymbolsService — каталог монет.
type SymbolsService interface {
	GetSymbols(ctx context.Context) ([]domain.Symbol, error)
}

// QuotesHandler — HTTP‑handler для котировок и каталога.
type QuotesHandler struct {
	logger  *slog.Logger
	quotes  QuotesService
	symbols SymbolsService
	timeout time.Duration
}

func NewQuotesHandler(logger *slog.Logger, quotes QuotesService, symbols SymbolsService, timeout time.Duration) *QuotesHandler {
	if logger == nil {
		log.Fatal("nil logger")
	}
	if quotes == nil || symbols == nil {
		log.Fatal("nil service")
	}
	// Задаём таймаут по умолчанию, если он не задан
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &QuotesHandler{
		logger:  logger,
		quotes:  quotes,
		symbols: symbols,
		timeout: timeout,
	}
}

func (h *QuotesHandler) RegisterRoutes(r interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}) {
	r.GET("/quotes", h.GetQuotes)
	r.GET("/symbols", h.GetSymbols)
}

// GetQuotes — GET /api/quotes?symbols=BTC,ETH
func (h *QuotesHandler) GetQuotes(c echo.Context) error {
	requested := parseSymbols(c.QueryParam("symbols"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	// пустой список отдаём сервису: он сам вернёт ошибку валидации
	items, err := h.quotes.GetPrices(ctx, requested)
	if err != nil {
		return h.writeError(c, "GetQuotes", err)
	}
	if items == nil {
		items = []domain.PricedResult{}
	}
	return c.JSON(http.StatusOK, items)
}

// GetSymbols — GET /api/symbols
func (h *QuotesHandler) GetSymbols(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	items, err := h.symbols.GetSymbols(ctx)
	if err != nil {
		return h.writeError(c, "GetSymbols", err)
	}
	if items == nil {
		items = []domain.Symbol{}
	}
	return c.JSON(http.StatusOK, items)
}

// parseSymbols — "btc, eth,," -> ["btc", "eth"]. Регистр приводит сервис.
func parseSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
