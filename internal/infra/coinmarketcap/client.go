package coinmarketcap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/domain"
	errs "github.com/NastyaGoryachaya/crypto-quotes-service/internal/errors"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/metrics"
	"github.com/shopspring/decimal"
)

const providerName = "coinmarketcap"

type Config struct {
	BaseURL       string
	APIKey        string
	ListingsPath  string
	QuotesPath    string
	ListingsLimit int
	Convert       string // базовая валюта котировок
	Timeout       time.Duration
	UserAgent     string
}

// Client — клиент CoinMarketCap: каталог монет и текущие котировки.
type Client struct {
	cfg        Config
	httpClient *http.Client
	metrics    metrics.Recorder
	logger     *slog.Logger
}

// listingsResponse — ответ /listings/latest
type listingsResponse struct {
	Data []struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"data"`
}

// quotesResponse — ответ v2 /quotes/latest: по каждому тикеру массив монет
type quotesResponse struct {
	Data map[string][]struct {
		Symbol string `json:"symbol"`
		Quote  map[string]struct {
			Price *decimal.Decimal `json:"price"`
		} `json:"quote"`
	} `json:"data"`
}

// NewClient - Создаёт нового клиента для работы с API CoinMarketCap.
func NewClient(cfg Config, rec metrics.Recorder, logger *slog.Logger) *Client {
	if cfg.ListingsPath == "" {
		cfg.ListingsPath = "/v1/cryptocurrency/listings/latest"
	}
	if cfg.QuotesPath == "" {
		cfg.QuotesPath = "/v2/cryptocurrency/quotes/latest"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "crypto-quotes-service/1.0"
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		metrics: metrics.OrNop(rec),
		logger:  logger,
	}
}

// FetchSymbols — каталог монет. Пустые и повторяющиеся записи чистит каталог, не клиент.
func (c *Client) FetchSymbols(ctx context.Context) ([]domain.Symbol, error) {
	q := url.Values{}
	if c.cfg.ListingsLimit > 0 {
		q.Set("limit", strconv.Itoa(c.cfg.ListingsLimit))
	}

	var resp listingsResponse
	if err := c.get(ctx, "symbols", c.cfg.ListingsPath, q, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		c.metrics.UpstreamRequest(providerName, "symbols", metrics.OutcomeError)
		return nil, errs.Parse("coinmarketcap.symbols.parse", fmt.Errorf("missing data field"))
	}

	out := make([]domain.Symbol, 0, len(resp.Data))
	for _, d := range resp.Data {
		out = append(out, domain.Symbol{Name: d.Name, Ticker: d.Symbol})
	}
	c.metrics.UpstreamRequest(providerName, "symbols", metrics.OutcomeOK)
	c.logger.Info("coinmarketcap: symbols fetched", slog.Int("count", len(out)))
	return out, nil
}

// FetchQuotes — текущие цены в базовой валюте. Тикеры, по которым нет данных, просто отсутствуют в ответе.
func (c *Client) FetchQuotes(ctx context.Context, tickers []string) ([]domain.Quote, error) {
	if len(tickers) == 0 {
		return nil, errs.ErrEmptySymbols
	}
	convert := strings.ToUpper(c.cfg.Convert)

	q := url.Values{}
	q.Set("symbol", strings.Join(tickers, ","))
	q.Set("convert", convert)

	var resp quotesResponse
	if err := c.get(ctx, "quotes", c.cfg.QuotesPath, q, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		c.metrics.UpstreamRequest(providerName, "quotes", metrics.OutcomeError)
		return nil, errs.Parse("coinmarketcap.quotes.parse", fmt.Errorf("missing data field"))
	}

	out := make([]domain.Quote, 0, len(tickers))
	for _, ticker := range tickers {
		coins := resp.Data[ticker]
		if len(coins) == 0 {
			c.logger.Debug("coinmarketcap: no quote for ticker", slog.String("symbol", ticker))
			continue
		}
		// первая монета в массиве — самая капитализированная с этим тикером
		quote, ok := coins[0].Quote[convert]
		if !ok || quote.Price == nil {
			c.logger.Debug("coinmarketcap: no price in convert currency",
				slog.String("symbol", ticker),
				slog.String("convert", convert),
			)
			continue
		}
		out = append(out, domain.Quote{Ticker: ticker, Price: *quote.Price})
	}
	c.metrics.UpstreamRequest(providerName, "quotes", metrics.OutcomeOK)
	c.logger.Info("coinmarketcap: quotes fetched",
		slog.Int("requested", len(tickers)),
		slog.Int("received", len(out)),
	)
	return out, nil
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return errs.Unexpected("coinmarketcap."+op+".config", fmt.Errorf("invalid base URL: %w", err))
	}
	u = u.JoinPath(path)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return errs.Unexpected("coinmarketcap."+op+".request", fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("X-CMC_PRO_API_KEY", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequest(providerName, op, metrics.OutcomeError)
		c.logger.Error("coinmarketcap: request failed", slog.String("op", op), slog.String("error", err.Error()))
		return errs.Upstream("coinmarketcap."+op+".request_failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.metrics.UpstreamRequest(providerName, op, metrics.OutcomeError)
		c.logger.Error("coinmarketcap: unexpected status",
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return errs.Upstream("coinmarketcap."+op+".bad_status", fmt.Errorf("request failed: %s", resp.Status))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.UpstreamRequest(providerName, op, metrics.OutcomeError)
		return errs.Parse("coinmarketcap."+op+".parse", fmt.Errorf("decoding response: %w", err))
	}
	return nil
}
