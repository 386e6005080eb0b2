package exchangerates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/domain"
	errs "github.com/NastyaGoryachaya/crypto-quotes-service/internal/errors"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/metrics"
	"github.com/shopspring/decimal"
)

const providerName = "exchangerates"

type Config struct {
	BaseURL      string
	APIKey       string
	LatestPath   string
	BaseCurrency string
	Currencies   []string // целевые валюты, порядок сохраняется в ответе
	Timeout      time.Duration
	UserAgent    string
}

// Client — клиент exchangeratesapi.io: курсы базовой валюты к целевым.
type Client struct {
	cfg        Config
	httpClient *http.Client
	metrics    metrics.Recorder
	logger     *slog.Logger
}

type latestResponse struct {
	Success *bool                      `json:"success"`
	Base    string                     `json:"base"`
	Rates   map[string]json.RawMessage `json:"rates"`
	Error   *struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`
}

// NewClient - Создаёт клиента курсов валют.
func NewClient(cfg Config, rec metrics.Recorder, logger *slog.Logger) *Client {
	if cfg.LatestPath == "" {
		cfg.LatestPath = "/v1/latest"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "crypto-quotes-service/1.0"
	}
	cfg.BaseCurrency = strings.ToUpper(strings.TrimSpace(cfg.BaseCurrency))
	currencies := make([]string, 0, len(cfg.Currencies))
	for _, cur := range cfg.Currencies {
		cur = strings.ToUpper(strings.TrimSpace(cur))
		if cur != "" {
			currencies = append(currencies, cur)
		}
	}
	cfg.Currencies = currencies

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		metrics: metrics.OrNop(rec),
		logger:  logger,
	}
}

// FetchRates — курсы базовой валюты. Сначала валюты в порядке конфигурации, затем прочие по алфавиту.
func (c *Client) FetchRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	const op = "rates"

	q := url.Values{}
	if c.cfg.APIKey != "" {
		q.Set("access_key", c.cfg.APIKey)
	}
	q.Set("base", c.cfg.BaseCurrency)
	if len(c.cfg.Currencies) > 0 {
		q.Set("symbols", strings.Join(c.cfg.Currencies, ","))
	}

	var resp latestResponse
	if err := c.get(ctx, op, q, &resp); err != nil {
		return nil, err
	}

	if resp.Success != nil && !*resp.Success {
		c.metrics.UpstreamRequest(providerName, op, metrics.OutcomeError)
		reason := "unknown error"
		if resp.Error != nil {
			reason = fmt.Sprintf("%d %s: %s", resp.Error.Code, resp.Error.Type, resp.Error.Info)
		}
		c.logger.Error("exchangerates: provider reported failure", slog.String("reason", reason))
		return nil, errs.Upstream("exchangerates.rates.unsuccessful", fmt.Errorf("provider error: %s", reason))
	}
	if resp.Rates == nil {
		c.metrics.UpstreamRequest(providerName, op, metrics.OutcomeError)
		return nil, errs.Parse("exchangerates.rates.parse", fmt.Errorf("missing rates field"))
	}

	parsed := make(map[string]decimal.Decimal, len(resp.Rates))
	for cur, raw := range resp.Rates {
		var v decimal.Decimal
		if err := json.Unmarshal(raw, &v); err != nil {
			c.logger.Warn("exchangerates: skipping non-numeric rate",
				slog.String("currency", cur),
				slog.String("value", string(raw)),
			)
			continue
		}
		if !v.IsPositive() {
			c.logger.Warn("exchangerates: skipping non-positive rate",
				slog.String("currency", cur),
				slog.String("value", v.String()),
			)
			continue
		}
		parsed[strings.ToUpper(cur)] = v
	}

	out := make([]domain.ExchangeRate, 0, len(parsed))
	for _, cur := range c.cfg.Currencies {
		if v, ok := parsed[cur]; ok {
			out = append(out, domain.ExchangeRate{Currency: cur, Rate: v})
			delete(parsed, cur)
		}
	}
	extra := make([]string, 0, len(parsed))
	for cur := range parsed {
		extra = append(extra, cur)
	}
	sort.Strings(extra)
	for _, cur := range extra {
		out = append(out, domain.ExchangeRate{Currency: cur, Rate: parsed[cur]})
	}

	c.metrics.UpstreamRequest(providerName, op, metrics.OutcomeOK)
	c.logger.Info("exchangerates: rates fetched",
		slog.String("base", c.cfg.BaseCurrency),
		slog.Int("count", len(out)),
	)
	return out, nil
}

func (c *Client) get(ctx context.Context, op string, query url.Values, out any) error {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return errs.Unexpected("exchangerates."+op+".config", fmt.Errorf("invalid base URL: %w", err))
	}
	u = u.JoinPath(c.cfg.LatestPath)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return errs.Unexpected("exchangerates."+op+".request", fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequest(providerName, op, metrics.OutcomeError)
		c.logger.Error("exchangerates: request failed", slog.String("error", err.Error()))
		return errs.Upstream("exchangerates."+op+".request_failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.metrics.UpstreamRequest(providerName, op, metrics.OutcomeError)
		c.logger.Error("exchangerates: unexpected status",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return errs.Upstream("exchangerates."+op+".bad_status", fmt.Errorf("request failed: %s", resp.Status))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.UpstreamRequest(providerName, op, metrics.OutcomeError)
		return errs.Parse("exchangerates."+op+".parse", fmt.Errorf("decoding response: %w", err))
	}
	return nil
}
