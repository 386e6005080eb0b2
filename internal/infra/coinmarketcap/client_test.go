package coinmarketcap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	errs "github.com/NastyaGoryachaya/crypto-quotes-service/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Convert: "EUR",
		Timeout: 2 * time.Second,
	}, nil, slog.Default())
}

func TestFetchSymbols_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/cryptocurrency/listings/latest", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-CMC_PRO_API_KEY"))
		_, _ = w.Write([]byte(`{"status":{"error_code":0},"data":[
			{"id":1,"name":"Bitcoin","symbol":"BTC"},
			{"id":1027,"name":"Ethereum","symbol":"ETH"}
		]}`))
	})

	got, err := c.FetchSymbols(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Bitcoin", got[0].Name)
	assert.Equal(t, "BTC", got[0].Ticker)
	assert.Equal(t, "ETH", got[1].Ticker)
}

func TestFetchSymbols_BadStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":{"error_code":1002,"error_message":"API key missing."}}`))
	})

	_, err := c.FetchSymbols(context.Background())
	require.Error(t, err)
	assert.Equal(t, errs.KindUpstreamUnavailable, errs.KindOf(err))
}

func TestFetchSymbols_InvalidJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [`))
	})

	_, err := c.FetchSymbols(context.Background())
	require.Error(t, err)
	assert.Equal(t, errs.KindParse, errs.KindOf(err))
}

func TestFetchSymbols_MissingData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":{"error_code":0}}`))
	})

	_, err := c.FetchSymbols(context.Background())
	assert.Equal(t, errs.KindParse, errs.KindOf(err))
}

func TestFetchQuotes_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/cryptocurrency/quotes/latest", r.URL.Path)
		assert.Equal(t, "BTC,ETH,DOGE", r.URL.Query().Get("symbol"))
		assert.Equal(t, "EUR", r.URL.Query().Get("convert"))
		_, _ = w.Write([]byte(`{"data":{
			"BTC":[{"symbol":"BTC","quote":{"EUR":{"price":94336.68}}}],
			"ETH":[{"symbol":"ETH","quote":{"EUR":{"price":3123.456789012345678}}}],
			"DOGE":[]
		}}`))
	})

	got, err := c.FetchQuotes(context.Background(), []string{"BTC", "ETH", "DOGE"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "BTC", got[0].Ticker)
	assert.True(t, got[0].Price.Equal(decimal.RequireFromString("94336.68")))
	assert.True(t, got[1].Price.Equal(decimal.RequireFromString("3123.456789012345678")), "price decoded without float rounding")
}

func TestFetchQuotes_EmptyInput(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.FetchQuotes(context.Background(), nil)
	assert.True(t, errors.Is(err, errs.ErrEmptySymbols))
	assert.False(t, called, "no request for empty input")
}

func TestFetchQuotes_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewClient(Config{BaseURL: base, Convert: "EUR", Timeout: time.Second}, nil, slog.Default())
	_, err := c.FetchQuotes(context.Background(), []string{"BTC"})
	assert.Equal(t, errs.KindUpstreamUnavailable, errs.KindOf(err))
}
