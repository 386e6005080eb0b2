package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/config"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/infra/coinmarketcap"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/infra/db"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/infra/exchangerates"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/interfaces"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/metrics"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/repository/memory"
	repopg "github.com/NastyaGoryachaya/crypto-quotes-service/internal/repository/postgres"
	reporedis "github.com/NastyaGoryachaya/crypto-quotes-service/internal/repository/redis"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/scheduler"
	quotesvc "github.com/NastyaGoryachaya/crypto-quotes-service/internal/service/quotes"
	ratesvc "github.com/NastyaGoryachaya/crypto-quotes-service/internal/service/rates"
	symbolsvc "github.com/NastyaGoryachaya/crypto-quotes-service/internal/service/symbols"
	warmupsvc "github.com/NastyaGoryachaya/crypto-quotes-service/internal/service/warmup"
	botpkg "github.com/NastyaGoryachaya/crypto-quotes-service/internal/transport/bot"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/transport/httptransport"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

type App struct {
	cfg *config.Config
	log *slog.Logger

	db    *pgxpool.Pool
	redis redis.UniversalClient
	e     *echo.Echo
	serv  *http.Server

	symbols symbolsvc.Service
	rates   ratesvc.Service
	quotes  quotesvc.Service
	warmup  warmupsvc.Service

	updater *scheduler.Scheduler

	bot *botpkg.Bot
}

func NewApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	app := &App{cfg: cfg, log: log}

	var (
		rec      metrics.Recorder = metrics.Nop{}
		gatherer prometheus.Gatherer
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		rec = metrics.NewPrometheus(reg)
		gatherer = reg
	}

	cache, pruner, err := app.initCache(ctx)
	if err != nil {
		app.closeStores()
		return nil, err
	}

	cmc := coinmarketcap.NewClient(coinmarketcap.Config{
		BaseURL:       cfg.CoinMarketCap.BaseURL,
		APIKey:        cfg.CoinMarketCap.APIKey,
		ListingsPath:  cfg.CoinMarketCap.ListingsPath,
		QuotesPath:    cfg.CoinMarketCap.QuotesPath,
		ListingsLimit: cfg.CoinMarketCap.ListingsLimit,
		Convert:       cfg.ExchangeRates.BaseCurrency,
		Timeout:       cfg.CoinMarketCap.Timeout,
		UserAgent:     cfg.CoinMarketCap.UserAgent,
	}, rec, log)

	fx := exchangerates.NewClient(exchangerates.Config{
		BaseURL:      cfg.ExchangeRates.BaseURL,
		APIKey:       cfg.ExchangeRates.APIKey,
		LatestPath:   cfg.ExchangeRates.LatestPath,
		BaseCurrency: cfg.ExchangeRates.BaseCurrency,
		Currencies:   cfg.ExchangeRates.Currencies,
		Timeout:      cfg.ExchangeRates.Timeout,
		UserAgent:    cfg.ExchangeRates.UserAgent,
	}, rec, log)

	app.symbols = symbolsvc.NewService(cmc, cache, symbolsvc.Config{
		CacheKey:       cfg.Cache.SymbolsKey,
		TTL:            cfg.Cache.SymbolsTTL,
		RefreshTimeout: cfg.CoinMarketCap.Timeout,
	}, rec, log)
	app.rates = ratesvc.NewService(fx, cache, ratesvc.Config{
		CacheKey:       cfg.Cache.RatesKey,
		TTL:            cfg.Cache.RatesTTL,
		RefreshTimeout: cfg.ExchangeRates.Timeout,
	}, rec, log)
	app.quotes = quotesvc.NewService(cmc, app.symbols, app.rates, cfg.ExchangeRates.BaseCurrency, rec, log)
	app.warmup = warmupsvc.NewService(app.symbols, app.rates, pruner, log)

	routerCfg := httptransport.RouterConfig{
		Gatherer:    gatherer,
		MetricsPath: cfg.Metrics.Path,
	}
	if cfg.RateLimit.Enabled {
		lim, err := httptransport.NewIPLimiter(cfg.RateLimit.Rate)
		if err != nil {
			app.closeStores()
			return nil, fmt.Errorf("rate limit %q: %w", cfg.RateLimit.Rate, err)
		}
		routerCfg.Limiter = lim
	}

	qh := httptransport.NewQuotesHandler(log, app.quotes, app.symbols, cfg.Server.RequestTimeout)
	app.e = httptransport.NewRouter(qh, routerCfg, log)

	app.serv = &http.Server{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		Handler:      app.e,
	}

	if cfg.Scheduler.Enabled {
		app.updater = scheduler.NewScheduler(app.warmup, cfg.Scheduler.Interval, log)
	}

	if cfg.Telegram.Enabled {
		botApp, err := botpkg.New(cfg.Telegram, app.quotes, app.symbols, cfg.Server.RequestTimeout, log)
		if err != nil {
			log.Error("telegram init failed", slog.String("error", err.Error()))
			app.closeStores()
			return nil, err
		}
		app.bot = botApp
	}

	log.Info("app initialized",
		slog.String("cache_driver", cfg.Cache.Driver),
		slog.String("base_currency", cfg.ExchangeRates.BaseCurrency),
		slog.Bool("metrics_enabled", cfg.Metrics.Enabled),
		slog.Bool("telegram_enabled", cfg.Telegram.Enabled),
		slog.String("http_addr", cfg.Server.Addr),
	)
	return app, nil
}

// initCache — хранилище снапшотов по cache.driver. pruner может быть nil.
func (a *App) initCache(ctx context.Context) (interfaces.Cache, interfaces.Pruner, error) {
	switch a.cfg.Cache.Driver {
	case config.CacheDriverPostgres:
		pool, err := db.NewPool(&a.cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		a.db = pool
		repo := repopg.NewCacheRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, nil, fmt.Errorf("postgres schema: %w", err)
		}
		return repo, repo, nil
	case config.CacheDriverRedis:
		client, err := db.NewRedis(&a.cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		a.redis = client
		// истёкшие ключи redis удаляет сам
		return reporedis.NewCache(client, a.cfg.Redis.KeyPrefix), nil, nil
	default:
		mem := memory.NewCache()
		return mem, mem, nil
	}
}

func (a *App) Run(ctx context.Context) error {
	if a.updater != nil {
		a.log.Info("starting updater")
		go a.updater.Start(ctx)
	}

	if a.bot != nil {
		a.log.Info("starting bot")
		a.bot.Start()
	}

	errCh := make(chan error, 1)
	a.log.Info("starting server", slog.String("addr", a.cfg.Server.Addr))
	go func() {
		if err := a.e.StartServer(a.serv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", slog.String("error", err.Error()))
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}
	if err := a.Shutdown(context.Background()); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

func (a *App) Shutdown(ctx context.Context) error {
	shCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if a.e != nil {
		if err := a.e.Shutdown(shCtx); err != nil {
			a.log.Error("http shutdown error", slog.String("error", err.Error()))
			shutdownErr = err
		}
	}

	if a.bot != nil {
		a.bot.Stop()
	}

	a.closeStores()

	a.log.Info("application stopped")
	return shutdownErr
}

func (a *App) closeStores() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("redis close error", slog.String("error", err.Error()))
		}
		a.redis = nil
	}
}
