package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Загрузка конфигурации: .env -> config.yaml -> переменные окружения (cleanenv)

const (
	CacheDriverMemory   = "memory"
	CacheDriverRedis    = "redis"
	CacheDriverPostgres = "postgres"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	CoinMarketCap CoinMarketCapConfig `yaml:"coinmarketcap"`
	ExchangeRates ExchangeRatesConfig `yaml:"exchange_rates"`
	Cache         CacheConfig         `yaml:"cache"`
	Redis         RedisConfig         `yaml:"redis"`
	Postgres      PostgresConfig      `yaml:"postgres"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Telegram      TelegramConfig      `yaml:"telegram"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Logger        LoggerConfig        `yaml:"logger"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env-default:"8s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type CoinMarketCapConfig struct {
	BaseURL       string        `yaml:"base_url" env:"CMC_BASE_URL" env-default:"https://pro-api.coinmarketcap.com"`
	APIKey        string        `yaml:"api_key" env:"CMC_API_KEY"`
	ListingsPath  string        `yaml:"listings_path" env-default:"/v1/cryptocurrency/listings/latest"`
	QuotesPath    string        `yaml:"quotes_path" env-default:"/v2/cryptocurrency/quotes/latest"`
	ListingsLimit int           `yaml:"listings_limit" env-default:"5000"`
	Timeout       time.Duration `yaml:"timeout" env-default:"8s"`
	UserAgent     string        `yaml:"user_agent" env-default:"crypto-quotes-service/1.0"`
}

type ExchangeRatesConfig struct {
	BaseURL      string        `yaml:"base_url" env:"EXCHANGE_RATES_BASE_URL" env-default:"https://api.exchangeratesapi.io"`
	APIKey       string        `yaml:"api_key" env:"EXCHANGE_RATES_API_KEY"`
	LatestPath   string        `yaml:"latest_path" env-default:"/v1/latest"`
	BaseCurrency string        `yaml:"base_currency" env:"BASE_CURRENCY" env-default:"EUR"`
	Currencies   []string      `yaml:"currencies" env:"EXCHANGE_CURRENCIES" env-default:"USD,BRL,GBP,AUD"`
	Timeout      time.Duration `yaml:"timeout" env-default:"8s"`
	UserAgent    string        `yaml:"user_agent" env-default:"crypto-quotes-service/1.0"`
}

type CacheConfig struct {
	Driver     string        `yaml:"driver" env:"CACHE_DRIVER" env-default:"memory"` // memory|redis|postgres
	SymbolsKey string        `yaml:"symbols_key" env-default:"crypto-symbols"`
	SymbolsTTL time.Duration `yaml:"symbols_ttl" env-default:"24h"`
	RatesKey   string        `yaml:"rates_key" env-default:"exchange-rates"`
	RatesTTL   time.Duration `yaml:"rates_ttl" env-default:"1h"`
}

type RedisConfig struct {
	Addrs     []string      `yaml:"addrs" env:"REDIS_ADDRS" env-default:"localhost:6379"`
	Password  string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB        int           `yaml:"db" env-default:"0"`
	KeyPrefix string        `yaml:"key_prefix" env-default:"cryptoquotes:"`
	Timeout   time.Duration `yaml:"timeout" env-default:"3s"`
}

type PostgresConfig struct {
	Host            string        `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User            string        `yaml:"user" env:"POSTGRES_USER" env-default:"postgres"`
	Password        string        `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"postgres"`
	DBName          string        `yaml:"dbname" env:"POSTGRES_DB" env-default:"crypto"`
	SSLMode         string        `yaml:"sslmode" env-default:"disable"`
	Timeout         time.Duration `yaml:"timeout" env-default:"5s"`
	MaxConns        int32         `yaml:"max_conns" env-default:"10"`
	MinConns        int32         `yaml:"min_conns" env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env-default:"30m"`
}

type RateLimitConfig struct {
	Enabled bool   `yaml:"enabled" env-default:"true"`
	Rate    string `yaml:"rate" env:"RATE_LIMIT" env-default:"60-M"` // формат ulule/limiter: <limit>-<S|M|H|D>
}

type SchedulerConfig struct {
	Enabled  bool          `yaml:"enabled" env-default:"true"`
	Interval time.Duration `yaml:"interval" env-default:"30m"`
}

type TelegramConfig struct {
	Enabled         bool          `yaml:"enabled" env:"TELEGRAM_ENABLED" env-default:"false"`
	Token           string        `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
	LongPollTimeout time.Duration `yaml:"long_poll_timeout" env-default:"10s"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env-default:"true"`
	Path    string `yaml:"path" env-default:"/metrics"`
}

type LoggerConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`  // debug|info|warn|error
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"` // text|json
}

func LoadConfig() (*Config, error) {
	// .env в рабочей директории необязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	configPath := fetchConfigPath()
	if configPath != "" {
		if err := cleanenv.ReadConfig(configPath, cfg); err != nil {
			return nil, err
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate — проверка значений, которые нельзя исправить дефолтами.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ExchangeRates.BaseCurrency) == "" {
		return errors.New("exchange_rates.base_currency is empty")
	}
	if c.Cache.SymbolsKey == "" || c.Cache.RatesKey == "" {
		return errors.New("cache keys must not be empty")
	}
	if c.Cache.SymbolsKey == c.Cache.RatesKey {
		return errors.New("cache.symbols_key and cache.rates_key must differ")
	}
	if c.Cache.SymbolsTTL <= 0 || c.Cache.RatesTTL <= 0 {
		return errors.New("cache ttl must be positive")
	}
	switch c.Cache.Driver {
	case CacheDriverMemory, CacheDriverRedis, CacheDriverPostgres:
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		return errors.New("scheduler.interval must be positive")
	}
	if c.Telegram.Enabled && strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram enabled but TELEGRAM_BOT_TOKEN is empty")
	}
	return nil
}

func fetchConfigPath() string {
	var res string
	flag.StringVar(&res, "c", "", "config file path")
	flag.Parse()
	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}
