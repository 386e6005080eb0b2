package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/config"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/domain"
	"gopkg.in/telebot.v4"
)

type QuotesService interface {
	GetPrices(ctx context.Context, requested []string) ([]domain.PricedResult, error)
}

type SymbolsService interface {
	GetSymbols(ctx context.Context) ([]domain.Symbol, error)
}

// Bot — телеграм-бот поверх агрегатора котировок
type Bot struct {
	bot     *telebot.Bot
	quotes  QuotesService
	symbols SymbolsService
	timeout time.Duration
	logger  *slog.Logger
}

// New создаёт бота и регистрирует команды
func New(cfg config.TelegramConfig, quotes QuotesService, symbols SymbolsService, timeout time.Duration, logger *slog.Logger) (*Bot, error) {
	pollTimeout := cfg.LongPollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 10 * time.Second
	}

	b, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.Token,
		Poller: &telebot.LongPoller{Timeout: pollTimeout},
	})
	if err != nil {
		return nil, err
	}

	bot := newBot(quotes, symbols, timeout, logger)
	bot.bot = b

	// маршруты команд
	b.Handle("/start", bot.handleStart)
	b.Handle("/quotes", bot.handleQuotes)
	b.Handle("/symbols", bot.handleSymbols)
	return bot, nil
}

func newBot(quotes QuotesService, symbols SymbolsService, timeout time.Duration, logger *slog.Logger) *Bot {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Bot{
		quotes:  quotes,
		symbols: symbols,
		timeout: timeout,
		logger:  logger,
	}
}

// Start запускает long polling в отдельной горутине
func (b *Bot) Start() {
	go b.bot.Start()
}

// Stop останавливает бота
func (b *Bot) Stop() {
	b.bot.Stop()
}
