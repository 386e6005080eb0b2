package bot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/pkg/botfmt"
	"gopkg.in/telebot.v4"
)

const symbolsLimit = 20

// handleStart — отправляет справку по доступным командам бота
func (b *Bot) handleStart(c telebot.Context) error {
	return c.Send("Привет! Доступные команды:\n" +
		"/quotes {тикеры} - цены монет во всех валютах, например /quotes BTC,ETH\n" +
		"/symbols - первые 20 монет каталога")
}

// handleQuotes — цены монет из аргументов команды
func (b *Bot) handleQuotes(c telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	return c.Send(b.quotesReply(ctx, c.Args()))
}

// handleSymbols — начало каталога
func (b *Bot) handleSymbols(c telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	return c.Send(b.symbolsReply(ctx))
}

func (b *Bot) quotesReply(ctx context.Context, args []string) string {
	requested := parseArgs(args)
	results, err := b.quotes.GetPrices(ctx, requested)
	if err != nil {
		b.logger.Warn("bot: /quotes failed",
			slog.Any("symbols", requested),
			slog.String("error", err.Error()),
		)
		return translateError(err)
	}
	if len(results) == 0 {
		return "Котировки не найдены"
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, botfmt.FormatResult(r))
	}
	return strings.Join(parts, "\n\n")
}

func (b *Bot) symbolsReply(ctx context.Context) string {
	list, err := b.symbols.GetSymbols(ctx)
	if err != nil {
		b.logger.Warn("bot: /symbols failed", slog.String("error", err.Error()))
		return translateError(err)
	}
	if len(list) == 0 {
		return "Каталог монет пуст"
	}
	return botfmt.FormatSymbols(list, symbolsLimit)
}

// parseArgs — "/quotes btc, eth doge" -> [btc eth doge]
func parseArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		for _, p := range strings.Split(a, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
