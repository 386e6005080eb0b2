package bot

import (
	"errors"

	errs "github.com/NastyaGoryachaya/crypto-quotes-service/internal/errors"
)

func translateError(err error) string {
	switch {
	case errors.Is(err, errs.ErrNoSymbolsProvided):
		return "Укажи тикеры: /quotes BTC,ETH"
	case errors.Is(err, errs.ErrNoValidSymbols):
		return "Монеты не найдены. Список доступных: /symbols"
	}
	switch errs.KindOf(err) {
	case errs.KindValidation:
		return "Некорректный запрос"
	case errs.KindUpstreamUnavailable:
		return "Провайдер котировок недоступен, попробуйте позже"
	case errs.KindParse:
		return "Провайдер вернул некорректный ответ, попробуйте позже"
	default:
		return "Внутренняя ошибка сервиса, попробуйте позже"
	}
}
