package httptransport

import (
	"errors"
	"log/slog"
	"net/http"

	errs "github.com/NastyaGoryachaya/crypto-quotes-service/internal/errors"
	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/ports/errcode"
	"github.com/labstack/echo/v4"
)

// ErrorResponse — тело ответа с ошибкой.
type ErrorResponse struct {
	Error   errcode.Code `json:"error"`
	Message string       `json:"message"`
}

func (h *QuotesHandler) writeError(c echo.Context, op string, err error) error {
	code := errcode.FromError(err)
	status := errcode.HTTPStatus(code)

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("op", op),
			slog.String("code", string(code)),
			slog.String("error", err.Error()),
		)
	} else {
		h.logger.Debug("request rejected",
			slog.String("op", op),
			slog.String("code", string(code)),
			slog.String("error", err.Error()),
		)
	}
	return c.JSON(status, ErrorResponse{Error: code, Message: publicMessage(code, err)})
}

// publicMessage — наружу отдаём только текст категории, без деталей провайдера
func publicMessage(code errcode.Code, err error) string {
	switch code {
	case errcode.BadRequest:
		var e *errs.Error
		if errors.As(err, &e) && e.Message != "" {
			return e.Message
		}
		return "bad request"
	case errcode.UpstreamUnavailable:
		return "upstream provider is unavailable"
	case errcode.UpstreamBadResponse:
		return "upstream provider returned an invalid response"
	case errcode.RateLimited:
		return "too many requests"
	default:
		return "internal server error"
	}
}
