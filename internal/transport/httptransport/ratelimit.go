package httptransport

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/NastyaGoryachaya/crypto-quotes-service/internal/ports/errcode"
	"github.com/labstack/echo/v4"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// NewIPLimiter — лимитер в памяти процесса. rate в формате "<limit>-<S|M|H|D>", например "60-M".
func NewIPLimiter(rate string) (*limiter.Limiter, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}
	return limiter.New(memory.NewStore(), r), nil
}

// RateLimit — ограничение запросов по IP клиента.
func RateLimit(l *limiter.Limiter, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			lc, err := l.Get(c.Request().Context(), ip)
			if err != nil {
				logger.Error("rate limit check failed", slog.String("ip", ip), slog.String("error", err.Error()))
				return c.JSON(http.StatusInternalServerError, ErrorResponse{
					Error:   errcode.Internal,
					Message: publicMessage(errcode.Internal, err),
				})
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.FormatInt(lc.Limit, 10))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(lc.Remaining, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(lc.Reset, 10))

			if lc.Reached {
				logger.Warn("rate limit exceeded", slog.String("ip", ip), slog.Int64("limit", lc.Limit))
				return c.JSON(errcode.HTTPStatus(errcode.RateLimited), ErrorResponse{
					Error:   errcode.RateLimited,
					Message: publicMessage(errcode.RateLimited, nil),
				})
			}
			return next(c)
		}
	}
}
