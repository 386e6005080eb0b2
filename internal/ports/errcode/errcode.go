package errcode

import (
	"net/http"

	errs "github.com/NastyaGoryachaya/crypto-quotes-service/internal/errors"
)

type Code string

const (
	BadRequest          Code = "BAD_REQUEST"
	UpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	UpstreamBadResponse Code = "UPSTREAM_BAD_RESPONSE"
	RateLimited         Code = "RATE_LIMITED"
	Internal            Code = "INTERNAL_ERROR"
)

// FromError — код ответа по категории ошибки сервиса.
func FromError(err error) Code {
	switch errs.KindOf(err) {
	case errs.KindValidation:
		return BadRequest
	case errs.KindUpstreamUnavailable:
		return UpstreamUnavailable
	case errs.KindParse:
		return UpstreamBadResponse
	default:
		return Internal
	}
}

// HTTPStatus — HTTP-статус для кода.
func HTTPStatus(code Code) int {
	switch code {
	case BadRequest:
		return http.StatusBadRequest
	case UpstreamUnavailable, UpstreamBadResponse:
		return http.StatusBadGateway
	case RateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
