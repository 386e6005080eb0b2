package errcode

import (
	"errors"
	"net/http"
	"testing"

	errs "github.com/NastyaGoryachaya/crypto-quotes-service/internal/errors"
)

func TestFromErrorAndStatus(t *testing.T) {
	cases := []struct {
		err    error
		code   Code
		status int
	}{
		{errs.ErrNoSymbolsProvided, BadRequest, http.StatusBadRequest},
		{errs.ErrNoValidSymbols, BadRequest, http.StatusBadRequest},
		{errs.Upstream("u", errors.New("x")), UpstreamUnavailable, http.StatusBadGateway},
		{errs.Parse("p", errors.New("x")), UpstreamBadResponse, http.StatusBadGateway},
		{errs.Unexpected("e", errors.New("x")), Internal, http.StatusInternalServerError},
		{errors.New("plain"), Internal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		code := FromError(tc.err)
		if code != tc.code {
			t.Fatalf("FromError(%v) = %s, want %s", tc.err, code, tc.code)
		}
		if got := HTTPStatus(code); got != tc.status {
			t.Fatalf("HTTPStatus(%s) = %d, want %d", code, got, tc.status)
		}
	}
	if HTTPStatus(RateLimited) != http.StatusTooManyRequests {
		t.Fatal("rate limited must map to 429")
	}
}
