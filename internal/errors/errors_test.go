package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
)

func TestIs_MatchesWrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("validate: %w", ErrNoValidSymbols)
	if !stderrors.Is(wrapped, ErrNoValidSymbols) {
		t.Fatal("expected wrapped sentinel to match")
	}
	if stderrors.Is(wrapped, ErrNoSymbolsProvided) {
		t.Fatal("different codes must not match")
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{ErrEmptySymbols, KindValidation},
		{Upstream("x", stderrors.New("down")), KindUpstreamUnavailable},
		{fmt.Errorf("step: %w", Parse("y", stderrors.New("eof"))), KindParse},
		{Unexpected("z", nil), KindUnexpected},
		{stderrors.New("plain"), KindUnexpected},
		{nil, KindUnexpected},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Fatalf("KindOf(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestUnwrap_ReachesCause(t *testing.T) {
	err := Upstream("coinmarketcap.quotes.request_failed", context.Canceled)
	if !stderrors.Is(err, context.Canceled) {
		t.Fatal("expected cause to be reachable")
	}
}

func TestError_Message(t *testing.T) {
	if got := ErrNoSymbolsProvided.Error(); got != "quotes.no_symbols_provided: at least one symbol must be provided" {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := Parse("p", stderrors.New("eof")).Error(); got != "p: failed to decode upstream response: eof" {
		t.Fatalf("unexpected message: %q", got)
	}
}
