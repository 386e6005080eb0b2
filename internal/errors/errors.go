package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind — категория ошибки. Транспорт сам решает, в какой статус её превратить.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindUpstreamUnavailable
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindParse:
		return "parse"
	default:
		return "unexpected"
	}
}

// Error — ошибка с категорией и машинным кодом.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает по категории и коду, чтобы обёрнутые копии совпадали с sentinel-ошибками.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

var (
	ErrNoSymbolsProvided = &Error{Kind: KindValidation, Code: "quotes.no_symbols_provided", Message: "at least one symbol must be provided"}
	ErrNoValidSymbols    = &Error{Kind: KindValidation, Code: "quotes.no_valid_symbols", Message: "the symbols you provided are not valid"}
	ErrEmptySymbols      = &Error{Kind: KindValidation, Code: "provider.empty_symbols", Message: "symbol list must not be empty"}
)

// Upstream — внешний сервис недоступен или ответил неуспешным статусом.
func Upstream(code string, err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Code: code, Message: "upstream request failed", Err: err}
}

// Parse — ответ внешнего сервиса не удалось разобрать.
func Parse(code string, err error) *Error {
	return &Error{Kind: KindParse, Code: code, Message: "failed to decode upstream response", Err: err}
}

// Unexpected — всё остальное.
func Unexpected(code string, err error) *Error {
	return &Error{Kind: KindUnexpected, Code: code, Message: "unexpected error", Err: err}
}

// KindOf достаёт категорию из цепочки ошибок. Ошибки без категории считаются неожиданными.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}
