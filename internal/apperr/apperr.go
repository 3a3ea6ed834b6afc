// Package apperr описывает классы ошибок сервиса депозитов.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindUnknown            Kind = ""
	KindMissingCredentials Kind = "missing_credentials"
	KindTransport          Kind = "transport_error"
	KindExchange           Kind = "exchange_error"
	KindNoAddress          Kind = "no_address_available"
	KindChainNotFound      Kind = "chain_not_found"
	KindPersistence        Kind = "persistence_error"
	KindInvalidInput       Kind = "invalid_input"
)

// Error — ошибка с классом. Code/Msg заполняются только для ошибок биржи.
type Error struct {
	Kind Kind
	Op   string
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Code != "" || e.Msg != "" {
		msg += fmt.Sprintf(" (code=%s msg=%s)", e.Code, e.Msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Exchange — ошибка, которую вернула сама биржа; код и текст сохраняются как есть
func Exchange(op, code, msg string) *Error {
	return &Error{Kind: KindExchange, Op: op, Code: code, Msg: msg}
}

func Invalid(op, msg string) *Error {
	return &Error{Kind: KindInvalidInput, Op: op, Msg: msg}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindChainNotFound, KindNoAddress:
		return http.StatusNotFound
	case KindExchange, KindTransport:
		return http.StatusBadGateway
	case KindMissingCredentials:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
