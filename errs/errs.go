package errs

import (
	"context"
	"errors"
	"fmt"

	"github.com/nakamauwu/chatsync/validator"
	goerrs "github.com/nicolasparada/go-errs"
)

var (
	Network         = NewNetworkError("network error, please check your connection")
	Timeout         = NewTimeoutError("request timed out")
	Server          = NewServerError("server error")
	NotConnected    = &Error{Kind: KindNotConnected, Message: "transport not connected"}
	Unauthenticated = goerrs.Unauthenticated
)

// Error is a client side failure that is not a server rejection.
// Server rejections use the go-errs kinds so they keep their HTTP meaning.
type Error struct {
	Kind    Kind
	Message string
	Field   *string
}

type Kind string

const (
	KindNetwork         Kind = "network"
	KindNotConnected    Kind = "not_connected"
	KindTimeout         Kind = "timeout"
	KindServer          Kind = "server"
	KindInvalidArgument Kind = "invalid_argument"
	KindPartialSuccess  Kind = "partial_success"
)

func NewNetworkError(message string) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: message,
	}
}

func NewTimeoutError(message string) *Error {
	return &Error{
		Kind:    KindTimeout,
		Message: message,
	}
}

func NewServerError(message string) *Error {
	return &Error{
		Kind:    KindServer,
		Message: message,
	}
}

func NewInvalidArgumentError(field, message string) *Error {
	return &Error{
		Kind:    KindInvalidArgument,
		Message: message,
		Field:   &field,
	}
}

func NewPartialSuccessError(message string) *Error {
	return &Error{
		Kind:    KindPartialSuccess,
		Message: message,
	}
}

func (e *Error) Error() string {
	if e.Field != nil {
		return fmt.Sprintf("%s (field: %s): %s", e.Kind, *e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any *Error with the same kind, so callers can do
// errors.Is(err, errs.Network).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func kindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsRetriable reports whether the failure happened before the server could
// answer. Those are the only errors worth offering a retry for.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	kind, ok := kindOf(err)
	return ok && (kind == KindNetwork || kind == KindTimeout || kind == KindNotConnected)
}

func IsUnauthenticated(err error) bool {
	return errors.Is(err, goerrs.Unauthenticated)
}

func IsValidation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, goerrs.InvalidArgument) {
		return true
	}
	var v *validator.Validator
	if errors.As(err, &v) {
		return true
	}
	kind, ok := kindOf(err)
	return ok && kind == KindInvalidArgument
}

// IsPartial reports a mutation that succeeded with a secondary warning.
// Callers treat it as success.
func IsPartial(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindPartialSuccess
}
