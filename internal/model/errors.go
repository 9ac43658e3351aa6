package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies tool-level failures.
type ErrorKind string

const (
	KindInvalidAddress      ErrorKind = "invalid_address"
	KindInvalidAmount       ErrorKind = "invalid_amount"
	KindInvalidSlippage     ErrorKind = "invalid_slippage"
	KindUnknownToken        ErrorKind = "unknown_token"
	KindTokenNotRegistered  ErrorKind = "token_not_registered"
	KindPoolNotFound        ErrorKind = "pool_not_found"
	KindInsufficientBalance ErrorKind = "insufficient_balance"
	KindChainUnavailable    ErrorKind = "chain_unavailable"
	KindInternalError       ErrorKind = "internal_error"
)

// Error is a classified failure. Provider errors are wrapped into one of
// these at the chain boundary; raw transport errors never reach tool callers.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errf builds a classified error with a formatted message.
func Errf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapErr builds a classified error that keeps the cause for errors.Is/As.
func WrapErr(kind ErrorKind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to internal_error.
func KindOf(err error) ErrorKind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindInternalError
}

// MessageOf extracts the human-readable message from an error chain.
func MessageOf(err error) string {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
