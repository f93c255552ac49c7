// Package errors defines the coded error taxonomy of the engine. Every error
// carries a stable Kind plus a human-readable reason.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"

	"github.com/polkiloo/procuremart/internal/domain/model"
)

// Kind is a stable machine-readable error code.
type Kind string

const (
	KindNotFound               Kind = "NOT_FOUND"
	KindQuoteNotFound          Kind = "QUOTE_NOT_FOUND"
	KindInvalidQuoteAmount     Kind = "INVALID_QUOTE_AMOUNT"
	KindQuoteNotAcceptable     Kind = "QUOTE_NOT_ACCEPTABLE"
	KindCreditLimitExceeded    Kind = "CREDIT_LIMIT_EXCEEDED"
	KindInvalidCreditLimit     Kind = "INVALID_CREDIT_LIMIT"
	KindOrderCreationFailed    Kind = "ORDER_CREATION_FAILED"
	KindInvalidTransition      Kind = "INVALID_TRANSITION"
	KindConcurrentUpdateFailed Kind = "CONCURRENT_UPDATE_FAILED"
	KindUnauthorized           Kind = "UNAUTHORIZED"
	KindDuplicateReference     Kind = "DUPLICATE_REFERENCE"
	KindEmptyReference         Kind = "EMPTY_REFERENCE"
	KindEmptyReason            Kind = "EMPTY_REASON"
	KindAlreadyExists          Kind = "ALREADY_EXISTS"
	KindInvalidCredentials     Kind = "INVALID_CREDENTIALS"
	KindInvalidInput           Kind = "INVALID_INPUT"
	KindInternal               Kind = "INTERNAL"
)

// Metadata describes how a kind surfaces to callers.
type Metadata struct {
	HTTPStatus int
	Retryable  bool
}

var metadataByKind = map[Kind]Metadata{
	KindNotFound:               {HTTPStatus: http.StatusNotFound},
	KindQuoteNotFound:          {HTTPStatus: http.StatusNotFound},
	KindInvalidQuoteAmount:     {HTTPStatus: http.StatusUnprocessableEntity},
	KindQuoteNotAcceptable:     {HTTPStatus: http.StatusConflict},
	KindCreditLimitExceeded:    {HTTPStatus: http.StatusPaymentRequired},
	KindInvalidCreditLimit:     {HTTPStatus: http.StatusUnprocessableEntity},
	KindOrderCreationFailed:    {HTTPStatus: http.StatusInternalServerError, Retryable: true},
	KindInvalidTransition:      {HTTPStatus: http.StatusConflict},
	KindConcurrentUpdateFailed: {HTTPStatus: http.StatusConflict, Retryable: true},
	KindUnauthorized:           {HTTPStatus: http.StatusForbidden},
	KindDuplicateReference:     {HTTPStatus: http.StatusConflict},
	KindEmptyReference:         {HTTPStatus: http.StatusBadRequest},
	KindEmptyReason:            {HTTPStatus: http.StatusBadRequest},
	KindAlreadyExists:          {HTTPStatus: http.StatusConflict},
	KindInvalidCredentials:     {HTTPStatus: http.StatusUnauthorized},
	KindInvalidInput:           {HTTPStatus: http.StatusBadRequest},
	KindInternal:               {HTTPStatus: http.StatusInternalServerError, Retryable: true},
}

// MetadataFor returns the metadata registered for kind, falling back to
// internal error metadata.
func MetadataFor(kind Kind) Metadata {
	if meta, ok := metadataByKind[kind]; ok {
		return meta
	}
	return metadataByKind[KindInternal]
}

// Error is a domain error with a kind, a reason and an optional cause.
// Transition errors also carry the attempted edge.
type Error struct {
	Kind   Kind
	Reason string
	From   model.OrderStatus
	To     model.OrderStatus
	cause  error
}

// New builds an error of the given kind.
func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Wrap builds an error of the given kind around cause.
func Wrap(kind Kind, cause error, reason string) *Error {
	return &Error{Kind: kind, Reason: reason, cause: cause}
}

// InvalidTransition reports a denied status edge.
func InvalidTransition(from, to model.OrderStatus) *Error {
	return &Error{
		Kind:   KindInvalidTransition,
		Reason: fmt.Sprintf("transition %s -> %s is not allowed", from, to),
		From:   from,
		To:     to,
	}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// As extracts the first *Error in the chain.
func As(err error) (*Error, bool) {
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	if typed, ok := As(err); ok {
		return typed.Kind
	}
	return KindInternal
}

var (
	ErrNotFound               = New(KindNotFound, "not found")
	ErrQuoteNotFound          = New(KindQuoteNotFound, "quote not found")
	ErrInvalidQuoteAmount     = New(KindInvalidQuoteAmount, "quote price must be positive")
	ErrQuoteNotAcceptable     = New(KindQuoteNotAcceptable, "quote cannot be accepted")
	ErrCreditLimitExceeded    = New(KindCreditLimitExceeded, "credit limit exceeded")
	ErrInvalidCreditLimit     = New(KindInvalidCreditLimit, "invalid credit limit")
	ErrOrderCreationFailed    = New(KindOrderCreationFailed, "order creation failed")
	ErrInvalidTransition      = New(KindInvalidTransition, "invalid status transition")
	ErrConcurrentUpdateFailed = New(KindConcurrentUpdateFailed, "concurrent update failed")
	ErrUnauthorized           = New(KindUnauthorized, "operation not permitted")
	ErrDuplicateReference     = New(KindDuplicateReference, "payment reference already in use")
	ErrEmptyReference         = New(KindEmptyReference, "payment reference must not be empty")
	ErrEmptyReason            = New(KindEmptyReason, "rejection reason must not be empty")
	ErrAlreadyExists          = New(KindAlreadyExists, "already exists")
	ErrInvalidCredentials     = New(KindInvalidCredentials, "invalid credentials")
	ErrInvalidInput           = New(KindInvalidInput, "invalid input")
)
