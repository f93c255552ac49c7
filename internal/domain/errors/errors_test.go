package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/polkiloo/procuremart/internal/domain/model"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  *Error
	}{
		{"not found", ErrNotFound},
		{"quote not found", ErrQuoteNotFound},
		{"invalid amount", ErrInvalidQuoteAmount},
		{"credit", ErrCreditLimitExceeded},
		{"creation", ErrOrderCreationFailed},
		{"transition", ErrInvalidTransition},
		{"concurrency", ErrConcurrentUpdateFailed},
		{"unauthorized", ErrUnauthorized},
		{"duplicate", ErrDuplicateReference},
		{"empty reference", ErrEmptyReference},
		{"empty reason", ErrEmptyReason},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fresh := New(tc.err.Kind, "custom reason")
			if !stdErrors.Is(fresh, tc.err) {
				t.Fatalf("expected %v to match sentinel %v", fresh, tc.err)
			}
			if stdErrors.Is(fresh, New(KindInternal, "internal")) {
				t.Fatalf("did not expect %v to match internal", fresh)
			}
		})
	}
}

func TestInvalidTransitionCarriesEdge(t *testing.T) {
	err := fmt.Errorf("update: %w", InvalidTransition(model.OrderStatusPendingPayment, model.OrderStatusCompleted))

	if !stdErrors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	typed, ok := As(err)
	if !ok {
		t.Fatal("expected typed error")
	}
	if typed.From != model.OrderStatusPendingPayment || typed.To != model.OrderStatusCompleted {
		t.Fatalf("unexpected edge %s -> %s", typed.From, typed.To)
	}
	if !strings.Contains(typed.Reason, "PENDING_PAYMENT -> COMPLETED") {
		t.Fatalf("reason lacks edge: %q", typed.Reason)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stdErrors.New("connection reset")
	err := Wrap(KindOrderCreationFailed, cause, "insert order")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected cause to be reachable")
	}
	if !stdErrors.Is(err, ErrOrderCreationFailed) {
		t.Fatal("expected kind match")
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("message lacks cause: %q", err.Error())
	}
}

func TestKindOfAndMetadata(t *testing.T) {
	if KindOf(stdErrors.New("plain")) != KindInternal {
		t.Fatal("expected foreign errors to be internal")
	}
	if KindOf(fmt.Errorf("wrap: %w", ErrDuplicateReference)) != KindDuplicateReference {
		t.Fatal("expected wrapped kind")
	}
	if MetadataFor(KindNotFound).HTTPStatus != http.StatusNotFound {
		t.Fatal("unexpected status for not found")
	}
	if MetadataFor(Kind("MYSTERY")).HTTPStatus != http.StatusInternalServerError {
		t.Fatal("expected fallback to internal metadata")
	}
	if !MetadataFor(KindConcurrentUpdateFailed).Retryable {
		t.Fatal("concurrency failures are retryable")
	}
}
