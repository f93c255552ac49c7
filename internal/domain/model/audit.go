package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// PaymentAction names a payment-relevant state change.
type PaymentAction string

const (
	PaymentActionReferenceSubmitted   PaymentAction = "REFERENCE_SUBMITTED"
	PaymentActionReferenceResubmitted PaymentAction = "REFERENCE_RESUBMITTED"
	PaymentActionPaymentConfirmed     PaymentAction = "PAYMENT_CONFIRMED"
	PaymentActionPaymentRejected      PaymentAction = "PAYMENT_REJECTED"
)

// PaymentAuditEntry is an immutable record of a payment action. Seq is
// assigned by the store on insert and grows with commit order per order;
// zero means not yet persisted.
type PaymentAuditEntry struct {
	Seq              int64
	ID               uuid.UUID
	OrderID          uuid.UUID
	ActorUserID      int64
	ActorRole        Role
	Action           PaymentAction
	FromStatus       OrderStatus
	ToStatus         OrderStatus
	PaymentReference *string
	Notes            *string
	Metadata         map[string]any
	CreatedAt        time.Time
}

// PaymentPhase is the payment sub-state reconstructed from audit history.
type PaymentPhase string

const (
	PaymentPhaseUnpaid    PaymentPhase = "UNPAID"
	PaymentPhaseSubmitted PaymentPhase = "SUBMITTED"
	PaymentPhaseRejected  PaymentPhase = "REJECTED"
	PaymentPhaseConfirmed PaymentPhase = "CONFIRMED"
)

// ReplayAnomaly points at an audit entry that breaks payment sequencing.
type ReplayAnomaly struct {
	Index  int
	Action PaymentAction
	Reason string
}

func (a ReplayAnomaly) String() string {
	return fmt.Sprintf("entry %d (%s): %s", a.Index, a.Action, a.Reason)
}

// PaymentHistory is the result of replaying an order's audit log.
type PaymentHistory struct {
	Phase         PaymentPhase
	Submissions   int
	Rejections    int
	Confirmations int
	LastReference *string
	Anomalies     []ReplayAnomaly
}

// Consistent reports whether the replay found no anomalies.
func (h PaymentHistory) Consistent() bool { return len(h.Anomalies) == 0 }

var actionTargets = map[PaymentAction]OrderStatus{
	PaymentActionReferenceSubmitted:   OrderStatusAwaitingConfirmation,
	PaymentActionReferenceResubmitted: OrderStatusAwaitingConfirmation,
	PaymentActionPaymentConfirmed:     OrderStatusPaymentConfirmed,
	PaymentActionPaymentRejected:      OrderStatusPendingPayment,
}

// ReplayPaymentHistory reconstructs the payment history of one order from its
// audit entries. Entries are ordered by Seq when both carry one, otherwise
// by CreatedAt, so clock skew between writers cannot reorder persisted
// history.
func ReplayPaymentHistory(entries []PaymentAuditEntry) PaymentHistory {
	sorted := make([]PaymentAuditEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Seq > 0 && sorted[j].Seq > 0 {
			return sorted[i].Seq < sorted[j].Seq
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	h := PaymentHistory{Phase: PaymentPhaseUnpaid}
	flag := func(i int, e PaymentAuditEntry, format string, args ...any) {
		h.Anomalies = append(h.Anomalies, ReplayAnomaly{Index: i, Action: e.Action, Reason: fmt.Sprintf(format, args...)})
	}

	for i, e := range sorted {
		target, known := actionTargets[e.Action]
		if !known {
			flag(i, e, "unknown action")
			continue
		}
		if e.ToStatus != target {
			flag(i, e, "recorded target %s, expected %s", e.ToStatus, target)
		}

		switch e.Action {
		case PaymentActionReferenceSubmitted:
			if h.Submissions > 0 {
				flag(i, e, "first submission recorded after %d earlier submissions", h.Submissions)
			}
			h.Submissions++
			h.LastReference = e.PaymentReference
			h.Phase = PaymentPhaseSubmitted
		case PaymentActionReferenceResubmitted:
			if h.Submissions == 0 {
				flag(i, e, "resubmission without a prior submission")
			} else if h.Phase != PaymentPhaseRejected {
				flag(i, e, "resubmission while payment is %s", h.Phase)
			}
			h.Submissions++
			h.LastReference = e.PaymentReference
			h.Phase = PaymentPhaseSubmitted
		case PaymentActionPaymentConfirmed:
			switch {
			case h.Phase == PaymentPhaseSubmitted:
			case h.Phase == PaymentPhaseConfirmed && e.FromStatus == OrderStatusDisputed:
			default:
				flag(i, e, "confirmation while payment is %s", h.Phase)
			}
			h.Confirmations++
			if e.PaymentReference != nil {
				h.LastReference = e.PaymentReference
			}
			h.Phase = PaymentPhaseConfirmed
		case PaymentActionPaymentRejected:
			if h.Phase != PaymentPhaseSubmitted {
				flag(i, e, "rejection while payment is %s", h.Phase)
			}
			if e.FromStatus != OrderStatusAwaitingConfirmation {
				flag(i, e, "rejection from %s", e.FromStatus)
			}
			h.Rejections++
			h.Phase = PaymentPhaseRejected
		}
	}
	return h
}
