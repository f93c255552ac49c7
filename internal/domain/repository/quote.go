package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/procuremart/internal/domain/model"
)

// QuoteRepository describes persistence operations on quotes and RFQs.
type QuoteRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	GetRFQ(ctx context.Context, id uuid.UUID) (*model.RFQ, error)
	// CommitAcceptance atomically inserts order, marks the quote ACCEPTED
	// while it is still SENT_TO_CLIENT and closes its RFQ. It returns
	// ErrQuoteNotAcceptable when the quote left SENT_TO_CLIENT and
	// ErrAlreadyExists when an order for the quote already exists.
	CommitAcceptance(ctx context.Context, quote *model.Quote, order *model.Order) (*model.Order, error)
	// RejectSiblings marks every non-terminal quote of the RFQ other than
	// acceptedID as REJECTED and returns how many changed.
	RejectSiblings(ctx context.Context, rfqID, acceptedID uuid.UUID) (int64, error)
}
