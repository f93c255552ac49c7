package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/procuremart/internal/domain/errors"
	"github.com/polkiloo/procuremart/internal/domain/model"
	"github.com/polkiloo/procuremart/internal/server/http/dto"
	"github.com/polkiloo/procuremart/internal/server/http/middleware"
)

// CurrentActor extracts the authenticated actor from context.
func CurrentActor(c *gin.Context) model.Actor {
	val, ok := c.Get(middleware.ActorContextKey)
	if !ok {
		return model.Actor{}
	}
	actor, _ := val.(model.Actor)
	return actor
}

// respondError renders err with the HTTP status registered for its kind.
// Errors outside the taxonomy are attached to the context for the request
// logger and rendered as INTERNAL without their message.
func respondError(c *gin.Context, err error) {
	typed, ok := domainErrors.As(err)
	if !ok {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
			Kind:   string(domainErrors.KindInternal),
			Reason: "internal error",
		})
		return
	}

	meta := domainErrors.MetadataFor(typed.Kind)
	if meta.HTTPStatus >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(meta.HTTPStatus, dto.ErrorResponse{
		Kind:   string(typed.Kind),
		Reason: typed.Reason,
		From:   string(typed.From),
		To:     string(typed.To),
	})
}

func badRequest(c *gin.Context, reason string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
		Kind:   string(domainErrors.KindInvalidInput),
		Reason: reason,
	})
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func toOrderResponse(o *model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:                 o.ID.String(),
		ClientID:           o.ClientID,
		SupplierID:         o.SupplierID,
		Amount:             o.Amount,
		Status:             string(o.Status),
		Items:              o.Items,
		PaymentReference:   o.PaymentReference,
		PaymentNotes:       o.PaymentNotes,
		PaymentSubmittedAt: o.PaymentSubmittedAt,
		PaymentConfirmedAt: o.PaymentConfirmedAt,
		PaymentConfirmedBy: o.PaymentConfirmedBy,
		PaymentReceiptURL:  o.PaymentReceiptURL,
		AdminVerified:      o.AdminVerified,
		AdminVerifiedBy:    o.AdminVerifiedBy,
		AdminVerifiedAt:    o.AdminVerifiedAt,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
	if o.QuoteID != nil {
		id := o.QuoteID.String()
		resp.QuoteID = &id
	}
	return resp
}
