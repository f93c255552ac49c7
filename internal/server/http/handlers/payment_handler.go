package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/procuremart/internal/domain/model"
	"github.com/polkiloo/procuremart/internal/server/http/dto"
)

// PaymentHandler exposes the payment reference workflow.
type PaymentHandler struct {
	facade PaymentFacade
}

func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// SubmitReference handles POST /api/orders/:id/payment/reference.
func (h *PaymentHandler) SubmitReference(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.SubmitReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request body")
		return
	}

	order, err := h.facade.SubmitPaymentReference(c.Request.Context(), id, CurrentActor(c), req.Reference, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Confirm handles POST /api/orders/:id/payment/confirm. The body is optional.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ConfirmPaymentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "malformed request body")
			return
		}
	}

	order, err := h.facade.ConfirmPayment(c.Request.Context(), id, CurrentActor(c), req.Reference, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Reject handles POST /api/orders/:id/payment/reject.
func (h *PaymentHandler) Reject(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.RejectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request body")
		return
	}

	order, err := h.facade.RejectPayment(c.Request.Context(), id, CurrentActor(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Audit handles GET /api/orders/:id/payment/audit.
func (h *PaymentHandler) Audit(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	entries, err := h.facade.PaymentAudit(c.Request.Context(), id, CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, toAuditEntryResponse(e))
	}
	c.JSON(http.StatusOK, response)
}

func toAuditEntryResponse(e model.PaymentAuditEntry) dto.AuditEntryResponse {
	return dto.AuditEntryResponse{
		ID:               e.ID.String(),
		OrderID:          e.OrderID.String(),
		ActorUserID:      e.ActorUserID,
		ActorRole:        string(e.ActorRole),
		Action:           string(e.Action),
		FromStatus:       string(e.FromStatus),
		ToStatus:         string(e.ToStatus),
		PaymentReference: e.PaymentReference,
		Notes:            e.Notes,
		Metadata:         e.Metadata,
		CreatedAt:        e.CreatedAt,
	}
}
