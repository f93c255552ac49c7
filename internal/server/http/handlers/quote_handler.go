package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/procuremart/internal/domain/model"
	"github.com/polkiloo/procuremart/internal/server/http/dto"
)

type QuoteHandler struct {
	facade QuoteFacade
}

func NewQuoteHandler(facade QuoteFacade) *QuoteHandler {
	return &QuoteHandler{facade: facade}
}

// Accept handles POST /api/quotes/:id/accept. A new order answers 201, a
// repeated acceptance answers 200 with the existing order.
func (h *QuoteHandler) Accept(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	acceptance, err := h.facade.AcceptQuote(c.Request.Context(), id, CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if acceptance.Created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.AcceptanceResponse{
		Quote:   toQuoteResponse(acceptance.Quote),
		Order:   toOrderResponse(acceptance.Order),
		Created: acceptance.Created,
	})
}

func toQuoteResponse(q *model.Quote) dto.QuoteResponse {
	return dto.QuoteResponse{
		ID:            q.ID.String(),
		RFQID:         q.RFQID.String(),
		SupplierID:    q.SupplierID,
		SupplierPrice: q.SupplierPrice,
		MarginPercent: q.MarginPercent,
		FinalPrice:    q.FinalPrice,
		Status:        string(q.Status),
	}
}
