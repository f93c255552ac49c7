package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/procuremart/internal/domain/model"
	"github.com/polkiloo/procuremart/internal/server/http/dto"
)

// CreditHandler serves client credit profiles.
type CreditHandler struct {
	facade CreditFacade
}

func NewCreditHandler(facade CreditFacade) *CreditHandler {
	return &CreditHandler{facade: facade}
}

// Profile handles GET /api/clients/:id/credit.
func (h *CreditHandler) Profile(c *gin.Context) {
	clientID, ok := int64Param(c, "id")
	if !ok {
		return
	}
	profile, err := h.facade.CreditProfile(c.Request.Context(), clientID, CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCreditProfileResponse(profile))
}

// SetLimit handles PUT /api/clients/:id/credit.
func (h *CreditHandler) SetLimit(c *gin.Context) {
	clientID, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req dto.CreditLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "limit must be a decimal number")
		return
	}

	profile, err := h.facade.SetCreditLimit(c.Request.Context(), clientID, req.Limit, CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCreditProfileResponse(profile))
}

func toCreditProfileResponse(p *model.CreditProfile) dto.CreditProfileResponse {
	resp := dto.CreditProfileResponse{
		ClientID:    p.ClientID,
		CreditLimit: p.CreditLimit,
		CreditUsed:  p.CreditUsed,
		Unlimited:   p.Unconstrained(),
	}
	if !resp.Unlimited {
		resp.Available = p.Available()
	}
	return resp
}
