package handler

import (
	"github.com/donortrack/backend/internal/application/donation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SettlementHandler receives payment-side settlement webhooks
type SettlementHandler struct {
	BaseHandler
	settlements *donation.SettlementService
}

// NewSettlementHandler creates a new settlement handler
func NewSettlementHandler(settlements *donation.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlements: settlements}
}

// SettlementRequest is the signed webhook body
type SettlementRequest struct {
	DonationID    string `json:"donationId" binding:"required,uuid"`
	Outcome       string `json:"outcome" binding:"required" example:"COMPLETED"`
	TransactionID string `json:"transactionId" binding:"max=200" example:"ch_3Nq1"`
	Reason        string `json:"reason" binding:"max=1000"`
}

// SettlementResponse tells the payment side whether the notice changed anything
type SettlementResponse struct {
	DonationID       string `json:"donationId"`
	Status           string `json:"status,omitempty"`
	AlreadyProcessed bool   `json:"alreadyProcessed"`
}

// Settle godoc
// @ID           settleDonation
// @Summary      Settle a pending donation
// @Description  Completes or fails a PENDING donation. Replayed notices succeed with alreadyProcessed set.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Signature header string            true "hex HMAC-SHA256 of the body"
// @Param        request     body   SettlementRequest true "Settlement notice"
// @Success      200 {object} APIResponse[SettlementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /payments/settlements [post]
func (h *SettlementHandler) Settle(c *gin.Context) {
	var req SettlementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.settlements.SettleDonation(c.Request.Context(), donation.SettlementNotice{
		DonationID:    uuid.MustParse(req.DonationID),
		Outcome:       req.Outcome,
		TransactionID: req.TransactionID,
		Reason:        req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := SettlementResponse{DonationID: req.DonationID, AlreadyProcessed: result.AlreadyProcessed}
	if result.Donation != nil {
		resp.Status = string(result.Donation.Status)
	}
	h.Success(c, resp)
}
