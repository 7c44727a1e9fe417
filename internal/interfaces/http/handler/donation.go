package handler

import (
	"net/http"

	"github.com/donortrack/backend/internal/application/donation"
	"github.com/donortrack/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DonationHandler serves a donor's donations
type DonationHandler struct {
	BaseHandler
	ledger *donation.LedgerService
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(ledger *donation.LedgerService) *DonationHandler {
	return &DonationHandler{ledger: ledger}
}

// CreateDonationRequest is the pledge body. Amount accepts a JSON number or
// a decimal string.
type CreateDonationRequest struct {
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"25.00"`
	ProjectID     string          `json:"projectId" binding:"required,uuid"`
	PaymentMethod string          `json:"paymentMethod" binding:"required,max=50" example:"card"`
	Currency      string          `json:"currency" binding:"omitempty,len=3" example:"USD"`
	Notes         string          `json:"notes" binding:"max=1000"`
}

// UpdateDonationStatusRequest asks for a status change of an own donation
type UpdateDonationStatusRequest struct {
	DonationID   string `json:"donationId" binding:"required,uuid"`
	Status       string `json:"status" binding:"required" example:"REFUNDED"`
	RefundReason string `json:"refundReason" binding:"max=1000"`
}

// ListDonationsQuery are the list filters
type ListDonationsQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status    string `form:"status"`
	ProjectID string `form:"projectId" binding:"omitempty,uuid"`
}

// List godoc
// @ID           listDonations
// @Summary      List own donations
// @Description  Pages through the caller's donations, newest first
// @Tags         donations
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int    false "Page number" default(1)
// @Param        limit     query int    false "Page size" default(10)
// @Param        status    query string false "PENDING, COMPLETED, FAILED or REFUNDED"
// @Param        projectId query string false "Project ID"
// @Success      200 {object} PagedResponse[donation.DonationView]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /donations [get]
func (h *DonationHandler) List(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var q ListDonationsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	input := donation.ListInput{DonorID: userID, Page: q.Page, Limit: q.Limit, Status: q.Status}
	if q.ProjectID != "" {
		id := uuid.MustParse(q.ProjectID)
		input.ProjectID = &id
	}

	page, err := h.ledger.ListDonations(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// Create godoc
// @ID           createDonation
// @Summary      Pledge a donation
// @Description  Records a PENDING donation and adds it to the project's running total
// @Tags         donations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateDonationRequest true "Donation"
// @Success      201 {object} APIResponse[donation.DonationView]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /donations [post]
func (h *DonationHandler) Create(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req CreateDonationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	d, err := h.ledger.CreateDonation(ctx, donation.CreateDonationInput{
		DonorID:       userID,
		ProjectID:     uuid.MustParse(req.ProjectID),
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	view, err := h.ledger.View(ctx, d)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

// UpdateStatus godoc
// @ID           updateDonationStatus
// @Summary      Change donation status
// @Description  Completes, fails or refunds one of the caller's donations; illegal transitions are 422
// @Tags         donations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateDonationStatusRequest true "Status change"
// @Success      200 {object} APIResponse[donation.DonationView]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /donations [patch]
func (h *DonationHandler) UpdateStatus(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req UpdateDonationStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	d, err := h.ledger.UpdateDonationStatus(ctx, donation.UpdateStatusInput{
		DonationID:  uuid.MustParse(req.DonationID),
		RequesterID: userID,
		Status:      req.Status,
		Reason:      req.RefundReason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	view, err := h.ledger.View(ctx, d)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Get godoc
// @ID           getDonation
// @Summary      Get own donation
// @Tags         donations
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Donation ID"
// @Success      200 {object} APIResponse[donation.DonationView]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /donations/{id} [get]
func (h *DonationHandler) Get(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id", "donation")
	if !ok {
		return
	}

	view, err := h.ledger.GetDonation(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}
