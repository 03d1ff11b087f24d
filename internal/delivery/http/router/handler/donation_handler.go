package handler

import (
	"log/slog"
	"net/http"
	"time"

	"foodbridge/internal/delivery/http/response"
	"foodbridge/internal/domain/entity"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// DonationHandlerParams holds dependencies for DonationHandler, injected by Fx.
type DonationHandlerParams struct {
	fx.In

	DonationUC usecase.DonationUsecase
	Logger     *slog.Logger
}

// DonationHandler holds dependencies for donation-related handlers
type DonationHandler struct {
	donationUC usecase.DonationUsecase
	logger     *slog.Logger
}

// NewDonationHandler is the constructor for DonationHandler
func NewDonationHandler(params DonationHandlerParams) *DonationHandler {
	return &DonationHandler{
		donationUC: params.DonationUC,
		logger:     params.Logger,
	}
}

// CreateDonationRequest represents the request body for listing a donation
type CreateDonationRequest struct {
	DonorID   string    `json:"donor_id" validate:"required,uuid"`
	Title     string    `json:"title" validate:"required,max=200"`
	Category  string    `json:"category" validate:"required,max=50"`
	Quantity  float64   `json:"quantity" validate:"required,gt=0"`
	Unit      string    `json:"unit" validate:"omitempty,max=20"`
	ExpiresAt time.Time `json:"expires_at" validate:"required"`
}

// ChangeStatusRequest represents the request body for a status transition
type ChangeStatusRequest struct {
	NewStatus   string  `json:"new_status" validate:"required"`
	RecipientID *string `json:"recipient_id,omitempty" validate:"omitempty,uuid"`
}

// CreateDonation handles listing a new donation
func (h *DonationHandler) CreateDonation(c echo.Context) error {
	var req CreateDonationRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid donation input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	donorID, err := uuid.Parse(req.DonorID)
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid donor ID")
	}

	donation, err := h.donationUC.CreateDonation(c.Request().Context(), donorID, &usecase.DonationInput{
		Title:     req.Title,
		Category:  req.Category,
		Quantity:  req.Quantity,
		Unit:      req.Unit,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, donation)
}

// GetDonation handles retrieving a donation by ID
func (h *DonationHandler) GetDonation(c echo.Context) error {
	donationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid donation ID")
	}

	donation, err := h.donationUC.GetDonation(c.Request().Context(), donationID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, donation)
}

// ChangeStatus handles a donation status transition
func (h *DonationHandler) ChangeStatus(c echo.Context) error {
	donationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid donation ID")
	}

	var req ChangeStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid status change input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	change := &usecase.StatusChange{
		NewStatus: entity.DonationStatus(req.NewStatus),
	}
	if req.RecipientID != nil {
		recipientID, parseErr := uuid.Parse(*req.RecipientID)
		if parseErr != nil {
			return response.BadRequest(c, "INVALID_ID", "Invalid recipient ID")
		}
		change.RecipientID = &recipientID
	}

	donation, err := h.donationUC.ChangeDonationStatus(c.Request().Context(), donationID, change)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, donation)
}
