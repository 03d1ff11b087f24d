package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"foodbridge/internal/delivery/http/response"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

// NotificationHandlerParams holds dependencies for NotificationHandler, injected by Fx.
type NotificationHandlerParams struct {
	fx.In

	NotificationUC usecase.NotificationUsecase
	Logger         *slog.Logger
}

// NotificationHandler holds dependencies for notification inbox handlers
type NotificationHandler struct {
	notificationUC usecase.NotificationUsecase
	logger         *slog.Logger
}

// NewNotificationHandler is the constructor for NotificationHandler
func NewNotificationHandler(params NotificationHandlerParams) *NotificationHandler {
	return &NotificationHandler{
		notificationUC: params.NotificationUC,
		logger:         params.Logger,
	}
}

// CreateNotificationRequest represents the request body for creating a notification
type CreateNotificationRequest struct {
	UserID   string `json:"user_id" validate:"required,uuid"`
	Type     string `json:"type" validate:"required,max=50"`
	Title    string `json:"title" validate:"required,max=200"`
	Body     string `json:"body" validate:"required"`
	DeepLink string `json:"deep_link" validate:"omitempty,max=500"`
}

// CreateNotification handles creating a client-originated notification
func (h *NotificationHandler) CreateNotification(c echo.Context) error {
	var req CreateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid notification input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid user ID")
	}

	record, err := h.notificationUC.CreateNotification(c.Request().Context(), &usecase.NotificationInput{
		UserID:   userID,
		Type:     req.Type,
		Title:    req.Title,
		Body:     req.Body,
		DeepLink: req.DeepLink,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, record)
}

// ListNotifications handles retrieving a user's notifications, newest first
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	userID, err := uuid.Parse(c.QueryParam("user_id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid user ID")
	}

	limit := defaultNotificationLimit
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxNotificationLimit {
			return response.BadRequest(c, "INVALID_PARAM", "Invalid limit")
		}
	}

	offset := 0
	if raw := c.QueryParam("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return response.BadRequest(c, "INVALID_PARAM", "Invalid offset")
		}
	}

	records, err := h.notificationUC.GetUserNotifications(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, records)
}

// MarkRead handles marking a notification as read
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid notification ID")
	}

	if err := h.notificationUC.MarkNotificationRead(c.Request().Context(), notificationID); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// DeleteNotification handles removing a notification record
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid notification ID")
	}

	if err := h.notificationUC.DeleteNotification(c.Request().Context(), notificationID); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Notification deleted"})
}
