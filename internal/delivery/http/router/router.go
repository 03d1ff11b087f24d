// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"foodbridge/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler         *handler.UserHandler
	DonationHandler     *handler.DonationHandler
	DeviceHandler       *handler.DeviceHandler
	NotificationHandler *handler.NotificationHandler
	StatsHandler        *handler.StatsHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler         *handler.UserHandler
	donationHandler     *handler.DonationHandler
	deviceHandler       *handler.DeviceHandler
	notificationHandler *handler.NotificationHandler
	statsHandler        *handler.StatsHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:         params.UserHandler,
		donationHandler:     params.DonationHandler,
		deviceHandler:       params.DeviceHandler,
		notificationHandler: params.NotificationHandler,
		statsHandler:        params.StatsHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	api := e.Group("/api")
	{
		api.POST("/users", r.userHandler.RegisterUser)
		api.GET("/users/:id", r.userHandler.GetUser)

		api.POST("/donations", r.donationHandler.CreateDonation)
		api.GET("/donations/:id", r.donationHandler.GetDonation)
		api.PATCH("/donations/:id/status", r.donationHandler.ChangeStatus)

		api.POST("/devices", r.deviceHandler.RegisterDevice)
		api.GET("/devices", r.deviceHandler.ListDevices)
		api.PUT("/devices/:id/token", r.deviceHandler.UpdateFCMToken)
		api.DELETE("/devices/:id", r.deviceHandler.DeactivateDevice)

		api.POST("/notifications", r.notificationHandler.CreateNotification)
		api.GET("/notifications", r.notificationHandler.ListNotifications)
		api.PATCH("/notifications/:id/read", r.notificationHandler.MarkRead)
		api.DELETE("/notifications/:id", r.notificationHandler.DeleteNotification)

		api.GET("/stats", r.statsHandler.GetStats)
	}
}
