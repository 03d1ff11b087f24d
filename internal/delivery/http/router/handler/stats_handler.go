package handler

import (
	"log/slog"
	"net/http"

	"foodbridge/internal/delivery/http/response"
	"foodbridge/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// StatsHandlerParams holds dependencies for StatsHandler, injected by Fx.
type StatsHandlerParams struct {
	fx.In

	StatsUC usecase.StatsUsecase
	Logger  *slog.Logger
}

// StatsHandler holds dependencies for the aggregate stats handler
type StatsHandler struct {
	statsUC usecase.StatsUsecase
	logger  *slog.Logger
}

// NewStatsHandler is the constructor for StatsHandler
func NewStatsHandler(params StatsHandlerParams) *StatsHandler {
	return &StatsHandler{
		statsUC: params.StatsUC,
		logger:  params.Logger,
	}
}

// GetStats returns the current aggregate counters
func (h *StatsHandler) GetStats(c echo.Context) error {
	stats, err := h.statsUC.GetStats(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, stats)
}
