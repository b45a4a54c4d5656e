package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/gestorloja/gestor-backend/internal/service"
	"github.com/gestorloja/gestor-backend/internal/util"
)

// DashboardHandler handles dashboard HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetSummary handles GET /api/v1/dashboard/summary?month=YYYY-MM.
// Month defaults to the current month.
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	month := time.Now().UTC()
	if param := c.QueryParam("month"); param != "" {
		parsed, err := util.ParseMonth(param)
		if err != nil {
			return NewValidationError(c, "Invalid month", []ValidationError{
				{Field: "month", Message: "Must be in YYYY-MM format"},
			})
		}
		month = parsed
	}

	summary, err := h.dashboardService.GetSummary(month)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get dashboard summary")
		return NewInternalError(c, "Failed to get dashboard summary")
	}
	return c.JSON(http.StatusOK, summary)
}
