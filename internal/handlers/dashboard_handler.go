package handlers

import (
	"net/http"

	"github.com/besttime/besttime-api/internal/middleware"
	"github.com/besttime/besttime-api/internal/services"
	"github.com/gin-gonic/gin"
)

// DashboardHandler handles the role-dependent home screen
type DashboardHandler struct {
	stats *services.StatsService
	users *services.UserService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(stats *services.StatsService, users *services.UserService) *DashboardHandler {
	return &DashboardHandler{stats: stats, users: users}
}

// Show godoc
// @Summary Dashboard for the current user
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /dashboard [get]
func (h *DashboardHandler) Show(c *gin.Context) {
	user, err := h.users.Model(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	dashboard, err := h.stats.Dashboard(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
