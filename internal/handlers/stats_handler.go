package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/besttime/besttime-api/internal/middleware"
	"github.com/besttime/besttime-api/internal/services"
	"github.com/gin-gonic/gin"
)

// StatsHandler handles statistics and export requests
type StatsHandler struct {
	stats  *services.StatsService
	users  *services.UserService
	export *services.ExportService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(stats *services.StatsService, users *services.UserService, export *services.ExportService) *StatsHandler {
	return &StatsHandler{stats: stats, users: users, export: export}
}

// Summary godoc
// @Summary Aggregated statistics for the caller's visible users
// @Tags statistics
// @Produce json
// @Security BearerAuth
// @Param period query string false "today|week|month|quarter|semester|year"
// @Param from query string false "Start date"
// @Param to query string false "End date"
// @Success 200 {object} models.StatisticsSummary
// @Router /admin/statistics [get]
func (h *StatsHandler) Summary(c *gin.Context) {
	user, err := h.users.Model(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	from, to, err := windowFromQuery(c, h.stats)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.stats.Summary(c.Request.Context(), user, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ExportPDF godoc
// @Summary Download the statistics window as a PDF timesheet
// @Tags statistics
// @Produce application/pdf
// @Security BearerAuth
// @Router /admin/statistics/export [get]
func (h *StatsHandler) ExportPDF(c *gin.Context) {
	user, err := h.users.Model(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	from, to, err := windowFromQuery(c, h.stats)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.stats.Summary(c.Request.Context(), user, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := h.export.TimesheetPDF("Feuille de temps", summary)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("feuille_de_temps_%s.pdf", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
