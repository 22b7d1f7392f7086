package handlers

import (
	"net/http"
	"strconv"

	"github.com/besttime/besttime-api/internal/services"
	"github.com/gin-gonic/gin"
)

// LogHandler exposes the application log file to the admin screen
type LogHandler struct {
	logs *services.LogService
}

// NewLogHandler creates a new log handler
func NewLogHandler(logs *services.LogService) *LogHandler {
	return &LogHandler{logs: logs}
}

// Tail godoc
// @Summary Last lines of the application log
// @Tags logs
// @Produce json
// @Security BearerAuth
// @Param lines query int false "Line count" default(200)
// @Param level query string false "Filter by level (info, warn, error)"
// @Router /admin/logs [get]
func (h *LogHandler) Tail(c *gin.Context) {
	limit := 200
	if v, err := strconv.Atoi(c.Query("lines")); err == nil && v > 0 && v <= 5000 {
		limit = v
	}

	lines, err := h.logs.Tail(limit, c.Query("level"))
	if err != nil {
		respondError(c, err)
		return
	}

	size, err := h.logs.Size()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lines": lines,
		"count": len(lines),
		"size":  size,
	})
}

// Clear godoc
// @Summary Truncate the application log
// @Tags logs
// @Produce json
// @Security BearerAuth
// @Router /admin/logs [delete]
func (h *LogHandler) Clear(c *gin.Context) {
	if err := h.logs.Clear(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fichier de log vidé"})
}
