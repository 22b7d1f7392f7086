package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/besttime/besttime-api/internal/services"
)

// AuditHandler handles activity log requests
type AuditHandler struct {
	audit *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audit *services.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// Index godoc
// @Summary List activity log entries
// @Tags activity-logs
// @Produce json
// @Security BearerAuth
// @Router /admin/activity-logs [get]
func (h *AuditHandler) Index(c *gin.Context) {
	query := parseListQuery(c, "action", "model_type", "user_id", "from", "to")
	logs, total, err := h.audit.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(logs, total, query))
}

// Show godoc
// @Summary Get one activity log entry
// @Tags activity-logs
// @Produce json
// @Security BearerAuth
// @Router /admin/activity-logs/{id} [get]
func (h *AuditHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	log, err := h.audit.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity_log": log})
}

// Stats godoc
// @Summary Activity log totals
// @Tags activity-logs
// @Produce json
// @Security BearerAuth
// @Router /admin/activity-logs/stats [get]
func (h *AuditHandler) Stats(c *gin.Context) {
	stats, err := h.audit.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// Clear godoc
// @Summary Wipe the activity log
// @Tags activity-logs
// @Produce json
// @Security BearerAuth
// @Router /admin/activity-logs [delete]
func (h *AuditHandler) Clear(c *gin.Context) {
	deleted, err := h.audit.Clear(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Journal d'activité vidé", "deleted": deleted})
}
