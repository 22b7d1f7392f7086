package handlers

import (
	"net/http"
	"time"

	"github.com/besttime/besttime-api/internal/middleware"
	"github.com/besttime/besttime-api/internal/services"
	"github.com/gin-gonic/gin"
)

// TeamHandler handles team management requests
type TeamHandler struct {
	team  *services.TeamService
	users *services.UserService
	stats *services.StatsService
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(team *services.TeamService, users *services.UserService, stats *services.StatsService) *TeamHandler {
	return &TeamHandler{team: team, users: users, stats: stats}
}

type memberRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// Index godoc
// @Summary The caller's team with the current week's hours
// @Tags team
// @Produce json
// @Security BearerAuth
// @Router /team [get]
func (h *TeamHandler) Index(c *gin.Context) {
	manager, err := h.users.Model(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	members, err := h.team.Members(c.Request.Context(), manager)
	if err != nil {
		respondError(c, err)
		return
	}

	from, to, err := h.stats.PeriodRange("week", time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.stats.Summary(c.Request.Context(), manager, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"members": members,
		"summary": summary,
	})
}

// AttachOuvrier godoc
// @Summary Add an ouvrier to the caller's team
// @Tags team
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /team/ouvriers [post]
func (h *TeamHandler) AttachOuvrier(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	manager, err := h.users.Model(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.team.AttachOuvrier(c.Request.Context(), manager, req.UserID, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ouvrier ajouté à l'équipe"})
}

// DetachOuvrier godoc
// @Summary Remove an ouvrier from the caller's team
// @Tags team
// @Produce json
// @Security BearerAuth
// @Router /team/ouvriers/{user_id} [delete]
func (h *TeamHandler) DetachOuvrier(c *gin.Context) {
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}

	manager, err := h.users.Model(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.team.DetachOuvrier(c.Request.Context(), manager, userID, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ouvrier retiré de l'équipe"})
}

// Gestionnaires godoc
// @Summary Gestionnaires attached to the caller
// @Tags team
// @Produce json
// @Security BearerAuth
// @Router /team/gestionnaires [get]
func (h *TeamHandler) Gestionnaires(c *gin.Context) {
	gestionnaires, err := h.team.Gestionnaires(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"gestionnaires": gestionnaires})
}

// AvailableGestionnaires godoc
// @Summary Gestionnaires not yet attached to the caller
// @Tags team
// @Produce json
// @Security BearerAuth
// @Router /team/gestionnaires/available [get]
func (h *TeamHandler) AvailableGestionnaires(c *gin.Context) {
	gestionnaires, err := h.team.AvailableGestionnaires(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"gestionnaires": gestionnaires})
}

// AttachGestionnaire godoc
// @Summary Attach a gestionnaire to the caller
// @Tags team
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /team/gestionnaires [post]
func (h *TeamHandler) AttachGestionnaire(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	manager, err := h.users.Model(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.team.AttachGestionnaire(c.Request.Context(), manager, req.UserID, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Gestionnaire rattaché"})
}

// DetachGestionnaire godoc
// @Summary Detach a gestionnaire from the caller
// @Tags team
// @Produce json
// @Security BearerAuth
// @Router /team/gestionnaires/{user_id} [delete]
func (h *TeamHandler) DetachGestionnaire(c *gin.Context) {
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}

	manager, err := h.users.Model(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.team.DetachGestionnaire(c.Request.Context(), manager, userID, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Gestionnaire détaché"})
}

// ToggleMemberActive godoc
// @Summary Activate or deactivate a team member
// @Tags team
// @Produce json
// @Security BearerAuth
// @Router /team/members/{user_id}/toggle-active [patch]
func (h *TeamHandler) ToggleMemberActive(c *gin.Context) {
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}

	manager, err := h.users.Model(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	allowed, err := h.team.CanActOn(c.Request.Context(), manager, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !allowed || manager.ID == userID {
		respondError(c, services.ErrUnauthorized)
		return
	}

	current, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	user, message, err := h.users.SetActive(c.Request.Context(), userID, !current.IsActive, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "user": user})
}
