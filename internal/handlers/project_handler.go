package handlers

import (
	"net/http"

	"github.com/besttime/besttime-api/internal/services"
	"github.com/gin-gonic/gin"
)

// ProjectHandler handles project and QR code requests
type ProjectHandler struct {
	projects *services.ProjectService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type createProjectRequest struct {
	Name           string   `json:"name" binding:"required"`
	ClientID       *uint    `json:"client_id"`
	Description    *string  `json:"description"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	GeofenceRadius *int     `json:"geofence_radius"`
}

type updateProjectRequest struct {
	Name           *string  `json:"name"`
	ClientID       *uint    `json:"client_id"`
	Description    *string  `json:"description"`
	Status         *string  `json:"status"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	GeofenceRadius *int     `json:"geofence_radius"`
}

type validateQRRequest struct {
	Type  string `json:"type"`
	Token string `json:"token" binding:"required"`
}

// Index godoc
// @Summary List projects
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Router /projects [get]
func (h *ProjectHandler) Index(c *gin.Context) {
	query := parseListQuery(c, "status", "client_id")
	projects, total, err := h.projects.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(projects, total, query))
}

// Show godoc
// @Summary Get one project
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Router /projects/{id} [get]
func (h *ProjectHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	project, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

// Store godoc
// @Summary Create a project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /projects [post]
func (h *ProjectHandler) Store(c *gin.Context) {
	var req createProjectRequest
	if err := BindNestedOrFlat(c, "project", &req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "le nom du chantier est requis"})
		return
	}

	project, err := h.projects.Create(c.Request.Context(), services.CreateProjectInput{
		Name:           req.Name,
		ClientID:       req.ClientID,
		Description:    req.Description,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		GeofenceRadius: req.GeofenceRadius,
	}, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"project": project})
}

// Update godoc
// @Summary Edit a project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := BindNestedOrFlat(c, "project", &req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projects.Update(c.Request.Context(), id, services.UpdateProjectInput{
		Name:           req.Name,
		ClientID:       req.ClientID,
		Description:    req.Description,
		Status:         req.Status,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		GeofenceRadius: req.GeofenceRadius,
	}, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

// Destroy godoc
// @Summary Delete a project
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Destroy(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.projects.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Chantier supprimé"})
}

// QRCode godoc
// @Summary Get a project's QR payload
// @Tags qr-codes
// @Produce json
// @Security BearerAuth
// @Router /projects/{id}/qr-code [get]
func (h *ProjectHandler) QRCode(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	payload, err := h.projects.QRCode(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"qr_code": payload})
}

// RegenerateQRCode godoc
// @Summary Rotate a project's QR token
// @Tags qr-codes
// @Produce json
// @Security BearerAuth
// @Router /projects/{id}/qr-code/regenerate [post]
func (h *ProjectHandler) RegenerateQRCode(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	payload, err := h.projects.RegenerateQRCode(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"qr_code": payload})
}

// ValidateQRCode godoc
// @Summary Resolve a scanned QR token to its project
// @Tags qr-codes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /qr-codes/validate [post]
func (h *ProjectHandler) ValidateQRCode(c *gin.Context) {
	var req validateQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projects.ValidateQRCode(c.Request.Context(), req.Type, req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "project": project})
}
