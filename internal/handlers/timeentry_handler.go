package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/besttime/besttime-api/internal/middleware"
	"github.com/besttime/besttime-api/internal/services"
	"github.com/gin-gonic/gin"
)

// TimeEntryHandler handles time entry requests
type TimeEntryHandler struct {
	entries *services.TimeEntryService
	users   *services.UserService
	export  *services.ExportService
}

// NewTimeEntryHandler creates a new time entry handler
func NewTimeEntryHandler(entries *services.TimeEntryService, users *services.UserService, export *services.ExportService) *TimeEntryHandler {
	return &TimeEntryHandler{entries: entries, users: users, export: export}
}

type startRequest struct {
	ProjectID        *uint    `json:"project_id"`
	Description      string   `json:"description"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	LocationAccuracy *float64 `json:"location_accuracy"`
	QRCodeScanned    bool     `json:"qr_code_scanned"`
}

type stopRequest struct {
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	LocationAccuracy *float64 `json:"location_accuracy"`
}

type createEntryRequest struct {
	UserID      *uint      `json:"user_id"`
	ProjectID   *uint      `json:"project_id"`
	StartTime   time.Time  `json:"start_time" binding:"required"`
	EndTime     *time.Time `json:"end_time"`
	Description string     `json:"description"`
}

type updateEntryRequest struct {
	ProjectID   *uint      `json:"project_id"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Description *string    `json:"description"`
}

// Start godoc
// @Summary Clock in
// @Tags time-entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entry body startRequest true "Clock-in payload"
// @Success 201 {object} models.TimeEntryResponse
// @Failure 409 {object} map[string]interface{} "An entry is already running"
// @Router /time-entries/start [post]
func (h *TimeEntryHandler) Start(c *gin.Context) {
	var req startRequest
	if err := BindNestedOrFlat(c, "time_entry", &req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Model(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	entry, err := h.entries.Start(c.Request.Context(), user, services.StartInput{
		ProjectID:        req.ProjectID,
		Description:      req.Description,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		LocationAccuracy: req.LocationAccuracy,
		QRCodeScanned:    req.QRCodeScanned,
	}, actorFrom(c))
	if err != nil {
		if err == services.ErrActiveEntryExists {
			// Conflict responses carry the entry that is already running.
			active, activeErr := h.entries.Active(c.Request.Context(), user.ID)
			if activeErr == nil {
				c.JSON(http.StatusConflict, gin.H{
					"error":        err.Error(),
					"active_entry": active,
				})
				return
			}
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"time_entry": entry})
}

// Stop godoc
// @Summary Clock out
// @Tags time-entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entry body stopRequest false "Clock-out payload"
// @Success 200 {object} models.TimeEntryResponse
// @Failure 404 {object} map[string]string "No entry is running"
// @Router /time-entries/stop [post]
func (h *TimeEntryHandler) Stop(c *gin.Context) {
	var req stopRequest
	_ = BindNestedOrFlat(c, "time_entry", &req)

	user, err := h.users.Model(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	entry, err := h.entries.Stop(c.Request.Context(), user, services.StopInput{
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		LocationAccuracy: req.LocationAccuracy,
	}, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"time_entry": entry})
}

// Active godoc
// @Summary Current open entry
// @Tags time-entries
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.TimeEntryResponse
// @Router /time-entries/active [get]
func (h *TimeEntryHandler) Active(c *gin.Context) {
	entry, err := h.entries.Active(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"time_entry": entry})
}

// Index godoc
// @Summary List visible time entries
// @Tags time-entries
// @Produce json
// @Security BearerAuth
// @Router /time-entries [get]
func (h *TimeEntryHandler) Index(c *gin.Context) {
	user, err := h.users.Model(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	query := parseListQuery(c, "user_id", "project_id", "from", "to", "open")
	entries, total, err := h.entries.List(c.Request.Context(), user, query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginated(entries, total, query))
}

// Store godoc
// @Summary Manually encode a time entry
// @Tags time-entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /time-entries [post]
func (h *TimeEntryHandler) Store(c *gin.Context) {
	var req createEntryRequest
	if err := BindNestedOrFlat(c, "time_entry", &req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Model(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	subjectID := user.ID
	if req.UserID != nil {
		subjectID = *req.UserID
	}

	entry, err := h.entries.Create(c.Request.Context(), user, services.CreateInput{
		UserID:      subjectID,
		ProjectID:   req.ProjectID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
	}, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"time_entry": entry})
}

// Show godoc
// @Summary Get one time entry
// @Tags time-entries
// @Produce json
// @Security BearerAuth
// @Router /time-entries/{id} [get]
func (h *TimeEntryHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	user, err := h.users.Model(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	entry, err := h.entries.Get(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"time_entry": entry})
}

// Update godoc
// @Summary Edit a time entry
// @Tags time-entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /time-entries/{id} [put]
func (h *TimeEntryHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req updateEntryRequest
	if err := BindNestedOrFlat(c, "time_entry", &req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Model(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	entry, err := h.entries.Update(c.Request.Context(), user, id, services.UpdateInput{
		ProjectID:   req.ProjectID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
	}, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"time_entry": entry})
}

// Destroy godoc
// @Summary Delete a time entry
// @Tags time-entries
// @Produce json
// @Security BearerAuth
// @Router /time-entries/{id} [delete]
func (h *TimeEntryHandler) Destroy(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	user, err := h.users.Model(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.entries.Delete(c.Request.Context(), user, id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Pointage supprimé"})
}

// Export godoc
// @Summary Export visible time entries as CSV or XLSX
// @Tags time-entries
// @Produce application/octet-stream
// @Security BearerAuth
// @Param format query string false "csv or xlsx" default(csv)
// @Router /time-entries/export [get]
func (h *TimeEntryHandler) Export(c *gin.Context) {
	user, err := h.users.Model(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	query := parseListQuery(c, "user_id", "project_id", "from", "to")
	query.PerPage = 0 // exports are unpaginated

	entries, _, err := h.entries.List(c.Request.Context(), user, query)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("pointages_%s", time.Now().Format("20060102"))

	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		data, err := h.export.EntriesXLSX(entries)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", filename))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	default:
		data, err := h.export.EntriesCSV(entries)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))
		c.Data(http.StatusOK, "text/csv", data)
	}
}
