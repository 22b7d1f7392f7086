package handlers

import (
	"net/http"
	"time"

	"github.com/besttime/besttime-api/internal/services"
	"github.com/gin-gonic/gin"
)

// UserHandler handles admin user management requests
type UserHandler struct {
	users *services.UserService
	stats *services.StatsService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserService, stats *services.StatsService) *UserHandler {
	return &UserHandler{users: users, stats: stats}
}

type createUserRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Email          string  `json:"email" binding:"required,email"`
	Password       string  `json:"password" binding:"required,min=8"`
	Role           string  `json:"role" binding:"required"`
	OrganizationID *uint   `json:"organization_id"`
	Phone          string  `json:"phone"`
	EmployeeNumber *string `json:"employee_number"`
}

type updateUserRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Email          *string `json:"email"`
	Password       *string `json:"password"`
	Role           *string `json:"role"`
	OrganizationID *uint   `json:"organization_id"`
	Phone          *string `json:"phone"`
	EmployeeNumber *string `json:"employee_number"`
}

// Index godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Router /admin/users [get]
func (h *UserHandler) Index(c *gin.Context) {
	query := parseListQuery(c, "role", "organization_id", "is_active")
	users, total, err := h.users.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(users, total, query))
}

// Show godoc
// @Summary Get one user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Router /admin/users/{id} [get]
func (h *UserHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Store godoc
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /admin/users [post]
func (h *UserHandler) Store(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Create(c.Request.Context(), services.CreateUserInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Password:       req.Password,
		Role:           req.Role,
		OrganizationID: req.OrganizationID,
		Phone:          req.Phone,
		EmployeeNumber: req.EmployeeNumber,
	}, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Update godoc
// @Summary Edit a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Router /admin/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, services.UpdateUserInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Password:       req.Password,
		Role:           req.Role,
		OrganizationID: req.OrganizationID,
		Phone:          req.Phone,
		EmployeeNumber: req.EmployeeNumber,
	}, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Destroy godoc
// @Summary Delete a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Router /admin/users/{id} [delete]
func (h *UserHandler) Destroy(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Utilisateur supprimé"})
}

// ToggleActive godoc
// @Summary Activate or deactivate a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Router /admin/users/{id}/toggle-active [patch]
func (h *UserHandler) ToggleActive(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	current, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	user, message, err := h.users.SetActive(c.Request.Context(), id, !current.IsActive, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "user": user})
}

// Statistics godoc
// @Summary Per-user totals for a window
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param from query string false "Start date (RFC3339)"
// @Param to query string false "End date (RFC3339)"
// @Router /admin/users/{id}/statistics [get]
func (h *UserHandler) Statistics(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	from, to, err := windowFromQuery(c, h.stats)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.stats.UserStatistics(c.Request.Context(), id, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statistics": stats})
}

// windowFromQuery resolves from/to or a named period, defaulting to the
// current month.
func windowFromQuery(c *gin.Context, stats *services.StatsService) (time.Time, time.Time, error) {
	if period := c.Query("period"); period != "" {
		return stats.PeriodRange(period, time.Now())
	}

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return stats.PeriodRange("month", time.Now())
	}

	from, err := parseDateParam(fromStr, false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDateParam(toStr, true)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// parseDateParam accepts RFC3339 or plain dates; plain end dates extend to
// the end of the day so ranges stay inclusive.
func parseDateParam(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}
