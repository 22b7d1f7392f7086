package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/besttime/besttime-api/internal/middleware"
	"github.com/besttime/besttime-api/internal/repository"
	"github.com/besttime/besttime-api/internal/services"
	"github.com/gin-gonic/gin"
)

// actorFrom builds the audit actor for the current request.
func actorFrom(c *gin.Context) services.Actor {
	actor := services.Actor{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if id := middleware.GetUserID(c); id != 0 {
		actor.UserID = &id
	}
	return actor
}

// parseListQuery reads the common pagination and filter params.
func parseListQuery(c *gin.Context, filterKeys ...string) *repository.ListQuery {
	query := repository.NewListQuery()

	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		query.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil && perPage > 0 && perPage <= 500 {
		query.PerPage = perPage
	}
	query.Search = c.Query("search")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.Query("sort_dir")

	for _, key := range filterKeys {
		if value := c.Query(key); value != "" {
			query.Filters[key] = value
		}
	}

	return query
}

// paramID reads a uint path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return 0, false
	}
	return uint(id), true
}

// respondError translates service errors into HTTP responses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrNoActiveEntry):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrAccountDisabled):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrActiveEntryExists), errors.Is(err, services.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrEndBeforeStart),
		errors.Is(err, services.ErrClientHasProjects),
		errors.Is(err, services.ErrInvalidQRCode):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// paginated wraps list results in the standard envelope.
func paginated(data interface{}, total int64, query *repository.ListQuery) gin.H {
	return gin.H{
		"data":     data,
		"total":    total,
		"page":     query.Page,
		"per_page": query.PerPage,
	}
}
