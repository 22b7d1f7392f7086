package handlers

import (
	"github.com/besttime/besttime-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	User      *UserHandler
	Client    *ClientHandler
	Project   *ProjectHandler
	TimeEntry *TimeEntryHandler
	Team      *TeamHandler
	Dashboard *DashboardHandler
	Stats     *StatsHandler
	Audit     *AuditHandler
	Log       *LogHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(),
		Auth:      NewAuthHandler(svcs.Auth),
		User:      NewUserHandler(svcs.User, svcs.Stats),
		Client:    NewClientHandler(svcs.Client),
		Project:   NewProjectHandler(svcs.Project),
		TimeEntry: NewTimeEntryHandler(svcs.TimeEntry, svcs.User, svcs.Export),
		Team:      NewTeamHandler(svcs.Team, svcs.User, svcs.Stats),
		Dashboard: NewDashboardHandler(svcs.Stats, svcs.User),
		Stats:     NewStatsHandler(svcs.Stats, svcs.User, svcs.Export),
		Audit:     NewAuditHandler(svcs.Audit),
		Log:       NewLogHandler(svcs.Log),
	}
}
