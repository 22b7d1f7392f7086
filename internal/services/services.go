package services

import (
	"github.com/besttime/besttime-api/internal/config"
	"github.com/besttime/besttime-api/internal/repository"
)

// Services holds all service instances
type Services struct {
	Auth      *AuthService
	User      *UserService
	Client    *ClientService
	Project   *ProjectService
	TimeEntry *TimeEntryService
	Team      *TeamService
	Stats     *StatsService
	Audit     *AuditService
	Export    *ExportService
	Log       *LogService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, cfg *config.Config) *Services {
	auditSvc := NewAuditService(repos.ActivityLog, cfg.AuditStrict)
	teamSvc := NewTeamService(repos.User, repos.Team, auditSvc)

	return &Services{
		Auth:      NewAuthService(repos.User, repos.RefreshToken, auditSvc, cfg),
		User:      NewUserService(repos.User, auditSvc),
		Client:    NewClientService(repos.Client, auditSvc),
		Project:   NewProjectService(repos.Project, auditSvc),
		TimeEntry: NewTimeEntryService(repos.TimeEntry, repos.User, repos.Project, repos.Organization, teamSvc, auditSvc),
		Team:      teamSvc,
		Stats:     NewStatsService(repos.Stats, repos.User, repos.TimeEntry, repos.Project, teamSvc, cfg.Location()),
		Audit:     auditSvc,
		Export:    NewExportService(),
		Log:       NewLogService(cfg.LogFilePath),
	}
}
