package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Organization OrganizationRepository
	Client       ClientRepository
	Project      ProjectRepository
	TimeEntry    TimeEntryRepository
	Team         TeamRepository
	ActivityLog  ActivityLogRepository
	Stats        StatsRepository
	RefreshToken RefreshTokenRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Organization: NewOrganizationRepository(db),
		Client:       NewClientRepository(db),
		Project:      NewProjectRepository(db),
		TimeEntry:    NewTimeEntryRepository(db),
		Team:         NewTeamRepository(db),
		ActivityLog:  NewActivityLogRepository(db),
		Stats:        NewStatsRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
	}
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 50,
		Filters: make(map[string]string),
	}
}
