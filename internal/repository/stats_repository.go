package repository

import (
	"context"
	"time"

	"github.com/besttime/besttime-api/internal/models"
	"gorm.io/gorm"
)

// StatsFilter scopes an aggregation query. UserIDs nil means all users;
// an empty non-nil slice matches nobody. From/To bound start_time and the
// time zone decides which calendar day a timestamp lands in.
type StatsFilter struct {
	UserIDs   []uint
	ProjectID *uint
	From      time.Time
	To        time.Time
	TimeZone  string
}

// DaySeconds is a per-calendar-day total of worked seconds.
type DaySeconds struct {
	Day     string `gorm:"column:day"`
	Seconds int64  `gorm:"column:seconds"`
}

// UserSeconds is a per-user total of worked seconds.
type UserSeconds struct {
	UserID  uint   `gorm:"column:user_id"`
	Name    string `gorm:"column:name"`
	Email   string `gorm:"column:email"`
	Seconds int64  `gorm:"column:seconds"`
}

// ProjectSeconds is a per-project total of worked seconds.
type ProjectSeconds struct {
	ProjectID uint   `gorm:"column:project_id"`
	Name      string `gorm:"column:name"`
	Seconds   int64  `gorm:"column:seconds"`
}

// ProjectUserSeconds is a per-project, per-user total of worked seconds.
type ProjectUserSeconds struct {
	ProjectID uint   `gorm:"column:project_id"`
	UserID    uint   `gorm:"column:user_id"`
	Name      string `gorm:"column:name"`
	Email     string `gorm:"column:email"`
	Seconds   int64  `gorm:"column:seconds"`
}

// MonthSeconds is a per-calendar-month total of worked seconds.
type MonthSeconds struct {
	Month   string `gorm:"column:month"`
	Seconds int64  `gorm:"column:seconds"`
}

// StatsRepository runs the raw aggregation queries behind dashboards and
// statistics. Every method returns whole seconds; callers own the
// conversion to hours and the rounding.
type StatsRepository interface {
	TotalSeconds(ctx context.Context, f StatsFilter) (int64, error)
	CountEntries(ctx context.Context, f StatsFilter) (int64, error)
	SecondsByDay(ctx context.Context, f StatsFilter) ([]DaySeconds, error)
	SecondsByUser(ctx context.Context, f StatsFilter) ([]UserSeconds, error)
	SecondsByProject(ctx context.Context, f StatsFilter) ([]ProjectSeconds, error)
	SecondsByProjectAndUser(ctx context.Context, f StatsFilter) ([]ProjectUserSeconds, error)
	SecondsByMonth(ctx context.Context, f StatsFilter) ([]MonthSeconds, error)
	CountActiveProjects(ctx context.Context, f StatsFilter) (int64, error)
}

// userDisplayNameSQL is the SQL twin of models.User.DisplayName: first+last
// when present, falling back to the legacy name column. Breakdowns must use
// it because users created through the API leave the name column empty.
const userDisplayNameSQL = "COALESCE(NULLIF(TRIM(CONCAT(users.first_name, ' ', users.last_name)), ''), users.name)"

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

// scope builds the shared WHERE clause. Only closed entries count toward
// totals; an open entry has no duration yet.
func (r *statsRepository) scope(ctx context.Context, f StatsFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&models.TimeEntry{}).
		Where("time_entries.end_time IS NOT NULL")

	if f.UserIDs != nil {
		db = db.Where("time_entries.user_id IN ?", f.UserIDs)
	}
	if f.ProjectID != nil {
		db = db.Where("time_entries.project_id = ?", *f.ProjectID)
	}
	if !f.From.IsZero() {
		db = db.Where("time_entries.start_time >= ?", f.From)
	}
	if !f.To.IsZero() {
		db = db.Where("time_entries.start_time <= ?", f.To)
	}

	return db
}

func (f StatsFilter) tz() string {
	if f.TimeZone == "" {
		return "UTC"
	}
	return f.TimeZone
}

func (r *statsRepository) TotalSeconds(ctx context.Context, f StatsFilter) (int64, error) {
	if f.UserIDs != nil && len(f.UserIDs) == 0 {
		return 0, nil
	}
	var total *int64
	err := r.scope(ctx, f).
		Select("SUM(time_entries.duration)").
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

func (r *statsRepository) CountEntries(ctx context.Context, f StatsFilter) (int64, error) {
	if f.UserIDs != nil && len(f.UserIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.scope(ctx, f).Count(&count).Error
	return count, err
}

func (r *statsRepository) SecondsByDay(ctx context.Context, f StatsFilter) ([]DaySeconds, error) {
	if f.UserIDs != nil && len(f.UserIDs) == 0 {
		return []DaySeconds{}, nil
	}
	var rows []DaySeconds
	err := r.scope(ctx, f).
		Select("TO_CHAR(time_entries.start_time AT TIME ZONE ?, 'YYYY-MM-DD') AS day, SUM(time_entries.duration) AS seconds", f.tz()).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepository) SecondsByUser(ctx context.Context, f StatsFilter) ([]UserSeconds, error) {
	if f.UserIDs != nil && len(f.UserIDs) == 0 {
		return []UserSeconds{}, nil
	}
	var rows []UserSeconds
	err := r.scope(ctx, f).
		Select("time_entries.user_id, "+userDisplayNameSQL+" AS name, users.email, SUM(time_entries.duration) AS seconds").
		Joins("JOIN users ON users.id = time_entries.user_id").
		Group("time_entries.user_id, users.first_name, users.last_name, users.name, users.email").
		Order("seconds DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepository) SecondsByProject(ctx context.Context, f StatsFilter) ([]ProjectSeconds, error) {
	if f.UserIDs != nil && len(f.UserIDs) == 0 {
		return []ProjectSeconds{}, nil
	}
	var rows []ProjectSeconds
	err := r.scope(ctx, f).
		Select("time_entries.project_id, projects.name, SUM(time_entries.duration) AS seconds").
		Joins("JOIN projects ON projects.id = time_entries.project_id").
		Where("time_entries.project_id IS NOT NULL").
		Group("time_entries.project_id, projects.name").
		Order("seconds DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepository) SecondsByProjectAndUser(ctx context.Context, f StatsFilter) ([]ProjectUserSeconds, error) {
	if f.UserIDs != nil && len(f.UserIDs) == 0 {
		return []ProjectUserSeconds{}, nil
	}
	var rows []ProjectUserSeconds
	err := r.scope(ctx, f).
		Select("time_entries.project_id, time_entries.user_id, "+userDisplayNameSQL+" AS name, users.email, SUM(time_entries.duration) AS seconds").
		Joins("JOIN users ON users.id = time_entries.user_id").
		Where("time_entries.project_id IS NOT NULL").
		Group("time_entries.project_id, time_entries.user_id, users.first_name, users.last_name, users.name, users.email").
		Order("time_entries.project_id, seconds DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepository) SecondsByMonth(ctx context.Context, f StatsFilter) ([]MonthSeconds, error) {
	if f.UserIDs != nil && len(f.UserIDs) == 0 {
		return []MonthSeconds{}, nil
	}
	var rows []MonthSeconds
	err := r.scope(ctx, f).
		Select("TO_CHAR(time_entries.start_time AT TIME ZONE ?, 'YYYY-MM') AS month, SUM(time_entries.duration) AS seconds", f.tz()).
		Group("month").
		Order("month ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepository) CountActiveProjects(ctx context.Context, f StatsFilter) (int64, error) {
	if f.UserIDs != nil && len(f.UserIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.scope(ctx, f).
		Where("time_entries.project_id IS NOT NULL").
		Distinct("time_entries.project_id").
		Count(&count).Error
	return count, err
}
