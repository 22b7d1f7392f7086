package models

import "time"

// DayHours is one calendar-day bucket of a statistics breakdown.
type DayHours struct {
	Date  string  `json:"date"` // YYYY-MM-DD in the deployment time zone
	Hours float64 `json:"hours"`
}

// UserHours is the per-user total for a window.
type UserHours struct {
	UserID uint    `json:"id"`
	Name   string  `json:"name"`
	Email  *string `json:"email,omitempty"`
	Hours  float64 `json:"hours"`
}

// ProjectHours is the per-project total for a window, with a nested breakdown
// of which users logged the hours.
type ProjectHours struct {
	ProjectID uint        `json:"id"`
	Name      string      `json:"name"`
	Hours     float64     `json:"hours"`
	Users     []UserHours `json:"users"`
}

// TrendPoint is one bucket of a trend series. Empty buckets are always
// emitted with zero hours so callers can render a continuous series.
type TrendPoint struct {
	Label string  `json:"label"` // YYYY-MM-DD for day buckets, YYYY-MM for month buckets
	Hours float64 `json:"hours"`
}

// StatisticsSummary is the full aggregation output for a user set and window.
type StatisticsSummary struct {
	StartDate      time.Time      `json:"start_date"`
	EndDate        time.Time      `json:"end_date"`
	TotalEntries   int64          `json:"total_entries"`
	TotalHours     float64        `json:"total_hours"`
	HoursByDay     []DayHours     `json:"hours_by_day"`
	HoursByUser    []UserHours    `json:"hours_by_user"`
	HoursByProject []ProjectHours `json:"hours_by_project"`
	Trend          []TrendPoint   `json:"trend"`
}

// UserStatistics is the per-user summary served by the admin user page.
type UserStatistics struct {
	TotalEntries   int64   `json:"total_entries"`
	TotalHours     float64 `json:"total_hours"`
	ActiveProjects int64   `json:"active_projects"`
}
