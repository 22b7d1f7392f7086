package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// TimeEntry is one stretch of tracked work. A NULL end_time means the entry is
// open (the user is currently clocked in); the store enforces at most one open
// entry per user through a partial unique index.
type TimeEntry struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	EncodedByUserID *uint      `gorm:"index" json:"encoded_by_user_id"` // set when logged on behalf of the user
	ProjectID       *uint      `gorm:"index" json:"project_id"`
	StartTime       time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	Description     string     `json:"description"`
	Duration        *int64     `json:"duration"` // seconds, derived from start/end on save

	// Captured geolocation, advisory only
	Latitude           *float64   `json:"latitude"`
	Longitude          *float64   `json:"longitude"`
	LocationAccuracy   *float64   `json:"location_accuracy"` // GPS accuracy in meters
	LocationCapturedAt *time.Time `json:"location_captured_at"`
	QRCodeScanned      bool       `gorm:"default:false" json:"qr_code_scanned"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	User      User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	EncodedBy *User    `gorm:"foreignKey:EncodedByUserID" json:"encoded_by,omitempty"`
	Project   *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

// TableName specifies the table name for TimeEntry
func (TimeEntry) TableName() string {
	return "time_entries"
}

// IsOpen reports whether the entry is still running.
func (t *TimeEntry) IsOpen() bool {
	return t.EndTime == nil
}

// CalculateDuration returns end−start in whole seconds, or nil while open.
func (t *TimeEntry) CalculateDuration() *int64 {
	if t.EndTime == nil {
		return nil
	}
	secs := int64(t.EndTime.Sub(t.StartTime) / time.Second)
	return &secs
}

// BeforeSave recomputes the duration whenever both timestamps are present.
// The stored duration is derived state; client-supplied values are overwritten.
func (t *TimeEntry) BeforeSave(tx *gorm.DB) error {
	if d := t.CalculateDuration(); d != nil {
		t.Duration = d
	}
	return nil
}

// FormattedDuration renders the duration as "Xh Ym" for log messages.
func (t *TimeEntry) FormattedDuration() string {
	if t.Duration == nil {
		return "en cours"
	}
	h := *t.Duration / 3600
	m := (*t.Duration % 3600) / 60
	return fmt.Sprintf("%dh %02dm", h, m)
}

// Snapshot returns the audit-relevant fields as a flat map, used for the
// old_values/new_values columns of the activity log.
func (t *TimeEntry) Snapshot() map[string]interface{} {
	snap := map[string]interface{}{
		"user_id":            t.UserID,
		"encoded_by_user_id": t.EncodedByUserID,
		"project_id":         t.ProjectID,
		"start_time":         t.StartTime,
		"end_time":           t.EndTime,
		"description":        t.Description,
		"duration":           t.Duration,
		"qr_code_scanned":    t.QRCodeScanned,
	}
	if t.Latitude != nil {
		snap["latitude"] = *t.Latitude
		snap["longitude"] = *t.Longitude
	}
	return snap
}

// TimeEntryResponse is the JSON response format for time entries
type TimeEntryResponse struct {
	ID                uint             `json:"id"`
	UserID            uint             `json:"user_id"`
	UserName          string           `json:"user_name,omitempty"`
	EncodedByUserID   *uint            `json:"encoded_by_user_id"`
	ProjectID         *uint            `json:"project_id"`
	Project           *ProjectResponse `json:"project,omitempty"`
	StartTime         time.Time        `json:"start_time"`
	EndTime           *time.Time       `json:"end_time"`
	Description       string           `json:"description"`
	Duration          *int64           `json:"duration"`
	DurationFormatted string           `json:"duration_formatted"`
	Latitude          *float64         `json:"latitude"`
	Longitude         *float64         `json:"longitude"`
	LocationAccuracy  *float64         `json:"location_accuracy"`
	QRCodeScanned     bool             `json:"qr_code_scanned"`
	WithinGeofence    *bool            `json:"within_geofence,omitempty"`
}

// ToResponse converts TimeEntry to TimeEntryResponse
func (t *TimeEntry) ToResponse() TimeEntryResponse {
	resp := TimeEntryResponse{
		ID:                t.ID,
		UserID:            t.UserID,
		EncodedByUserID:   t.EncodedByUserID,
		ProjectID:         t.ProjectID,
		StartTime:         t.StartTime,
		EndTime:           t.EndTime,
		Description:       t.Description,
		Duration:          t.Duration,
		DurationFormatted: t.FormattedDuration(),
		Latitude:          t.Latitude,
		Longitude:         t.Longitude,
		LocationAccuracy:  t.LocationAccuracy,
		QRCodeScanned:     t.QRCodeScanned,
	}
	if t.User.ID != 0 {
		resp.UserName = t.User.DisplayName()
	}
	if t.Project != nil {
		pr := t.Project.ToResponse()
		resp.Project = &pr
	}
	return resp
}
