package models

import "time"

// Project status constants
const (
	ProjectStatusActive   = "active"
	ProjectStatusArchived = "archived"
)

// Project is a work site that time entries are logged against. A project may
// carry GPS coordinates plus its own geofence radius (overriding the
// organization default) and an opaque QR-code token for on-site clock-in.
type Project struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Name           string     `gorm:"not null" json:"name"`
	ClientID       *uint      `gorm:"index" json:"client_id"`
	Description    *string    `json:"description"`
	Status         string     `gorm:"default:active" json:"status"`
	Latitude       *float64   `json:"latitude"`
	Longitude      *float64   `json:"longitude"`
	GeofenceRadius *int       `json:"geofence_radius"` // meters, overrides organization default when set
	QRCodeToken    *string    `gorm:"uniqueIndex;size:64" json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Associations
	Client      *Client     `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	TimeEntries []TimeEntry `gorm:"foreignKey:ProjectID" json:"time_entries,omitempty"`
}

// TableName specifies the table name for Project
func (Project) TableName() string {
	return "projects"
}

// IsActive returns true if the project accepts new time entries
func (p *Project) IsActive() bool {
	return p.Status == ProjectStatusActive
}

// HasLocation reports whether the project has coordinates for geofencing.
func (p *Project) HasLocation() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// ProjectResponse is the JSON response format for projects
type ProjectResponse struct {
	ID             uint     `json:"id"`
	Name           string   `json:"name"`
	ClientID       *uint    `json:"client_id"`
	Client         *Client  `json:"client,omitempty"`
	Description    *string  `json:"description"`
	Status         string   `json:"status"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	GeofenceRadius *int     `json:"geofence_radius"`
	HasQRCode      bool     `json:"has_qr_code"`
}

// ToResponse converts Project to ProjectResponse
func (p *Project) ToResponse() ProjectResponse {
	return ProjectResponse{
		ID:             p.ID,
		Name:           p.Name,
		ClientID:       p.ClientID,
		Client:         p.Client,
		Description:    p.Description,
		Status:         p.Status,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		GeofenceRadius: p.GeofenceRadius,
		HasQRCode:      p.QRCodeToken != nil,
	}
}
