package models

import "time"

// Organization groups users and carries the tenant-level geolocation policy.
type Organization struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"not null" json:"name"`
	Code              string    `gorm:"uniqueIndex" json:"code"`
	Description       *string   `json:"description"`
	Address           *string   `json:"address"`
	City              *string   `json:"city"`
	PostalCode        *string   `json:"postal_code"`
	Country           *string   `json:"country"`
	Phone             *string   `json:"phone"`
	Email             *string   `json:"email"`
	IsActive          bool      `gorm:"default:true" json:"is_active"`
	LocationRequired  bool      `gorm:"default:false" json:"location_required"`
	GeofencingEnabled bool      `gorm:"default:false" json:"geofencing_enabled"`
	GeofencingRadius  *int      `json:"geofencing_radius"` // meters, default for projects without their own radius
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Associations
	Users []User `gorm:"foreignKey:OrganizationID" json:"users,omitempty"`
}

// TableName specifies the table name for Organization
func (Organization) TableName() string {
	return "organizations"
}
