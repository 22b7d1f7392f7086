package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role constants. Roles form a flat closed set; authorization is decided by
// exhaustive matching on these values, never by inheritance.
const (
	RoleAdmin        = "admin"
	RoleResponsable  = "responsable"
	RoleGestionnaire = "gestionnaire"
	RoleTeamLeader   = "team_leader"
	RoleOuvrier      = "ouvrier"

	// roleLegacyEmployee is the pre-rollout name for ouvrier, still present in
	// old rows and old clients.
	roleLegacyEmployee = "employee"
)

// NormalizeRole maps legacy role names onto the current set.
func NormalizeRole(role string) string {
	if role == roleLegacyEmployee {
		return RoleOuvrier
	}
	return role
}

// ValidRole reports whether role (after normalization) is a known role.
func ValidRole(role string) bool {
	switch NormalizeRole(role) {
	case RoleAdmin, RoleResponsable, RoleGestionnaire, RoleTeamLeader, RoleOuvrier:
		return true
	}
	return false
}

// User represents a user in the system
type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	FirstName         *string    `json:"first_name"`
	LastName          *string    `json:"last_name"`
	Name              string     `json:"-"` // legacy display name, used when first/last are absent
	Email             *string    `gorm:"uniqueIndex" json:"email"`
	EncryptedPassword string     `gorm:"column:encrypted_password;not null" json:"-"`
	Role              string     `gorm:"default:ouvrier" json:"role"`
	OrganizationID    *uint      `gorm:"index" json:"organization_id"`
	Phone             string     `json:"phone"`
	Address           *string    `json:"address"`
	Box               *string    `json:"box"`
	ZipCode           *string    `json:"zip_code"`
	City              *string    `json:"city"`
	EmployeeNumber    *string    `json:"employee_number"`
	HireDate          *time.Time `json:"hire_date"`
	IsActive          bool       `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// Associations
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	TimeEntries  []TimeEntry   `gorm:"foreignKey:UserID" json:"time_entries,omitempty"`

	// Management relations. Three independent edge sets with distinct
	// permission semantics; they are never merged into one table.
	ManagedOuvriers      []User `gorm:"many2many:user_responsables;joinForeignKey:responsable_id;joinReferences:ouvrier_id" json:"-"`
	TeamOuvriers         []User `gorm:"many2many:team_leaders;joinForeignKey:team_leader_id;joinReferences:ouvrier_id" json:"-"`
	ManagedGestionnaires []User `gorm:"many2many:responsable_gestionnaires;joinForeignKey:responsable_id;joinReferences:gestionnaire_id" json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeSave normalizes legacy roles and defaults.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleOuvrier
	}
	u.Role = NormalizeRole(u.Role)
	return nil
}

// DisplayName returns "First Last" when name parts are present, falling back
// to the stored legacy name.
func (u *User) DisplayName() string {
	first := ""
	if u.FirstName != nil {
		first = *u.FirstName
	}
	last := ""
	if u.LastName != nil {
		last = *u.LastName
	}
	full := strings.TrimSpace(first + " " + last)
	if full != "" {
		return full
	}
	return u.Name
}

// IsAdmin returns true if user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsResponsable returns true if user has responsable role
func (u *User) IsResponsable() bool {
	return u.Role == RoleResponsable
}

// IsGestionnaire returns true if user has gestionnaire role
func (u *User) IsGestionnaire() bool {
	return u.Role == RoleGestionnaire
}

// IsTeamLeader returns true if user has team_leader role
func (u *User) IsTeamLeader() bool {
	return u.Role == RoleTeamLeader
}

// IsOuvrier returns true if user has ouvrier role
func (u *User) IsOuvrier() bool {
	return u.Role == RoleOuvrier
}

// CanPoint reports whether the user may clock in/out at all.
func (u *User) CanPoint() bool {
	switch u.Role {
	case RoleAdmin, RoleResponsable, RoleGestionnaire, RoleTeamLeader, RoleOuvrier:
		return true
	}
	return false
}

// UserResponse is the JSON response format for users
type UserResponse struct {
	ID             uint       `json:"id"`
	Name           string     `json:"name"`
	FirstName      *string    `json:"first_name"`
	LastName       *string    `json:"last_name"`
	Email          *string    `json:"email"`
	Role           string     `json:"role"`
	OrganizationID *uint      `json:"organization_id"`
	Phone          string     `json:"phone"`
	Address        *string    `json:"address"`
	EmployeeNumber *string    `json:"employee_number"`
	HireDate       *time.Time `json:"hire_date"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:             u.ID,
		Name:           u.DisplayName(),
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
		Phone:          u.Phone,
		Address:        u.Address,
		EmployeeNumber: u.EmployeeNumber,
		HireDate:       u.HireDate,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
