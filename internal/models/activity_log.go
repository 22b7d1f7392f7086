package models

import (
	"encoding/json"
	"time"
)

// Activity log action constants
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionLogin    = "login"
	ActionLogout   = "logout"
	ActionClockIn  = "clock_in"
	ActionClockOut = "clock_out"
)

// ActivityLog is an append-only audit record. Rows are never mutated or
// deleted during normal operation; admin truncation is the one exception.
type ActivityLog struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      *uint           `gorm:"index" json:"user_id"` // nil means system-initiated
	Action      string          `gorm:"size:50;not null;index" json:"action"`
	ModelType   *string         `gorm:"size:100;index" json:"model_type"`
	ModelID     *uint           `json:"model_id"`
	OldValues   json.RawMessage `gorm:"type:jsonb" json:"old_values"`
	NewValues   json.RawMessage `gorm:"type:jsonb" json:"new_values"`
	Description string          `gorm:"type:text" json:"description"`
	IPAddress   string          `gorm:"size:45" json:"ip_address"`
	UserAgent   string          `gorm:"size:255" json:"user_agent"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`

	// Associations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for ActivityLog
func (ActivityLog) TableName() string {
	return "activity_logs"
}

// ActivityLogResponse is the JSON response format for activity logs
type ActivityLogResponse struct {
	ID          uint            `json:"id"`
	UserID      *uint           `json:"user_id"`
	UserName    string          `json:"user_name"`
	Action      string          `json:"action"`
	ModelType   *string         `json:"model_type"`
	ModelID     *uint           `json:"model_id"`
	OldValues   json.RawMessage `json:"old_values"`
	NewValues   json.RawMessage `json:"new_values"`
	Description string          `json:"description"`
	IPAddress   string          `json:"ip_address"`
	UserAgent   string          `json:"user_agent"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToResponse converts ActivityLog to ActivityLogResponse
func (a *ActivityLog) ToResponse() ActivityLogResponse {
	resp := ActivityLogResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		Action:      a.Action,
		ModelType:   a.ModelType,
		ModelID:     a.ModelID,
		OldValues:   a.OldValues,
		NewValues:   a.NewValues,
		Description: a.Description,
		IPAddress:   a.IPAddress,
		UserAgent:   a.UserAgent,
		CreatedAt:   a.CreatedAt,
	}
	if a.User != nil {
		resp.UserName = a.User.DisplayName()
	} else {
		resp.UserName = "System"
	}
	return resp
}
