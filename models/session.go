package models

import "time"

// SessionStatus represents the lifecycle status of a session.
type SessionStatus string

const (
	// SessionStatusCreated is the initial status after request acceptance.
	SessionStatusCreated SessionStatus = "CREATED"
	// SessionStatusScheduled indicates a date and duration have been set.
	SessionStatusScheduled SessionStatus = "SCHEDULED"
	// SessionStatusInProgress indicates a participant started the session.
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	// SessionStatusCompleted indicates both participants confirmed completion.
	SessionStatusCompleted SessionStatus = "COMPLETED"
	// SessionStatusCancelled indicates the session was called off.
	SessionStatusCancelled SessionStatus = "CANCELLED"
)

// Session is the scheduled meeting born from an accepted swap request.
// Exactly one session may exist per swap request.
type Session struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	SwapRequestID   uint          `gorm:"not null;uniqueIndex" json:"swap_request_id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	ScheduledDate   *time.Time    `json:"scheduled_date"`
	DurationMinutes int           `json:"duration_minutes"`
	MeetingURL      string        `json:"meeting_url"`
	MeetingPlatform string        `json:"meeting_platform"`
	SessionNotes    string        `json:"session_notes"`
	SharedResources string        `json:"shared_resources"`
	Status          SessionStatus `gorm:"type:varchar(20);default:'CREATED'" json:"status"`
	CompletedAt     *time.Time    `json:"completed_at"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	// Relationships
	SwapRequest SwapRequest `gorm:"foreignKey:SwapRequestID" json:"swap_request,omitempty"`
}

// TableName specifies the table name for GORM
func (Session) TableName() string {
	return "sessions"
}
