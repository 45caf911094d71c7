// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User represents a member of the skill exchange.
// Rating is nil until the user's first completed session.
type User struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Email             string         `gorm:"unique;not null" json:"email"`
	Password          string         `gorm:"not null" json:"-"`
	FirstName         string         `json:"first_name"`
	LastName          string         `json:"last_name"`
	Bio               string         `json:"bio"`
	ProfilePictureURL string         `json:"profile_picture_url"`
	Rating            *float64       `json:"rating"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// FullName returns the user's display name. It is always derived from the
// name fields so the two can never drift apart.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
