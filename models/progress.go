package models

import "time"

// ProgressRecord tracks one participant's side of one skill in a session.
// Four records exist per session: each participant gets one for the skill
// they teach and one for the skill they learn. RatingGiven holds the 1-5
// rating the partner gave this user for that skill, if any.
type ProgressRecord struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	SessionID        uint       `gorm:"not null;index" json:"session_id"`
	UserID           uint       `gorm:"not null;index" json:"user_id"`
	SkillID          uint       `gorm:"not null" json:"skill_id"`
	TaughtConfirmed  bool       `json:"taught_confirmed"`
	LearnedConfirmed bool       `json:"learned_confirmed"`
	RatingGiven      *int       `json:"rating_given"`
	Feedback         string     `json:"feedback"`
	ConfirmedAt      *time.Time `json:"confirmed_at"`
	CreatedAt        time.Time  `json:"created_at"`

	// Relationships
	Session Session `gorm:"foreignKey:SessionID" json:"-"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Skill   Skill   `gorm:"foreignKey:SkillID" json:"skill,omitempty"`
}

// TableName specifies the table name for GORM
func (ProgressRecord) TableName() string {
	return "progress_records"
}
