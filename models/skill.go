package models

import "time"

// Skill is the canonical record for a skill name. The first user to mention
// a name creates it; every later reference resolves to the same row.
type Skill struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"unique;not null" json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Skill) TableName() string {
	return "skills"
}
