package models

import "time"

// TeachSkill is a ledger entry: a skill the user offers to teach.
// Level is self-assessed proficiency 1-5.
type TeachSkill struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_teach_user_skill" json:"user_id"`
	SkillID   uint      `gorm:"not null;uniqueIndex:idx_teach_user_skill" json:"skill_id"`
	Level     int       `json:"level"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Skill Skill `gorm:"foreignKey:SkillID" json:"skill,omitempty"`
}

// TableName specifies the table name for GORM
func (TeachSkill) TableName() string {
	return "user_teach_skills"
}

// LearnSkill is a ledger entry: a skill the user wants to learn.
// Level is the user's current level 1-5; Note holds their learning goal.
type LearnSkill struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_learn_user_skill" json:"user_id"`
	SkillID   uint      `gorm:"not null;uniqueIndex:idx_learn_user_skill" json:"skill_id"`
	Level     int       `json:"level"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Skill Skill `gorm:"foreignKey:SkillID" json:"skill,omitempty"`
}

// TableName specifies the table name for GORM
func (LearnSkill) TableName() string {
	return "user_learn_skills"
}
