package models

import "time"

// SwapRequestStatus represents the status of a swap request.
type SwapRequestStatus string

const (
	// SwapRequestStatusPending indicates a request awaiting the receiver's decision.
	SwapRequestStatusPending SwapRequestStatus = "PENDING"
	// SwapRequestStatusAccepted indicates the receiver accepted the request.
	SwapRequestStatusAccepted SwapRequestStatus = "ACCEPTED"
	// SwapRequestStatusRejected indicates the receiver rejected the request.
	SwapRequestStatusRejected SwapRequestStatus = "REJECTED"
	// SwapRequestStatusCancelled indicates the sender withdrew the request.
	SwapRequestStatusCancelled SwapRequestStatus = "CANCELLED"
)

// SwapRequest is a negotiation between two users over one directional skill
// pair: the sender offers TeachSkill and wants LearnSkill from the receiver.
// At most one PENDING request may exist per (sender, receiver) ordered pair.
type SwapRequest struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	SenderID     uint              `gorm:"not null;index" json:"sender_id"`
	ReceiverID   uint              `gorm:"not null;index" json:"receiver_id"`
	TeachSkillID uint              `gorm:"not null" json:"teach_skill_id"`
	LearnSkillID uint              `gorm:"not null" json:"learn_skill_id"`
	Status       SwapRequestStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`
	Message      string            `json:"message"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`

	// Relationships
	Sender     User  `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver   User  `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	TeachSkill Skill `gorm:"foreignKey:TeachSkillID" json:"teach_skill,omitempty"`
	LearnSkill Skill `gorm:"foreignKey:LearnSkillID" json:"learn_skill,omitempty"`
}

// TableName specifies the table name for GORM
func (SwapRequest) TableName() string {
	return "swap_requests"
}

// IsParticipant reports whether userID is the sender or receiver.
func (r *SwapRequest) IsParticipant(userID uint) bool {
	return r.SenderID == userID || r.ReceiverID == userID
}
