package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversationStatus is the lifecycle state of a conversation.
type ConversationStatus string

const (
	ConversationActive  ConversationStatus = "active"
	ConversationExpired ConversationStatus = "expired"
	ConversationClosed  ConversationStatus = "closed"
)

// Conversation is a bounded messaging thread between a student (the initiator)
// and a tutor (the counterpart).
type Conversation struct {
	// ID is the unique identifier of the conversation (UUID).
	ID string `gorm:"primaryKey" json:"id"`
	// StudentID is the participant who opened the conversation.
	StudentID string `gorm:"type:text;not null;index" json:"student_id"`
	// TutorID is the participant the conversation was opened with.
	TutorID string `gorm:"type:text;not null;index" json:"tutor_id"`
	// Status is mutated only by message admission (lazy expiry) or by the scheduler.
	Status ConversationStatus `gorm:"type:text;not null;default:'active'" json:"status"`
	// ExpiresAt is optional; nil means the conversation never expires.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	// LastMessageAt is the watermark of the latest admitted message.
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID for the conversation if none was set.
func (c *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// IsParticipant reports whether userID is the student or the tutor.
func (c *Conversation) IsParticipant(userID string) bool {
	return userID != "" && (userID == c.StudentID || userID == c.TutorID)
}

// Counterpart returns the participant who is not userID.
func (c *Conversation) Counterpart(userID string) string {
	if userID == c.StudentID {
		return c.TutorID
	}
	return c.StudentID
}

// HasExpired reports whether the expiry timestamp is at or before now.
func (c *Conversation) HasExpired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}
