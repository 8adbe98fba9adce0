package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ModerationStatus is the review state of an admitted message.
type ModerationStatus string

const (
	ModerationApproved ModerationStatus = "approved"
	ModerationPending  ModerationStatus = "pending"
)

// Message represents an admitted chat message stored in the database.
// An approved message never carries a FilterReason; a message with a
// FilterReason is always pending.
type Message struct {
	ID string `gorm:"primaryKey" json:"id"`

	// ConversationID is the conversation the message belongs to.
	ConversationID string `gorm:"type:text;not null;index:idx_conversation_msg" json:"conversation_id"`
	// SenderID is the participant who sent the message.
	SenderID string `gorm:"type:text;not null" json:"sender_id"`
	// Content is the trimmed message text.
	Content string `gorm:"type:text;not null" json:"content"`
	// ModerationStatus is approved for clean messages and pending for flagged ones.
	ModerationStatus ModerationStatus `gorm:"type:text;not null" json:"moderation_status"`
	// FilterReason lists the flag types that put the message on review, comma separated.
	FilterReason *string `gorm:"type:text" json:"filter_reason"`

	CreatedAt time.Time `gorm:"index:idx_conversation_msg" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID for the message if none was set.
func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}
