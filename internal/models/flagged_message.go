package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FlaggedStatus tells whether the flagged content was blocked or admitted for review.
type FlaggedStatus string

const (
	FlaggedBlocked FlaggedStatus = "blocked"
	FlaggedReview  FlaggedStatus = "review"
)

// FlaggedMessage is the audit copy of a blocked or admitted-but-flagged message.
// It keeps the original content for moderators and is retained indefinitely.
type FlaggedMessage struct {
	ID string `gorm:"primaryKey" json:"id"`

	ConversationID string         `gorm:"type:text;not null;index" json:"conversation_id"`
	SenderID       string         `gorm:"type:text;not null;index" json:"sender_id"`
	Content        string         `gorm:"type:text;not null" json:"content"`
	Flags          datatypes.JSON `json:"flags"`
	Status         FlaggedStatus  `gorm:"type:text;not null;index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate generates a UUID for the record if none was set.
func (f *FlaggedMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return
}
