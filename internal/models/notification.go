package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification is an in-app notification shown to a recipient.
type Notification struct {
	ID          string            `gorm:"primaryKey" json:"id"`
	RecipientID string            `gorm:"type:text;not null;index" json:"recipient_id"`
	Title       string            `gorm:"type:text;not null" json:"title"`
	Body        string            `gorm:"type:text" json:"body"`
	Priority    string            `gorm:"type:text" json:"priority"`
	ActionURL   string            `gorm:"type:text" json:"action_url,omitempty"`
	ActionText  string            `gorm:"type:text" json:"action_text,omitempty"`
	ImageURL    string            `gorm:"type:text" json:"image_url,omitempty"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
	Read        bool              `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return
}
