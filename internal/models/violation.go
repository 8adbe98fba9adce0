package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Severity of a content policy finding.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities: critical > high > medium > low. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Recordable reports whether a finding of this severity goes into the ledger.
func (s Severity) Recordable() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// ViolationAction is the restriction derived from a recorded violation.
type ViolationAction string

const (
	ActionNone    ViolationAction = "none"
	ActionMute24h ViolationAction = "mute_24h"
	ActionMute7d  ViolationAction = "mute_7d"
	ActionBan     ViolationAction = "ban"
)

// Restricts reports whether the action prevents the user from sending.
func (a ViolationAction) Restricts() bool {
	return a == ActionMute24h || a == ActionMute7d || a == ActionBan
}

// Violation is an immutable ledger entry recorded against a sender.
// Expiry is evaluated at read time; rows are never updated or purged.
type Violation struct {
	ID string `gorm:"primaryKey" json:"id"`

	UserID           string          `gorm:"type:text;not null;index:idx_violation_user" json:"user_id"`
	ConversationID   string          `gorm:"type:text" json:"conversation_id,omitempty"`
	FlaggedMessageID string          `gorm:"type:text" json:"flagged_message_id,omitempty"`
	Type             string          `gorm:"type:text;not null" json:"type"`
	Severity         Severity        `gorm:"type:text;not null" json:"severity"`
	Action           ViolationAction `gorm:"type:text;not null;index:idx_violation_user" json:"action"`
	ExpiresAt        *time.Time      `json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate generates a UUID for the violation if none was set.
func (v *Violation) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return
}
