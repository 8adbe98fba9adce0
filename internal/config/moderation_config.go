package config

import (
	"time"

	"tutorchat/backend/internal/models"
)

const (
	// Restrictions
	Mute24hDuration = 24 * time.Hour
	Mute7dDuration  = 7 * 24 * time.Hour

	// EscalationWindow bounds how far back prior violations count towards escalation.
	EscalationWindow = 30 * 24 * time.Hour

	// Notifications
	PreviewLength        = 100
	NotificationPriority = "normal"
	NotificationTimeout  = 30 * time.Second

	// Messages
	MaxMessageLength = 4000

	// Idempotent send
	IdempotencyWindow = 10 * time.Minute
)

// EscalationPolicy maps a severity to the action taken for the n-th recorded
// violation of that user within EscalationWindow (index = prior count, the last
// entry repeats). Only high and critical severities are recorded.
var EscalationPolicy = map[models.Severity][]models.ViolationAction{
	models.SeverityHigh: {
		models.ActionNone,
		models.ActionMute24h,
		models.ActionMute7d,
		models.ActionBan,
	},
	models.SeverityCritical: {
		models.ActionMute24h,
		models.ActionMute7d,
		models.ActionBan,
	},
}

// ActionDurations is the restriction window of each time-boxed action.
var ActionDurations = map[models.ViolationAction]time.Duration{
	models.ActionMute24h: Mute24hDuration,
	models.ActionMute7d:  Mute7dDuration,
}
