package hub

import "tutorchat/backend/internal/models"

// Client is one live connection of a user that receives in-app notifications.
// A user may hold several clients at once (one per open tab or device).
type Client interface {
	// GetUserID returns the user the connection belongs to.
	GetUserID() string

	// GetSendChannel returns the channel the hub writes notifications to.
	GetSendChannel() chan<- models.Notification

	// Run starts the client's pumps.
	Run()
	// Close shuts the client down. It must be safe to call more than once.
	Close()
}
