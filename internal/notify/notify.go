// Package notify fans a single notification out to the in-app, email and push
// channels and runs that fan-out off the request path.
package notify

import (
	"context"
	"log"

	"tutorchat/backend/internal/apperr"
)

// Contract is the unified notification handed to every channel.
type Contract struct {
	RecipientID string         `json:"recipientId"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	Priority    string         `json:"priority"`
	ActionURL   string         `json:"actionUrl,omitempty"`
	ActionText  string         `json:"actionText,omitempty"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	SendEmail   bool           `json:"sendEmail"`
	SendPush    bool           `json:"sendPush"`
}

type InAppOutcome struct {
	Success bool `json:"success"`
}

type EmailOutcome struct {
	Sent bool `json:"sent"`
}

type PushOutcome struct {
	Sent   int      `json:"sent"`
	Errors []string `json:"errors,omitempty"`
}

// Outcome reports what each channel did with one contract.
type Outcome struct {
	InApp InAppOutcome `json:"inApp"`
	Email EmailOutcome `json:"email"`
	Push  PushOutcome  `json:"push"`
}

// Sender is the notification boundary: send(contract) -> outcome.
type Sender interface {
	Send(ctx context.Context, c Contract) Outcome
}

type InAppChannel interface {
	Deliver(ctx context.Context, c Contract) error
}

type EmailChannel interface {
	Email(ctx context.Context, c Contract) (bool, error)
}

type PushChannel interface {
	Push(ctx context.Context, c Contract) PushOutcome
}

// Service delivers a contract on every configured channel. A nil channel is skipped.
type Service struct {
	InApp InAppChannel
	Email EmailChannel
	Push  PushChannel
}

func NewService(inApp InAppChannel, email EmailChannel, push PushChannel) *Service {
	return &Service{InApp: inApp, Email: email, Push: push}
}

// Send never fails as a whole; channel failures are logged and reflected in the outcome.
func (s *Service) Send(ctx context.Context, c Contract) Outcome {
	var out Outcome

	if s.InApp != nil {
		if err := s.InApp.Deliver(ctx, c); err != nil {
			logChannelError("in-app", c.RecipientID, err)
		} else {
			out.InApp.Success = true
		}
	}

	if c.SendEmail && s.Email != nil {
		sent, err := s.Email.Email(ctx, c)
		if err != nil {
			logChannelError("email", c.RecipientID, err)
		}
		out.Email.Sent = sent
	}

	if c.SendPush && s.Push != nil {
		out.Push = s.Push.Push(ctx, c)
		for _, e := range out.Push.Errors {
			log.Printf("WARNING: push to %s: %s", c.RecipientID, e)
		}
	}

	return out
}

func logChannelError(channel, recipientID string, err error) {
	err = apperr.Notification(channel+" delivery failed", err)
	log.Printf("ERROR: notification to %s: %v", recipientID, err)
}
