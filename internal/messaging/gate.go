// Package messaging admits chat messages: it checks the conversation and the
// sender, applies the content policy and persists the outcome.
package messaging

import (
	"context"
	"errors"
	"log"
	"time"

	"tutorchat/backend/internal/apperr"
	"tutorchat/backend/internal/models"
	"tutorchat/backend/internal/storage"
)

// ConversationStore is what the gate needs from storage.
type ConversationStore interface {
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	ExpireConversation(ctx context.Context, id string) (bool, error)
}

// Gate decides whether a conversation accepts messages from a sender.
type Gate struct {
	Store ConversationStore
}

func NewGate(s ConversationStore) *Gate {
	return &Gate{Store: s}
}

// Check returns the conversation when senderID may post to it at now.
// A conversation whose expiry has passed is moved to expired before the
// Inactive error is returned.
func (g *Gate) Check(ctx context.Context, conversationID, senderID string, now time.Time) (*models.Conversation, error) {
	conv, err := g.Store.GetConversation(ctx, conversationID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("conversation not found")
	}
	if err != nil {
		return nil, apperr.Storage("failed to load conversation", err)
	}

	if !conv.IsParticipant(senderID) {
		return nil, apperr.Forbidden("you are not a participant of this conversation", apperr.ReasonNotParticipant)
	}

	if conv.Status != models.ConversationActive {
		return nil, apperr.Inactive("conversation is " + string(conv.Status))
	}

	if conv.HasExpired(now) {
		changed, err := g.Store.ExpireConversation(ctx, conv.ID)
		if err != nil {
			return nil, apperr.Storage("failed to expire conversation", err)
		}
		if changed {
			log.Printf("INFO: Conversation %s expired at %s.", conv.ID, conv.ExpiresAt.Format(time.RFC3339))
		}
		return nil, apperr.Inactive("conversation has expired")
	}

	return conv, nil
}
