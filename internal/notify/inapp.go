package notify

import (
	"context"
	"log"

	"tutorchat/backend/internal/models"

	"gorm.io/datatypes"
)

// NotificationStore persists in-app notifications and publishes them to online clients.
type NotificationStore interface {
	SaveNotification(ctx context.Context, n *models.Notification) error
	PublishNotification(ctx context.Context, n *models.Notification) error
}

// StoreChannel is the in-app channel. The stored row is the delivery; the
// publish only wakes connected clients.
type StoreChannel struct {
	Store NotificationStore
}

func NewStoreChannel(store NotificationStore) *StoreChannel {
	return &StoreChannel{Store: store}
}

func (ch *StoreChannel) Deliver(ctx context.Context, c Contract) error {
	n := &models.Notification{
		RecipientID: c.RecipientID,
		Title:       c.Title,
		Body:        c.Message,
		Priority:    c.Priority,
		ActionURL:   c.ActionURL,
		ActionText:  c.ActionText,
		ImageURL:    c.ImageURL,
		Metadata:    datatypes.JSONMap(c.Metadata),
	}
	if err := ch.Store.SaveNotification(ctx, n); err != nil {
		return err
	}

	if err := ch.Store.PublishNotification(ctx, n); err != nil {
		log.Printf("WARNING: notification %s saved but not published: %v", n.ID, err)
	}
	return nil
}
