package hub

import (
	"context"
	"encoding/json"
	"log"

	"tutorchat/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// Subscriber opens the Redis subscription carrying every recipient's notifications.
type Subscriber interface {
	SubscribeNotifications(ctx context.Context) *redis.PubSub
}

// StartPubSubListener слухає Redis Pub/Sub і передає сповіщення в хаб.
func (m *ManagerService) StartPubSubListener(ctx context.Context, sub Subscriber) {
	go func() {
		pubsub := sub.SubscribeNotifications(ctx)
		defer pubsub.Close()

		m.Listen(ctx, pubsub.Channel())
	}()
}

// Listen decodes pub/sub payloads and hands them to Run until ch closes or ctx ends.
func (m *ManagerService) Listen(ctx context.Context, ch <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var n models.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				log.Printf("ERROR: bad notification payload on %s: %v", msg.Channel, err)
				continue
			}

			select {
			case m.DeliverCh <- n:
			case <-ctx.Done():
				return
			}
		}
	}
}
