// README: Notification sink publishing break reminders to per-driver Redis channels.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"routemind/internal/types"
)

// Reminder is the wire shape pushed onto a driver's channel. Clients
// subscribed to the channel render it as a local notification.
type Reminder struct {
	At    time.Time `json:"at"`
	Title string    `json:"title"`
	Body  string    `json:"body"`
}

// RedisSink delivers reminders over Redis pub/sub. Delivery is
// best-effort; nobody listening means the message is dropped, which is
// the right behavior for a reminder.
type RedisSink struct {
	redis *redis.Client
}

func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{redis: client}
}

func (s *RedisSink) Schedule(ctx context.Context, userID types.ID, at time.Time, title, body string) error {
	payload, err := json.Marshal(Reminder{At: at, Title: title, Body: body})
	if err != nil {
		return err
	}
	return s.redis.Publish(ctx, Channel(userID), payload).Err()
}

// Channel returns the pub/sub channel for a driver's reminders.
func Channel(userID types.ID) string {
	return "reminders:" + string(userID)
}
