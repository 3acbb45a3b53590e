package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	redisclient "github.com/edulink/linking-server-go/internal/redis"
)

const (
	EventLinkRequested = "link_requested"
	EventLinkApproved  = "link_approved"
	EventLinkRejected  = "link_rejected"
)

// Event is an in-app notification delivered over the recipient's pubsub
// channel. Delivery is best-effort; the linking workflow never fails because
// a notification could not be published.
type Event struct {
	Type      string    `json:"type"`
	RequestID string    `json:"requestId,omitempty"`
	StudentID string    `json:"studentId,omitempty"`
	ParentID  string    `json:"parentId,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Publisher fans notification events out to per-user redis channels.
type Publisher struct {
	redis *redisclient.Client
}

// NewPublisher creates a publisher. redisClient may be nil, which disables
// delivery entirely.
func NewPublisher(redisClient *redisclient.Client) *Publisher {
	return &Publisher{redis: redisClient}
}

// Publish sends event to userID's notification channel.
func (p *Publisher) Publish(ctx context.Context, userID string, event Event) {
	if p.redis == nil {
		return
	}

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("marshal notification event")
		return
	}

	channel := redisclient.NotificationChannel(userID)
	if err := p.redis.Publish(ctx, channel, data).Err(); err != nil {
		log.Warn().
			Err(err).
			Str("channel", channel).
			Str("type", event.Type).
			Msg("publish notification")
	}
}
