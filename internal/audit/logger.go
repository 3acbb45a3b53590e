package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	redisclient "github.com/edulink/linking-server-go/internal/redis"
)

type Action string

const (
	ActionCodeIssued      Action = "linking_code_issued"
	ActionCodeRedeemed    Action = "linking_code_redeemed"
	ActionRequestApproved Action = "link_request_approved"
	ActionRequestRejected Action = "link_request_rejected"
)

// Event is one audit record. Events are best-effort: recording never fails
// the operation that produced them.
type Event struct {
	Action      Action `json:"action"`
	Description string `json:"description"`
	ActorID     string `json:"actorId"`
	ActorName   string `json:"actorName"`
}

// Logger writes audit events to the process log and, when a redis client is
// configured, mirrors them onto the audit channel for external consumers.
type Logger struct {
	redis *redisclient.Client
}

// New creates an audit logger. redisClient may be nil, in which case events
// only go to the process log.
func New(redisClient *redisclient.Client) *Logger {
	return &Logger{redis: redisClient}
}

func (l *Logger) Log(ctx context.Context, event Event) {
	logger := log.With().
		Str("audit", "linking").
		Str("action", string(event.Action)).
		Time("timestamp", time.Now()).
		Logger()

	if event.ActorID != "" {
		logger = logger.With().Str("actor_id", event.ActorID).Logger()
	}
	if event.ActorName != "" {
		logger = logger.With().Str("actor_name", event.ActorName).Logger()
	}

	logger.Info().Msg(event.Description)

	l.mirror(ctx, event)
}

func (l *Logger) mirror(ctx context.Context, event Event) {
	if l.redis == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("marshal audit event")
		return
	}

	if err := l.redis.Publish(ctx, redisclient.AuditChannel, data).Err(); err != nil {
		log.Warn().Err(err).Msg("mirror audit event to redis")
	}
}
