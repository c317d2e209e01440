package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/prompt-workshop-api/internal/dto"
	"github.com/noah-isme/prompt-workshop-api/internal/models"
	"github.com/noah-isme/prompt-workshop-api/internal/observability"
)

// SubmissionCreatedEvent is the event type published after a submission is stored.
const SubmissionCreatedEvent = "submission.created"

// SubmissionObserver is notified after a submission has been stored.
type SubmissionObserver interface {
	SubmissionCreated(ctx context.Context, submission models.Submission)
}

type submissionEvent struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Source     string                 `json:"source"`
	Submission dto.SubmissionResponse `json:"submission"`
	SentAt     time.Time              `json:"sent_at"`
}

// SubmissionEvents fans submission events out to NATS and redis pub/sub when configured.
type SubmissionEvents struct {
	nats         *nats.Conn
	natsSubject  string
	redis        *redis.Client
	redisChannel string
	logger       zerolog.Logger
	nodeID       string
}

// NewSubmissionEvents constructs the publisher. Nil transports are skipped.
func NewSubmissionEvents(natsConn *nats.Conn, subject string, redisClient *redis.Client, logger zerolog.Logger) *SubmissionEvents {
	channel := ""
	if subject != "" {
		channel = subject + ":" + SubmissionCreatedEvent
	}
	return &SubmissionEvents{
		nats:         natsConn,
		natsSubject:  subject,
		redis:        redisClient,
		redisChannel: channel,
		logger:       logger.With().Str("component", "submission_events").Logger(),
		nodeID:       uuid.NewString(),
	}
}

// RedisChannel returns the pub/sub channel events are published on.
func (e *SubmissionEvents) RedisChannel() string {
	return e.redisChannel
}

// SubmissionCreated publishes the event; failures are logged and never returned.
func (e *SubmissionEvents) SubmissionCreated(ctx context.Context, submission models.Submission) {
	if e == nil || (e.nats == nil && e.redis == nil) {
		return
	}

	payload, err := json.Marshal(submissionEvent{
		ID:         uuid.NewString(),
		Type:       SubmissionCreatedEvent,
		Source:     e.nodeID,
		Submission: dto.NewSubmissionResponse(submission),
		SentAt:     time.Now().UTC(),
	})
	if err != nil {
		e.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to encode submission event")
		return
	}

	if e.nats != nil && e.natsSubject != "" {
		if err := e.nats.Publish(e.natsSubject, payload); err != nil {
			observability.SubmissionEvents().WithLabelValues("nats", "error").Inc()
			e.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to publish submission event to nats")
		} else {
			observability.SubmissionEvents().WithLabelValues("nats", "ok").Inc()
		}
	}

	if e.redis != nil && e.redisChannel != "" {
		if err := e.redis.Publish(ctx, e.redisChannel, payload).Err(); err != nil {
			observability.SubmissionEvents().WithLabelValues("redis", "error").Inc()
			e.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to publish submission event to redis")
		} else {
			observability.SubmissionEvents().WithLabelValues("redis", "ok").Inc()
		}
	}
}

func notifySubmissionCreated(ctx context.Context, observers []SubmissionObserver, submission models.Submission) {
	for _, observer := range observers {
		if observer != nil {
			observer.SubmissionCreated(ctx, submission)
		}
	}
}
