package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/prompt-workshop-api/internal/models"
)

func TestSubmissionEventsPublishToRedis(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	events := NewSubmissionEvents(nil, "workshop.submissions", client, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pubsub := client.Subscribe(ctx, events.RedisChannel())
	defer pubsub.Close()
	_, err = pubsub.Receive(ctx)
	require.NoError(t, err)

	events.SubmissionCreated(ctx, models.Submission{ID: 7, SessionID: 1, UserID: "u", Stage: 2, OverallScore: 81})

	message, err := pubsub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var event submissionEvent
	require.NoError(t, json.Unmarshal([]byte(message.Payload), &event))
	require.Equal(t, SubmissionCreatedEvent, event.Type)
	require.Equal(t, uint(7), event.Submission.ID)
	require.Equal(t, 2, event.Submission.Stage)
}

func TestSubmissionEventsWithoutTransportsIsNoop(t *testing.T) {
	var events *SubmissionEvents
	events.SubmissionCreated(context.Background(), models.Submission{ID: 1})

	NewSubmissionEvents(nil, "", nil, testLogger()).SubmissionCreated(context.Background(), models.Submission{ID: 1})
}
