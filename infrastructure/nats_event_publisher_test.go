package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"jackpot/events"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/wait"
)

type publishedMessage struct {
	subject string
	data    []byte
}

// recordingPublisher captures messages instead of sending them
type recordingPublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (r *recordingPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, publishedMessage{subject: subject, data: data})
	return nil
}

func TestNATSEventPublisher_PublishesEnvelope(t *testing.T) {
	client := &recordingPublisher{}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), nil, nil)
	settledAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	publisher.now = func() time.Time { return settledAt }

	event := events.WagerSettledEvent{
		AccountKey: "4242",
		BetID:      7,
		Amount:     100,
		Roll:       77,
		Band:       "win",
		IsWin:      true,
		Payout:     200,
		NewBalance: 600,
		PoolAmount: 900,
	}

	require.NoError(t, publisher.Publish(event))
	require.Len(t, client.messages, 1)
	assert.Equal(t, SubjectWagerSettled, client.messages[0].subject)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(client.messages[0].data, &envelope))
	assert.Equal(t, "wager_settled", envelope.EventType)
	assert.Equal(t, SourceService, envelope.SourceService)
	assert.True(t, envelope.Timestamp.Equal(settledAt))
	_, err := uuid.Parse(envelope.EventID)
	assert.NoError(t, err)

	var payload events.WagerSettledEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, "4242", payload.AccountKey)
	assert.Equal(t, int64(200), payload.Payout)
	assert.Equal(t, int64(900), payload.PoolAmount)
}

func TestNATSEventPublisher_EmitsToLocalBus(t *testing.T) {
	bus := events.NewBus()
	received := make(chan events.Event, 1)
	bus.Subscribe(events.EventTypeJackpotHit, func(ctx context.Context, event events.Event) {
		received <- event
	})

	publisher := NewNATSEventPublisher(&recordingPublisher{}, NewEventSubjectMapper(), bus, nil)
	require.NoError(t, publisher.Publish(events.JackpotHitEvent{AccountKey: "1", JackpotShare: 500}))

	select {
	case event := <-received:
		assert.Equal(t, int64(500), event.(events.JackpotHitEvent).JackpotShare)
	case <-time.After(2 * time.Second):
		t.Fatal("local handler was not invoked")
	}
}

func TestNATSEventPublisher_PublishErrors(t *testing.T) {
	t.Run("broker failure is returned", func(t *testing.T) {
		client := &recordingPublisher{err: errors.New("connection refused")}
		publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), nil, nil)

		err := publisher.Publish(events.AccountCreatedEvent{AccountKey: "1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("missing stream is ignored", func(t *testing.T) {
		client := &recordingPublisher{err: errors.New("nats: no response from stream")}
		publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), nil, nil)

		assert.NoError(t, publisher.Publish(events.AccountCreatedEvent{AccountKey: "1"}))
	})
}

func TestNATSEventPublisher_JetStreamIntegration(t *testing.T) {
	endpoint := startContainer(t, "nats:2.10-alpine", "4222/tcp", []string{"-js"},
		wait.ForLog("Server is ready"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := NewNATSClient("nats://" + endpoint)
	require.NoError(t, client.Connect(ctx))
	defer client.Close()
	assert.True(t, client.IsConnected())

	mapper := NewEventSubjectMapper()
	require.NoError(t, client.EnsureEventStream(mapper.GetAllSubjects()))
	// A second call finds the existing stream
	require.NoError(t, client.EnsureEventStream(mapper.GetAllSubjects()))

	publisher := NewNATSEventPublisher(client, mapper, nil, nil)
	require.NoError(t, publisher.Publish(events.AllowanceClaimedEvent{
		AccountKey: "4242",
		Amount:     100,
		NewBalance: 100,
	}))

	msg, err := client.js.GetLastMsg(EventStreamName, SubjectAllowanceClaimed)
	require.NoError(t, err)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Data, &envelope))
	assert.Equal(t, "allowance_claimed", envelope.EventType)

	info, err := client.js.StreamInfo(EventStreamName)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.State.Msgs)
	assert.ElementsMatch(t, mapper.GetAllSubjects(), info.Config.Subjects)
	assert.Equal(t, nats.FileStorage, info.Config.Storage)
}
