package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestGroupByTopicKeepsOrderAndHeaders(t *testing.T) {
	now := time.Date(2026, time.February, 3, 9, 0, 0, 0, time.UTC)
	messages := []Message{
		{EventID: 1, AggregateType: "activity", AggregateID: 10, EventType: "activity.created", Topic: "activity_events", PartitionKey: "1", Payload: json.RawMessage(`{"activity_id":10}`)},
		{EventID: 2, AggregateType: "activity", AggregateID: 11, EventType: "activity.deleted", Topic: "activity_events", PartitionKey: "1", Payload: json.RawMessage(`{"activity_id":11}`)},
		{EventID: 3, AggregateType: "activity", AggregateID: 12, EventType: "activity.created", Topic: "audit", PartitionKey: "2", Payload: json.RawMessage(`{"activity_id":12}`)},
	}

	batches := groupByTopic(messages, now)

	require.Len(t, batches, 2)
	require.Len(t, batches["activity_events"], 2)
	require.Len(t, batches["audit"], 1)

	first := batches["activity_events"][0]
	require.Equal(t, []byte("1"), first.Key)
	require.JSONEq(t, `{"activity_id":10}`, string(first.Value))
	require.Equal(t, now, first.Time)
	require.Equal(t, "event_type", first.Headers[0].Key)
	require.Equal(t, "activity.created", string(first.Headers[0].Value))
	require.Equal(t, "activity.deleted", string(batches["activity_events"][1].Headers[0].Value))
}

func TestDeliverStopsOnProducerError(t *testing.T) {
	producer := &stubProducer{err: errors.New("broker unavailable")}
	d := &Dispatcher{producer: producer, logger: quietLogger()}

	err := d.deliver(context.Background(), []Message{
		{EventID: 1, EventType: "activity.created", Topic: "activity_events", PartitionKey: "1", Payload: json.RawMessage(`{}`)},
	})

	require.Error(t, err)
	require.Contains(t, err.Error(), "activity_events")
	require.Empty(t, producer.writes)
}

func TestDeliverWritesEveryTopic(t *testing.T) {
	producer := &stubProducer{}
	d := &Dispatcher{producer: producer, logger: quietLogger()}

	err := d.deliver(context.Background(), []Message{
		{EventID: 1, EventType: "activity.created", Topic: "a", PartitionKey: "1", Payload: json.RawMessage(`{}`)},
		{EventID: 2, EventType: "activity.created", Topic: "b", PartitionKey: "1", Payload: json.RawMessage(`{}`)},
	})

	require.NoError(t, err)
	require.Len(t, producer.writes, 2)
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type stubProducer struct {
	mu     sync.Mutex
	err    error
	writes []writtenBatch
}

type writtenBatch struct {
	topic    string
	messages []kafka.Message
}

func (s *stubProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	copied := make([]kafka.Message, len(msgs))
	copy(copied, msgs)
	s.writes = append(s.writes, writtenBatch{topic: topic, messages: copied})
	return nil
}
