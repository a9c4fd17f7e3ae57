package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	fw := &fakeWriter{}
	p := &KafkaPublisher{w: fw}

	ev := New("review_created", map[string]any{"review_id": 3})
	require.NoError(t, p.Publish(context.Background(), TopicReviews, "7", ev))
	require.Len(t, fw.msgs, 1)

	msg := fw.msgs[0]
	assert.Equal(t, TopicReviews, msg.Topic)
	assert.Equal(t, "7", string(msg.Key))

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "review_created", got["type"])
	assert.EqualValues(t, 3, got["data"].(map[string]any)["review_id"])

	require.NoError(t, p.Close())
	assert.True(t, fw.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{w: &fakeWriter{err: errors.New("broker down")}}
	err := p.Publish(context.Background(), TopicUsers, "1", New("user_signed_up", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestEmit_SwallowsErrors(t *testing.T) {
	p := &KafkaPublisher{w: &fakeWriter{err: errors.New("broker down")}}
	assert.NotPanics(t, func() {
		Emit(context.Background(), p, 0, TopicUsers, "1", New("user_signed_up", nil))
		Emit(context.Background(), nil, 0, TopicUsers, "1", New("user_signed_up", nil))
		Emit(context.Background(), Nop{}, 0, TopicUsers, "1", New("user_signed_up", nil))
	})
}

func TestNewWriter_FlushesSingleMessagesPromptly(t *testing.T) {
	w := newWriter([]string{"localhost:9092"}, 2*time.Second)
	defer w.Close()

	assert.Equal(t, 1, w.BatchSize)
	assert.Equal(t, flushInterval, w.BatchTimeout)
	assert.Less(t, w.BatchTimeout, 100*time.Millisecond)
	assert.Equal(t, 2*time.Second, w.WriteTimeout)
	assert.Equal(t, kafka.RequireOne, w.RequiredAcks)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}
