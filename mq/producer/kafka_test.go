package producer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/internal/testlog"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/models/events"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

var testTopics = config.Topics{
	ConfessionApproved: "confession.approved",
	ConfessionRejected: "confession.rejected",
	ContentDeleted:     "content.deleted",
}

func TestPublishModerationEvent_RoutesByStatus(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaProducer(w, testTopics, testlog.New(t))
	ctx := context.Background()

	require.NoError(t, p.PublishModerationEvent(ctx, &events.ModerationEvent{EventID: "a", PostID: 42, Status: enums.StatusApproved, PostNumber: 7}))
	require.NoError(t, p.PublishModerationEvent(ctx, &events.ModerationEvent{EventID: "b", PostID: 43, Status: enums.StatusRejected, Reason: "spam"}))

	require.Len(t, w.messages, 2)
	assert.Equal(t, "confession.approved", w.messages[0].Topic)
	assert.Equal(t, "42", string(w.messages[0].Key))
	assert.Equal(t, "confession.rejected", w.messages[1].Topic)

	var decoded events.ModerationEvent
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &decoded))
	assert.Equal(t, int64(7), decoded.PostNumber)
	assert.Equal(t, "a", decoded.EventID)
}

func TestPublishContentDeleted(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaProducer(w, testTopics, testlog.New(t))

	err := p.PublishContentDeleted(context.Background(), &events.ContentDeletedEvent{TargetType: enums.TargetComment, TargetID: 7})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)
	assert.Equal(t, "content.deleted", w.messages[0].Topic)
	assert.Equal(t, "comment:7", string(w.messages[0].Key))
}

func TestSendEvent_WriterError(t *testing.T) {
	w := &fakeWriter{err: assert.AnError}
	p := newKafkaProducer(w, testTopics, testlog.New(t))
	err := p.PublishModerationEvent(context.Background(), &events.ModerationEvent{Status: enums.StatusApproved})
	assert.ErrorIs(t, err, assert.AnError)
}
