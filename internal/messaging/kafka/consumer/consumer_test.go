package consumer_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"timetrack/internal/events"
	"timetrack/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafkago.Message
	committed []int64
	cancel    context.CancelFunc
	fetchErrs int
	fetches   int
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches++
	if r.fetchErrs > 0 {
		r.fetchErrs--
		return kafkago.Message{}, errors.New("broker unreachable")
	}
	if len(r.queue) == 0 {
		r.cancel()
		return kafkago.Message{}, ctx.Err()
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

type fakeNotifier struct {
	got      []events.VacationStatusChangedEvent
	failures int
	calls    int
	onFail   func()
}

func (n *fakeNotifier) NotifyVacationStatusChanged(ctx context.Context, event events.VacationStatusChangedEvent) error {
	n.calls++
	if n.failures > 0 {
		n.failures--
		if n.onFail != nil {
			n.onFail()
		}
		return errors.New("redis down")
	}
	n.got = append(n.got, event)
	return nil
}

func message(t *testing.T, offset int64, v any) kafkago.Message {
	t.Helper()
	b, err := json.Marshal(v)
	assert.NoError(t, err)
	return kafkago.Message{Offset: offset, Value: b}
}

func TestConsumeVacationStatusChanged(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{cancel: cancel, queue: []kafkago.Message{
		message(t, 1, events.VacationStatusChangedEvent{
			EventType:         events.VacationStatusChanged,
			VacationRequestID: "v-1",
			UserID:            "u-1",
			ToStatus:          "approved",
			OccurredAt:        time.Now().UTC(),
		}),
		{Offset: 2, Value: []byte("not json")},
		message(t, 3, map[string]string{"event_type": "time_entry.clocked_in"}),
	}}
	notifier := &fakeNotifier{}

	consumer.ConsumeVacationStatusChanged(ctx, reader, notifier, zap.NewNop())

	if assert.Len(t, notifier.got, 1) {
		assert.Equal(t, "u-1", notifier.got[0].UserID)
	}
	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
}

var fastRetry = consumer.WithRetry(consumer.Retry{Initial: time.Millisecond, Max: 2 * time.Millisecond, Attempts: 3})

func statusEvent(t *testing.T, offset int64) kafkago.Message {
	t.Helper()
	return message(t, offset, events.VacationStatusChangedEvent{EventType: events.VacationStatusChanged, UserID: "u-1"})
}

func TestConsumeVacationStatusChanged_NotifierRetriedBeforeCommit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{cancel: cancel, queue: []kafkago.Message{statusEvent(t, 7), statusEvent(t, 8)}}
	notifier := &fakeNotifier{failures: 2}

	consumer.ConsumeVacationStatusChanged(ctx, reader, notifier, zap.NewNop(), fastRetry)

	assert.Equal(t, 4, notifier.calls)
	assert.Len(t, notifier.got, 2)
	assert.Equal(t, []int64{7, 8}, reader.committed)
}

func TestConsumeVacationStatusChanged_ExhaustedRetriesCommitAndMoveOn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{cancel: cancel, queue: []kafkago.Message{statusEvent(t, 7), statusEvent(t, 8)}}
	notifier := &fakeNotifier{failures: 3}

	consumer.ConsumeVacationStatusChanged(ctx, reader, notifier, zap.NewNop(), fastRetry)

	assert.Equal(t, 4, notifier.calls)
	assert.Len(t, notifier.got, 1)
	assert.Equal(t, []int64{7, 8}, reader.committed)
}

func TestConsumeVacationStatusChanged_ShutdownDuringRetryLeavesUncommitted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{cancel: cancel, queue: []kafkago.Message{statusEvent(t, 7)}}
	notifier := &fakeNotifier{failures: 1, onFail: cancel}

	consumer.ConsumeVacationStatusChanged(ctx, reader, notifier, zap.NewNop(),
		consumer.WithRetry(consumer.Retry{Initial: time.Hour, Max: time.Hour, Attempts: 5}))

	assert.Equal(t, 1, notifier.calls)
	assert.Empty(t, reader.committed)
}

func TestConsumeVacationStatusChanged_FetchErrorsBackOff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{cancel: cancel, fetchErrs: 2, queue: []kafkago.Message{statusEvent(t, 9)}}
	notifier := &fakeNotifier{}

	start := time.Now()
	consumer.ConsumeVacationStatusChanged(ctx, reader, notifier, zap.NewNop(),
		consumer.WithRetry(consumer.Retry{Initial: 5 * time.Millisecond, Max: 20 * time.Millisecond, Attempts: 1}))

	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
	assert.Equal(t, 4, reader.fetches)
	assert.Equal(t, []int64{9}, reader.committed)
}
