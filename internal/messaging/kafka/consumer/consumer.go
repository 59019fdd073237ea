package consumer

import (
	"context"
	"encoding/json"
	"time"

	"timetrack/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the subset of *kafkago.Reader the consumers need.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// VacationNotifier projects vacation status changes into user notifications.
type VacationNotifier interface {
	NotifyVacationStatusChanged(ctx context.Context, event events.VacationStatusChangedEvent) error
}

// Retry bounds how a consumer waits between failed fetches and failed
// notifications. Delays double from Initial up to Max. A notification is
// attempted at most Attempts times before the message is committed anyway.
type Retry struct {
	Initial  time.Duration
	Max      time.Duration
	Attempts int
}

var DefaultRetry = Retry{Initial: 500 * time.Millisecond, Max: 30 * time.Second, Attempts: 8}

type Option func(*Retry)

func WithRetry(r Retry) Option {
	return func(dst *Retry) { *dst = r }
}

func (r Retry) next(d time.Duration) time.Duration {
	if d <= 0 {
		return r.Initial
	}
	d *= 2
	if d > r.Max {
		return r.Max
	}
	return d
}

// wait sleeps for d and reports false if ctx ended first.
func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func ConsumeVacationStatusChanged(
	ctx context.Context,
	reader MessageReader,
	notifier VacationNotifier,
	logger *zap.Logger,
	opts ...Option,
) {
	retry := DefaultRetry
	for _, opt := range opts {
		opt(&retry)
	}
	if retry.Attempts < 1 {
		retry.Attempts = 1
	}

	log := logger.Named("kafka.consumer.vacation_status")
	log.Info("vacation status consumer started")

	var fetchDelay time.Duration
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("vacation status consumer stopped")
				return
			}
			fetchDelay = retry.next(fetchDelay)
			log.Error("fetch vacation status message failed", zap.Duration("retry_in", fetchDelay), zap.Error(err))
			if !wait(ctx, fetchDelay) {
				log.Info("vacation status consumer stopped")
				return
			}
			continue
		}
		fetchDelay = 0

		var event events.VacationStatusChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode vacation status event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if event.EventType != events.VacationStatusChanged {
			log.Debug("skipping unrelated event", zap.String("event_type", event.EventType))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if !notify(ctx, notifier, event, retry, log) {
			// uncommitted; redelivered on the next start
			log.Info("vacation status consumer stopped")
			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit vacation status message failed", zap.Error(err))
			continue
		}
	}
}

// notify delivers event, retrying with back-off. It returns false only when
// ctx ends before the message can be settled.
func notify(
	ctx context.Context,
	notifier VacationNotifier,
	event events.VacationStatusChangedEvent,
	retry Retry,
	log *zap.Logger,
) bool {
	fields := []zap.Field{
		zap.String("vacation_request_id", event.VacationRequestID),
		zap.String("user_id", event.UserID),
	}

	var delay time.Duration
	for attempt := 1; ; attempt++ {
		err := notifier.NotifyVacationStatusChanged(ctx, event)
		if err == nil {
			log.Info("vacation notification stored", append(fields, zap.String("status", event.ToStatus))...)
			return true
		}
		if attempt >= retry.Attempts {
			log.Error("vacation notification dropped after retries",
				append(fields, zap.Int("attempts", attempt), zap.Error(err))...)
			return true
		}

		delay = retry.next(delay)
		log.Warn("store vacation notification failed",
			append(fields, zap.Int("attempt", attempt), zap.Duration("retry_in", delay), zap.Error(err))...)
		if !wait(ctx, delay) {
			return false
		}
	}
}
