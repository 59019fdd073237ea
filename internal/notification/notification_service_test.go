package notification_test

import (
	"context"
	"errors"
	"testing"

	"timetrack/internal/events"
	"timetrack/internal/notification"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeRepo struct {
	pushFn func(ctx context.Context, n notification.Notification) (bool, error)
	listFn func(ctx context.Context, userID string, limit int) ([]notification.Notification, error)
}

func (f *fakeRepo) Push(ctx context.Context, n notification.Notification) (bool, error) {
	if f.pushFn != nil {
		return f.pushFn(ctx, n)
	}
	return true, nil
}

func (f *fakeRepo) List(ctx context.Context, userID string, limit int) ([]notification.Notification, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID, limit)
	}
	return nil, nil
}

func TestService_NotifyVacationStatusChanged(t *testing.T) {
	t.Run("rejection carries reason", func(t *testing.T) {
		var got notification.Notification
		svc := notification.NewService(&fakeRepo{pushFn: func(ctx context.Context, n notification.Notification) (bool, error) {
			got = n
			return true, nil
		}}, zap.NewNop())

		err := svc.NotifyVacationStatusChanged(context.Background(), events.VacationStatusChangedEvent{
			EventType:         events.VacationStatusChanged,
			VacationRequestID: "v-1",
			UserID:            "u-1",
			ToStatus:          "rejected",
			StartDate:         "2026-03-01",
			EndDate:           "2026-03-03",
			RejectionReason:   "Peak season",
		})

		assert.NoError(t, err)
		assert.Equal(t, "v-1:rejected", got.ID)
		assert.Equal(t, "u-1", got.UserID)
		assert.Equal(t, "Vacation rejected", got.Title)
		assert.Equal(t, "Your vacation request for 2026-03-01 to 2026-03-03 is now rejected. Reason: Peak season", got.Message)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("missing user is skipped", func(t *testing.T) {
		called := false
		svc := notification.NewService(&fakeRepo{pushFn: func(ctx context.Context, n notification.Notification) (bool, error) {
			called = true
			return true, nil
		}}, zap.NewNop())

		assert.NoError(t, svc.NotifyVacationStatusChanged(context.Background(), events.VacationStatusChangedEvent{ToStatus: "approved"}))
		assert.False(t, called)
	})

	t.Run("repository error bubbles up", func(t *testing.T) {
		svc := notification.NewService(&fakeRepo{pushFn: func(ctx context.Context, n notification.Notification) (bool, error) {
			return false, errors.New("redis down")
		}}, zap.NewNop())

		err := svc.NotifyVacationStatusChanged(context.Background(), events.VacationStatusChangedEvent{UserID: "u-1", ToStatus: "approved"})
		assert.Error(t, err)
	})
}
