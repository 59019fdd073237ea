package notification

import (
	"context"
	"fmt"
	"time"

	"timetrack/internal/events"

	"go.uber.org/zap"
)

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	NotifyVacationStatusChanged(ctx context.Context, event events.VacationStatusChangedEvent) error
	ListMine(ctx context.Context, userID string, limit int) ([]Notification, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, logger: l, now: func() time.Time { return time.Now().UTC() }}
}

func (s *service) NotifyVacationStatusChanged(ctx context.Context, event events.VacationStatusChangedEvent) error {
	if event.UserID == "" {
		s.logger.Warn("vacation event without user, skipping", zap.String("vacation_request_id", event.VacationRequestID))
		return nil
	}

	createdAt := event.OccurredAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	n := Notification{
		ID:                event.VacationRequestID + ":" + event.ToStatus,
		UserID:            event.UserID,
		Kind:              KindVacationStatus,
		Title:             vacationTitle(event.ToStatus),
		Message:           vacationMessage(event),
		VacationRequestID: event.VacationRequestID,
		CreatedAt:         createdAt,
	}

	stored, err := s.repo.Push(ctx, n)
	if err != nil {
		return err
	}
	if !stored {
		s.logger.Debug("duplicate vacation notification ignored", zap.String("notification_id", n.ID))
	}
	return nil
}

func (s *service) ListMine(ctx context.Context, userID string, limit int) ([]Notification, error) {
	return s.repo.List(ctx, userID, limit)
}

func vacationTitle(status string) string {
	switch status {
	case "approved":
		return "Vacation approved"
	case "rejected":
		return "Vacation rejected"
	case "cancelled":
		return "Vacation cancelled"
	case "pending":
		return "Vacation submitted"
	default:
		return "Vacation updated"
	}
}

func vacationMessage(e events.VacationStatusChangedEvent) string {
	msg := fmt.Sprintf("Your vacation request for %s to %s is now %s.", e.StartDate, e.EndDate, e.ToStatus)
	if e.ToStatus == "rejected" && e.RejectionReason != "" {
		msg += " Reason: " + e.RejectionReason
	}
	return msg
}
