package vacation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"timetrack/internal/events"
	"timetrack/internal/messaging/kafka"
	"timetrack/internal/shared/apperror"
	"timetrack/internal/shared/contextutil"
	"timetrack/internal/user"
	vacationerrors "timetrack/internal/vacation/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// TransitionRecorder counts status changes; satisfied by *metrics.Metrics.
type TransitionRecorder interface {
	VacationTransition(status string)
}

//go:generate mockgen -source=vacation_service.go -destination=mock/vacation_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, userID string, req CreateVacationRequest) (VacationResponse, error)
	GetMyRequests(ctx context.Context, userID string, skip, limit int) ([]VacationResponse, error)
	GetPending(ctx context.Context, skip, limit int) ([]VacationResponse, error)
	GetByID(ctx context.Context, actorID, actorRole, id string) (VacationResponse, error)
	Update(ctx context.Context, actorID, id string, req UpdateVacationRequest) (VacationResponse, error)
	Approve(ctx context.Context, actorID, id string) (VacationResponse, error)
	Reject(ctx context.Context, actorID, id, rejectionReason string) (VacationResponse, error)
	Cancel(ctx context.Context, actorID, id string) (VacationResponse, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	outbox  kafka.OutboxRepository
	metrics TransitionRecorder
	now     func() time.Time
	logger  *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	metrics TransitionRecorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("vacation.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("vacation.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		outbox:  outboxRepo,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  l,
	}
}

func (s *service) Create(ctx context.Context, userID string, req CreateVacationRequest) (VacationResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)
	l.Debug("create vacation requested",
		zap.String("user_id", userID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	uid, err := uuid.Parse(userID)
	if err != nil {
		return VacationResponse{}, apperror.ErrUnauthorized
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return VacationResponse{}, vacationerrors.ErrReasonRequired
	}
	start, end, err := s.validateRange(req.StartDate, req.EndDate)
	if err != nil {
		l.Warn("create vacation validation failed", zap.Error(err))
		return VacationResponse{}, err
	}

	vacationType := req.VacationType
	if vacationType == "" {
		vacationType = TypeVacation
	}

	v := &VacationRequest{
		ID:           uuid.New(),
		UserID:       uid,
		StartDate:    start,
		EndDate:      end,
		VacationType: vacationType,
		Status:       StatusPending,
		Reason:       reason,
		Notes:        trimmedOrNil(req.Notes),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error("create vacation begin tx failed", zap.Error(err))
		return VacationResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, v); err != nil {
		l.Error("create vacation persist failed", zap.Error(err))
		return VacationResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		l.Error("create vacation commit failed", zap.Error(err))
		return VacationResponse{}, err
	}

	l.Info("create vacation success",
		zap.String("vacation_request_id", v.ID.String()),
		zap.String("user_id", userID),
	)
	return mapToResponse(*v), nil
}

func (s *service) GetMyRequests(ctx context.Context, userID string, skip, limit int) ([]VacationResponse, error) {
	skip, limit = clampPage(skip, limit)
	rows, err := s.repo.FindByUser(ctx, userID, skip, limit)
	if err != nil {
		s.logger.Error("get my vacation requests failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetPending(ctx context.Context, skip, limit int) ([]VacationResponse, error) {
	skip, limit = clampPage(skip, limit)
	rows, err := s.repo.FindPending(ctx, skip, limit)
	if err != nil {
		s.logger.Error("get pending vacation requests failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByID(ctx context.Context, actorID, actorRole, id string) (VacationResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return VacationResponse{}, vacationerrors.ErrInvalidVacationID
	}

	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return VacationResponse{}, vacationerrors.ErrVacationNotFound
		}
		return VacationResponse{}, err
	}

	if v.UserID.String() != actorID && actorRole != user.RoleManager && actorRole != user.RoleAdmin {
		return VacationResponse{}, vacationerrors.ErrNotOwner
	}
	return mapToResponse(*v), nil
}

func (s *service) Update(ctx context.Context, actorID, id string, req UpdateVacationRequest) (VacationResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return VacationResponse{}, vacationerrors.ErrInvalidVacationID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error("update vacation begin tx failed", zap.Error(err))
		return VacationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	v, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return VacationResponse{}, vacationerrors.ErrVacationNotFound
		}
		return VacationResponse{}, err
	}
	if v.UserID.String() != actorID {
		return VacationResponse{}, vacationerrors.ErrNotOwner
	}
	if v.Status != StatusPending {
		return VacationResponse{}, vacationerrors.ErrInvalidStatusTransition
	}

	start, end := v.StartDate, v.EndDate
	if req.StartDate != nil {
		if start, err = parseDate(*req.StartDate); err != nil {
			return VacationResponse{}, err
		}
		if start.Before(s.today()) {
			return VacationResponse{}, vacationerrors.ErrStartDateInPast
		}
	}
	if req.EndDate != nil {
		if end, err = parseDate(*req.EndDate); err != nil {
			return VacationResponse{}, err
		}
	}
	if start.After(end) {
		return VacationResponse{}, vacationerrors.ErrInvalidDateRange
	}
	v.StartDate, v.EndDate = start, end

	if req.VacationType != nil {
		v.VacationType = *req.VacationType
	}
	if req.Reason != nil {
		reason := strings.TrimSpace(*req.Reason)
		if reason == "" {
			return VacationResponse{}, vacationerrors.ErrReasonRequired
		}
		v.Reason = reason
	}
	if req.Notes != nil {
		v.Notes = trimmedOrNil(req.Notes)
	}

	if err := qtx.Update(ctx, v, StatusPending); err != nil {
		if errors.Is(err, ErrStatusChanged) {
			return VacationResponse{}, vacationerrors.ErrInvalidStatusTransition
		}
		l.Error("update vacation persist failed", zap.String("vacation_request_id", id), zap.Error(err))
		return VacationResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		l.Error("update vacation commit failed", zap.String("vacation_request_id", id), zap.Error(err))
		return VacationResponse{}, err
	}

	l.Info("update vacation success", zap.String("vacation_request_id", id))
	return mapToResponse(*v), nil
}

func (s *service) Approve(ctx context.Context, actorID, id string) (VacationResponse, error) {
	return s.transition(ctx, actorID, id, StatusApproved, nil)
}

func (s *service) Reject(ctx context.Context, actorID, id, rejectionReason string) (VacationResponse, error) {
	reason := strings.TrimSpace(rejectionReason)
	if reason == "" {
		return VacationResponse{}, vacationerrors.ErrRejectionReasonRequired
	}
	return s.transition(ctx, actorID, id, StatusRejected, &reason)
}

func (s *service) Cancel(ctx context.Context, actorID, id string) (VacationResponse, error) {
	return s.transition(ctx, actorID, id, StatusCancelled, nil)
}

func (s *service) transition(ctx context.Context, actorID, id, target string, rejectionReason *string) (VacationResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)
	l.Debug("transition vacation status requested",
		zap.String("vacation_request_id", id),
		zap.String("actor_id", actorID),
		zap.String("target_status", target),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return VacationResponse{}, apperror.ErrUnauthorized
	}
	if _, err := uuid.Parse(id); err != nil {
		return VacationResponse{}, vacationerrors.ErrInvalidVacationID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error("transition vacation status begin tx failed", zap.Error(err))
		return VacationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	v, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return VacationResponse{}, vacationerrors.ErrVacationNotFound
		}
		return VacationResponse{}, err
	}

	if target == StatusCancelled && v.UserID != actorUUID {
		return VacationResponse{}, vacationerrors.ErrNotOwner
	}
	if !CanTransition(v.Status, target) {
		l.Warn("transition vacation status invalid",
			zap.String("vacation_request_id", id),
			zap.String("from_status", v.Status),
			zap.String("to_status", target),
		)
		return VacationResponse{}, vacationerrors.ErrInvalidStatusTransition
	}

	from := v.Status
	v.Status = target
	switch target {
	case StatusApproved:
		now := s.now()
		v.ApprovedBy = &actorUUID
		v.ApprovedAt = &now
	case StatusRejected:
		v.RejectionReason = rejectionReason
	}

	if err := qtx.Update(ctx, v, from); err != nil {
		if errors.Is(err, ErrStatusChanged) {
			l.Warn("transition vacation status lost race",
				zap.String("vacation_request_id", id),
				zap.String("to_status", target),
			)
			return VacationResponse{}, vacationerrors.ErrInvalidStatusTransition
		}
		l.Error("transition vacation status persist failed",
			zap.String("vacation_request_id", id),
			zap.String("target_status", target),
			zap.Error(err),
		)
		return VacationResponse{}, err
	}
	if err := s.enqueue(ctx, tx, actorID, from, v); err != nil {
		l.Error("transition vacation status outbox persist failed",
			zap.String("vacation_request_id", id),
			zap.Error(err),
		)
		return VacationResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		l.Error("transition vacation status commit failed", zap.String("vacation_request_id", id), zap.Error(err))
		return VacationResponse{}, err
	}

	if s.metrics != nil {
		s.metrics.VacationTransition(target)
	}
	l.Info("transition vacation status success",
		zap.String("vacation_request_id", id),
		zap.String("from_status", from),
		zap.String("status", target),
	)
	return mapToResponse(*v), nil
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, actorID, from string, v *VacationRequest) error {
	if s.outbox == nil {
		return nil
	}

	event := events.VacationStatusChangedEvent{
		EventType:         events.VacationStatusChanged,
		VacationRequestID: v.ID.String(),
		UserID:            v.UserID.String(),
		ActorID:           actorID,
		FromStatus:        from,
		ToStatus:          v.Status,
		StartDate:         v.StartDate.Format(dateLayout),
		EndDate:           v.EndDate.Format(dateLayout),
		OccurredAt:        s.now(),
	}
	if v.RejectionReason != nil {
		event.RejectionReason = *v.RejectionReason
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "vacation_request",
		AggregateID:   v.ID.String(),
		EventType:     events.VacationStatusChanged,
		Topic:         events.VacationStatusTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *service) validateRange(from, to string) (time.Time, time.Time, error) {
	start, err := parseDate(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, vacationerrors.ErrInvalidDateRange
	}
	if start.Before(s.today()) {
		return time.Time{}, time.Time{}, vacationerrors.ErrStartDateInPast
	}
	return start, end, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, vacationerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func clampPage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return skip, limit
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func mapToResponse(v VacationRequest) VacationResponse {
	resp := VacationResponse{
		ID:              v.ID.String(),
		UserID:          v.UserID.String(),
		StartDate:       v.StartDate.Format(dateLayout),
		EndDate:         v.EndDate.Format(dateLayout),
		VacationType:    v.VacationType,
		Status:          v.Status,
		Reason:          v.Reason,
		Notes:           v.Notes,
		RejectionReason: v.RejectionReason,
		DurationDays:    v.DurationDays(),
		CreatedAt:       v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       v.UpdatedAt.Format(time.RFC3339),
	}
	if v.ApprovedBy != nil {
		id := v.ApprovedBy.String()
		resp.ApprovedBy = &id
	}
	if v.ApprovedAt != nil {
		at := v.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &at
	}
	if v.User != nil {
		resp.User = &RequesterSummary{
			ID:       v.User.ID.String(),
			Email:    v.User.Email,
			Username: v.User.Username,
			FullName: v.User.FullName,
		}
	}
	return resp
}

func mapToListResponse(rows []VacationRequest) []VacationResponse {
	resp := make([]VacationResponse, len(rows))
	for i, r := range rows {
		resp[i] = mapToResponse(r)
	}
	return resp
}
