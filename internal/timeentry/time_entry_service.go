package timeentry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"timetrack/internal/events"
	"timetrack/internal/location"
	locationerrors "timetrack/internal/location/errors"
	"timetrack/internal/messaging/kafka"
	"timetrack/internal/shared/apperror"
	"timetrack/internal/shared/contextutil"
	timeentryerrors "timetrack/internal/timeentry/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// ClockRecorder counts clock events; satisfied by *metrics.Metrics.
type ClockRecorder interface {
	ClockEvent(kind string)
}

//go:generate mockgen -source=time_entry_service.go -destination=mock/time_entry_service_mock.go -package=mock
type Service interface {
	ClockIn(ctx context.Context, userID string, req ClockInRequest) (TimeEntryResponse, error)
	ClockOut(ctx context.Context, userID string, req ClockOutRequest) (TimeEntryResponse, error)
	GetMyEntries(ctx context.Context, userID string, skip, limit int) ([]TimeEntryResponse, error)
	GetMyActive(ctx context.Context, userID string) (TimeEntryResponse, error)
	GetActiveEmployees(ctx context.Context) ([]TimeEntryResponse, error)
	UpdateNotes(ctx context.Context, id string, req UpdateTimeEntryRequest) (TimeEntryResponse, error)
	ExportTimesheet(ctx context.Context, from, to string) (Timesheet, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	locations location.Repository
	outbox    kafka.OutboxRepository
	metrics   ClockRecorder
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	locations location.Repository,
	outboxRepo kafka.OutboxRepository,
	metrics ClockRecorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("timeentry.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("timeentry.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		locations: locations,
		outbox:    outboxRepo,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    l,
	}
}

func (s *service) ClockIn(ctx context.Context, userID string, req ClockInRequest) (TimeEntryResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)
	l.Debug("clock in requested",
		zap.String("user_id", userID),
		zap.String("location_id", req.LocationID),
	)

	if req.Latitude == nil || req.Longitude == nil || !location.ValidCoordinates(*req.Latitude, *req.Longitude) {
		return TimeEntryResponse{}, locationerrors.ErrInvalidCoordinates
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return TimeEntryResponse{}, apperror.ErrUnauthorized
	}
	if _, err := uuid.Parse(req.LocationID); err != nil {
		return TimeEntryResponse{}, locationerrors.ErrInvalidLocationID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error("clock in begin tx failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.FindActiveByUser(ctx, userID); err == nil {
		l.Warn("clock in refused: already clocked in", zap.String("user_id", userID))
		return TimeEntryResponse{}, timeentryerrors.ErrAlreadyClockedIn
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("clock in active lookup failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}

	loc, err := s.locations.WithTx(tx).FindByID(ctx, req.LocationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TimeEntryResponse{}, locationerrors.ErrLocationNotFound
		}
		return TimeEntryResponse{}, err
	}
	if !loc.IsActive {
		l.Warn("clock in refused: location inactive", zap.String("location_id", req.LocationID))
		return TimeEntryResponse{}, timeentryerrors.ErrLocationInactive
	}

	inside, distance := location.Within(*loc, location.Point{Latitude: *req.Latitude, Longitude: *req.Longitude})
	if !inside {
		l.Warn("clock in refused: outside geofence",
			zap.String("user_id", userID),
			zap.String("location_id", req.LocationID),
			zap.Float64("distance_m", distance),
		)
		return TimeEntryResponse{}, timeentryerrors.OutsideGeofence(int(math.Round(distance)))
	}

	entry := &TimeEntry{
		ID:               uuid.New(),
		UserID:           uid,
		LocationID:       loc.ID,
		ClockInTime:      s.now(),
		ClockInLatitude:  *req.Latitude,
		ClockInLongitude: *req.Longitude,
		ClockInAccuracy:  req.Accuracy,
		Notes:            trimmedOrNil(req.Notes),
	}

	if err := qtx.Create(ctx, entry); err != nil {
		if mapped := mapActiveEntryViolation(err); mapped != nil {
			return TimeEntryResponse{}, mapped
		}
		l.Error("clock in persist failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}

	if err := s.enqueue(ctx, tx, events.TimeEntryClockedIn, entry); err != nil {
		l.Error("clock in outbox persist failed", zap.String("time_entry_id", entry.ID.String()), zap.Error(err))
		return TimeEntryResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		l.Error("clock in commit failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}

	s.record(ClockKindIn)
	l.Info("clock in success",
		zap.String("user_id", userID),
		zap.String("time_entry_id", entry.ID.String()),
	)
	return mapToResponse(*entry), nil
}

func (s *service) ClockOut(ctx context.Context, userID string, req ClockOutRequest) (TimeEntryResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)
	l.Debug("clock out requested", zap.String("user_id", userID))

	if req.Latitude == nil || req.Longitude == nil || !location.ValidCoordinates(*req.Latitude, *req.Longitude) {
		return TimeEntryResponse{}, locationerrors.ErrInvalidCoordinates
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error("clock out begin tx failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	entry, err := qtx.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("clock out refused: not clocked in", zap.String("user_id", userID))
			return TimeEntryResponse{}, timeentryerrors.ErrNotClockedIn
		}
		return TimeEntryResponse{}, err
	}

	out := s.now()
	duration := int(out.Sub(entry.ClockInTime) / time.Minute)
	if duration < 0 {
		duration = 0
	}

	entry.ClockOutTime = &out
	entry.ClockOutLatitude = req.Latitude
	entry.ClockOutLongitude = req.Longitude
	entry.ClockOutAccuracy = req.Accuracy
	entry.DurationMinutes = &duration
	if notes := trimmedOrNil(req.Notes); notes != nil {
		var existing string
		if entry.Notes != nil {
			existing = *entry.Notes
		}
		merged := existing + "\nClock out notes: " + *notes
		entry.Notes = &merged
	}

	if err := qtx.CloseActive(ctx, entry); err != nil {
		if errors.Is(err, ErrEntryAlreadyClosed) {
			l.Warn("clock out refused: entry closed concurrently",
				zap.String("user_id", userID),
				zap.String("time_entry_id", entry.ID.String()),
			)
			return TimeEntryResponse{}, timeentryerrors.ErrNotClockedIn
		}
		l.Error("clock out persist failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}

	if err := s.enqueue(ctx, tx, events.TimeEntryClockedOut, entry); err != nil {
		l.Error("clock out outbox persist failed", zap.String("time_entry_id", entry.ID.String()), zap.Error(err))
		return TimeEntryResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		l.Error("clock out commit failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}

	s.record(ClockKindOut)
	l.Info("clock out success",
		zap.String("user_id", userID),
		zap.String("time_entry_id", entry.ID.String()),
		zap.Int("duration_minutes", duration),
	)
	return mapToResponse(*entry), nil
}

func (s *service) GetMyEntries(ctx context.Context, userID string, skip, limit int) ([]TimeEntryResponse, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := s.repo.FindByUser(ctx, userID, skip, limit)
	if err != nil {
		s.logger.Error("get my entries failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetMyActive(ctx context.Context, userID string) (TimeEntryResponse, error) {
	entry, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TimeEntryResponse{}, timeentryerrors.ErrNoActiveEntry
		}
		return TimeEntryResponse{}, err
	}
	return mapToResponse(*entry), nil
}

func (s *service) GetActiveEmployees(ctx context.Context) ([]TimeEntryResponse, error) {
	rows, err := s.repo.FindAllActive(ctx)
	if err != nil {
		s.logger.Error("get active employees failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) UpdateNotes(ctx context.Context, id string, req UpdateTimeEntryRequest) (TimeEntryResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return TimeEntryResponse{}, timeentryerrors.ErrInvalidTimeEntryID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TimeEntryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	entry, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TimeEntryResponse{}, timeentryerrors.ErrTimeEntryNotFound
		}
		return TimeEntryResponse{}, err
	}

	entry.Notes = req.Notes
	if err := qtx.Update(ctx, entry); err != nil {
		l.Error("update time entry persist failed", zap.String("time_entry_id", id), zap.Error(err))
		return TimeEntryResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return TimeEntryResponse{}, err
	}

	l.Info("update time entry success",
		zap.String("time_entry_id", id),
		zap.String("actor_id", contextutil.GetUserID(ctx)),
	)
	return mapToResponse(*entry), nil
}

func (s *service) ExportTimesheet(ctx context.Context, from, to string) (Timesheet, error) {
	start, err := time.Parse(dateLayout, from)
	if err != nil {
		return Timesheet{}, timeentryerrors.ErrInvalidDateRange
	}
	end, err := time.Parse(dateLayout, to)
	if err != nil || end.Before(start) {
		return Timesheet{}, timeentryerrors.ErrInvalidDateRange
	}

	rows, err := s.repo.FindInRange(ctx, start, end.AddDate(0, 0, 1))
	if err != nil {
		s.logger.Error("export timesheet query failed", zap.Error(err))
		return Timesheet{}, err
	}

	content, err := BuildTimesheet(rows)
	if err != nil {
		s.logger.Error("export timesheet render failed", zap.Error(err))
		return Timesheet{}, apperror.Wrap(err, apperror.CodeInternalError, "Failed to build timesheet", http.StatusInternalServerError)
	}

	s.logger.Info("export timesheet success",
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("entries", len(rows)),
	)
	return Timesheet{
		Filename: fmt.Sprintf("timesheet_%s_%s.xlsx", from, to),
		Content:  content,
	}, nil
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, eventType string, entry *TimeEntry) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	event := events.TimeEntryEvent{
		EventType:       eventType,
		TimeEntryID:     entry.ID.String(),
		UserID:          entry.UserID.String(),
		LocationID:      entry.LocationID.String(),
		ClockInTime:     entry.ClockInTime,
		ClockOutTime:    entry.ClockOutTime,
		DurationMinutes: entry.DurationMinutes,
		OccurredAt:      s.now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "time_entry",
		AggregateID:   entry.ID.String(),
		EventType:     eventType,
		Topic:         events.TimeEntryTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) record(kind string) {
	if s.metrics != nil {
		s.metrics.ClockEvent(kind)
	}
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

func mapToResponse(e TimeEntry) TimeEntryResponse {
	resp := TimeEntryResponse{
		ID:                e.ID.String(),
		UserID:            e.UserID.String(),
		LocationID:        e.LocationID.String(),
		ClockInTime:       e.ClockInTime,
		ClockInLatitude:   e.ClockInLatitude,
		ClockInLongitude:  e.ClockInLongitude,
		ClockInAccuracy:   e.ClockInAccuracy,
		ClockOutTime:      e.ClockOutTime,
		ClockOutLatitude:  e.ClockOutLatitude,
		ClockOutLongitude: e.ClockOutLongitude,
		ClockOutAccuracy:  e.ClockOutAccuracy,
		DurationMinutes:   e.DurationMinutes,
		Notes:             e.Notes,
		IsActive:          e.IsActive(),
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
	if e.User != nil {
		resp.User = &UserSummary{
			ID:       e.User.ID.String(),
			Email:    e.User.Email,
			Username: e.User.Username,
			FullName: e.User.FullName,
		}
	}
	if e.Location != nil {
		loc := location.ToResponse(*e.Location)
		resp.Location = &loc
	}
	return resp
}

func mapToListResponse(rows []TimeEntry) []TimeEntryResponse {
	resp := make([]TimeEntryResponse, len(rows))
	for i, r := range rows {
		resp[i] = mapToResponse(r)
	}
	return resp
}
