package timeentry_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"timetrack/internal/events"
	"timetrack/internal/location"
	locationerrors "timetrack/internal/location/errors"
	locationMock "timetrack/internal/location/mock"
	"timetrack/internal/messaging/kafka"
	kafkaMock "timetrack/internal/messaging/kafka/mock"
	"timetrack/internal/shared/apperror"
	"timetrack/internal/timeentry"
	timeentryerrors "timetrack/internal/timeentry/errors"
	timeentryMock "timetrack/internal/timeentry/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeRecorder struct {
	kinds []string
}

func (f *fakeRecorder) ClockEvent(kind string) {
	f.kinds = append(f.kinds, kind)
}

type serviceDeps struct {
	sqlMock   sqlmock.Sqlmock
	repo      *timeentryMock.MockRepository
	locations *locationMock.MockRepository
	outbox    *kafkaMock.MockOutboxRepository
	metrics   *fakeRecorder
	service   timeentry.Service
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := timeentryMock.NewMockRepository(ctrl)
	locations := locationMock.NewMockRepository(ctrl)
	outbox := kafkaMock.NewMockOutboxRepository(ctrl)
	repo.EXPECT().WithTx(gomock.Any()).Return(repo).AnyTimes()
	locations.EXPECT().WithTx(gomock.Any()).Return(locations).AnyTimes()
	outbox.EXPECT().WithTx(gomock.Any()).Return(outbox).AnyTimes()

	rec := &fakeRecorder{}
	return &serviceDeps{
		sqlMock:   sqlMock,
		repo:      repo,
		locations: locations,
		outbox:    outbox,
		metrics:   rec,
		service:   timeentry.NewService(db, repo, locations, outbox, rec, zap.NewNop()),
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func ptr[T any](v T) *T { return &v }

func mainOffice() *location.Location {
	return &location.Location{
		ID:           uuid.New(),
		Name:         "Main Office",
		Latitude:     40.7128,
		Longitude:    -74.0060,
		RadiusMeters: 100,
		IsActive:     true,
	}
}

func TestTimeEntryService_ClockIn(t *testing.T) {
	ctx := context.Background()
	userID := uuid.NewString()

	t.Run("success writes entry and outbox event", func(t *testing.T) {
		deps := setupServiceTest(t)
		loc := mainOffice()
		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().FindActiveByUser(gomock.Any(), userID).Return(nil, gorm.ErrRecordNotFound)
		deps.locations.EXPECT().FindByID(gomock.Any(), loc.ID.String()).Return(loc, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, ev kafka.OutboxEvent) error {
				assert.Equal(t, events.TimeEntryClockedIn, ev.EventType)
				assert.Equal(t, events.TimeEntryTopic, ev.Topic)
				assert.Equal(t, kafka.OutboxStatusPending, ev.Status)

				var payload events.TimeEntryEvent
				require.NoError(t, json.Unmarshal(ev.Payload, &payload))
				assert.Equal(t, userID, payload.UserID)
				assert.Nil(t, payload.ClockOutTime)
				return nil
			},
		)

		res, err := deps.service.ClockIn(ctx, userID, timeentry.ClockInRequest{
			LocationID: loc.ID.String(),
			Latitude:   ptr(40.7129),
			Longitude:  ptr(-74.0061),
			Notes:      ptr("  morning  "),
		})

		require.NoError(t, err)
		assert.True(t, res.IsActive)
		assert.Equal(t, "morning", *res.Notes)
		assert.Equal(t, []string{timeentry.ClockKindIn}, deps.metrics.kinds)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("already clocked in", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().FindActiveByUser(gomock.Any(), userID).Return(&timeentry.TimeEntry{}, nil)

		_, err := deps.service.ClockIn(ctx, userID, timeentry.ClockInRequest{
			LocationID: uuid.NewString(), Latitude: ptr(0.0), Longitude: ptr(0.0),
		})

		assert.ErrorIs(t, err, timeentryerrors.ErrAlreadyClockedIn)
		assert.Empty(t, deps.metrics.kinds)
	})

	t.Run("location not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().FindActiveByUser(gomock.Any(), userID).Return(nil, gorm.ErrRecordNotFound)
		deps.locations.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.ClockIn(ctx, userID, timeentry.ClockInRequest{
			LocationID: uuid.NewString(), Latitude: ptr(0.0), Longitude: ptr(0.0),
		})

		assert.ErrorIs(t, err, locationerrors.ErrLocationNotFound)
	})

	t.Run("location inactive", func(t *testing.T) {
		deps := setupServiceTest(t)
		loc := mainOffice()
		loc.IsActive = false
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().FindActiveByUser(gomock.Any(), userID).Return(nil, gorm.ErrRecordNotFound)
		deps.locations.EXPECT().FindByID(gomock.Any(), loc.ID.String()).Return(loc, nil)

		_, err := deps.service.ClockIn(ctx, userID, timeentry.ClockInRequest{
			LocationID: loc.ID.String(), Latitude: ptr(loc.Latitude), Longitude: ptr(loc.Longitude),
		})

		assert.ErrorIs(t, err, timeentryerrors.ErrLocationInactive)
	})

	t.Run("outside geofence reports distance", func(t *testing.T) {
		deps := setupServiceTest(t)
		loc := mainOffice()
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().FindActiveByUser(gomock.Any(), userID).Return(nil, gorm.ErrRecordNotFound)
		deps.locations.EXPECT().FindByID(gomock.Any(), loc.ID.String()).Return(loc, nil)

		_, err := deps.service.ClockIn(ctx, userID, timeentry.ClockInRequest{
			LocationID: loc.ID.String(), Latitude: ptr(40.7138), Longitude: ptr(-74.0060),
		})

		require.ErrorIs(t, err, timeentryerrors.ErrOutsideGeofence)
		httpErr := apperror.ToHTTP(err)
		assert.Equal(t, "OUTSIDE_GEOFENCE", httpErr.Code)
		assert.Equal(t, "You are 111m away from the work area", httpErr.Message)
	})

	t.Run("coordinates out of range", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.ClockIn(ctx, userID, timeentry.ClockInRequest{
			LocationID: uuid.NewString(), Latitude: ptr(95.0), Longitude: ptr(0.0),
		})

		assert.ErrorIs(t, err, locationerrors.ErrInvalidCoordinates)
	})
}

func TestTimeEntryService_ClockOut(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("success computes duration and appends notes", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		active := &timeentry.TimeEntry{
			ID:          uuid.New(),
			UserID:      userID,
			LocationID:  uuid.New(),
			ClockInTime: time.Now().UTC().Add(-90*time.Minute - 30*time.Second),
			Notes:       ptr("start"),
		}
		deps.repo.EXPECT().FindActiveByUser(gomock.Any(), userID.String()).Return(active, nil)
		deps.repo.EXPECT().CloseActive(gomock.Any(), active).Return(nil)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, ev kafka.OutboxEvent) error {
				assert.Equal(t, events.TimeEntryClockedOut, ev.EventType)
				return nil
			},
		)

		res, err := deps.service.ClockOut(ctx, userID.String(), timeentry.ClockOutRequest{
			Latitude: ptr(40.7128), Longitude: ptr(-74.0060), Notes: ptr("done"),
		})

		require.NoError(t, err)
		assert.False(t, res.IsActive)
		require.NotNil(t, res.DurationMinutes)
		assert.Equal(t, 90, *res.DurationMinutes)
		assert.Equal(t, "start\nClock out notes: done", *res.Notes)
		assert.Equal(t, []string{timeentry.ClockKindOut}, deps.metrics.kinds)
	})

	t.Run("notes appended when none existed", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		active := &timeentry.TimeEntry{ID: uuid.New(), UserID: userID, ClockInTime: time.Now().UTC()}
		deps.repo.EXPECT().FindActiveByUser(gomock.Any(), userID.String()).Return(active, nil)
		deps.repo.EXPECT().CloseActive(gomock.Any(), gomock.Any()).Return(nil)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		res, err := deps.service.ClockOut(ctx, userID.String(), timeentry.ClockOutRequest{
			Latitude: ptr(0.0), Longitude: ptr(0.0), Notes: ptr("bye"),
		})

		require.NoError(t, err)
		assert.Equal(t, "\nClock out notes: bye", *res.Notes)
		assert.Equal(t, 0, *res.DurationMinutes)
	})

	t.Run("entry closed by a concurrent clock out", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		active := &timeentry.TimeEntry{ID: uuid.New(), UserID: userID, ClockInTime: time.Now().UTC().Add(-time.Hour)}
		deps.repo.EXPECT().FindActiveByUser(gomock.Any(), userID.String()).Return(active, nil)
		deps.repo.EXPECT().CloseActive(gomock.Any(), active).Return(timeentry.ErrEntryAlreadyClosed)

		_, err := deps.service.ClockOut(ctx, userID.String(), timeentry.ClockOutRequest{
			Latitude: ptr(0.0), Longitude: ptr(0.0),
		})

		assert.ErrorIs(t, err, timeentryerrors.ErrNotClockedIn)
		assert.Empty(t, deps.metrics.kinds)
	})

	t.Run("not clocked in", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().FindActiveByUser(gomock.Any(), userID.String()).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.ClockOut(ctx, userID.String(), timeentry.ClockOutRequest{
			Latitude: ptr(0.0), Longitude: ptr(0.0),
		})

		assert.ErrorIs(t, err, timeentryerrors.ErrNotClockedIn)
	})
}

func TestTimeEntryService_Queries(t *testing.T) {
	ctx := context.Background()
	userID := uuid.NewString()

	t.Run("my entries clamps limit", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByUser(gomock.Any(), userID, 0, 500).Return([]timeentry.TimeEntry{}, nil)

		res, err := deps.service.GetMyEntries(ctx, userID, -5, 10000)

		require.NoError(t, err)
		assert.Empty(t, res)
	})

	t.Run("my entries default limit", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByUser(gomock.Any(), userID, 20, 100).Return(nil, nil)

		_, err := deps.service.GetMyEntries(ctx, userID, 20, 0)

		require.NoError(t, err)
	})

	t.Run("no active entry", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindActiveByUser(gomock.Any(), userID).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetMyActive(ctx, userID)

		assert.ErrorIs(t, err, timeentryerrors.ErrNoActiveEntry)
	})

	t.Run("active employees embed user and location", func(t *testing.T) {
		deps := setupServiceTest(t)
		uid := uuid.New()
		deps.repo.EXPECT().FindAllActive(gomock.Any()).Return([]timeentry.TimeEntry{{
			ID:       uuid.New(),
			UserID:   uid,
			User:     &timeentry.UserRef{ID: uid, FullName: "Jane Doe"},
			Location: mainOffice(),
		}}, nil)

		res, err := deps.service.GetActiveEmployees(ctx)

		require.NoError(t, err)
		require.Len(t, res, 1)
		require.NotNil(t, res[0].User)
		assert.Equal(t, "Jane Doe", res[0].User.FullName)
		require.NotNil(t, res[0].Location)
		assert.Equal(t, "Main Office", res[0].Location.Name)
	})
}

func TestTimeEntryService_UpdateNotes(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().FindByID(gomock.Any(), id.String()).Return(&timeentry.TimeEntry{ID: id}, nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		res, err := deps.service.UpdateNotes(ctx, id.String(), timeentry.UpdateTimeEntryRequest{Notes: ptr("corrected")})

		require.NoError(t, err)
		assert.Equal(t, "corrected", *res.Notes)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().FindByID(gomock.Any(), id.String()).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.UpdateNotes(ctx, id.String(), timeentry.UpdateTimeEntryRequest{})

		assert.ErrorIs(t, err, timeentryerrors.ErrTimeEntryNotFound)
	})
}

func TestTimeEntryService_ExportTimesheet(t *testing.T) {
	ctx := context.Background()

	t.Run("range is inclusive of the end day", func(t *testing.T) {
		deps := setupServiceTest(t)
		from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
		deps.repo.EXPECT().FindInRange(gomock.Any(), from, to).Return(nil, nil)

		sheet, err := deps.service.ExportTimesheet(ctx, "2024-03-01", "2024-03-07")

		require.NoError(t, err)
		assert.Equal(t, "timesheet_2024-03-01_2024-03-07.xlsx", sheet.Filename)
		assert.NotEmpty(t, sheet.Content)
	})

	t.Run("inverted range", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.ExportTimesheet(ctx, "2024-03-07", "2024-03-01")

		assert.ErrorIs(t, err, timeentryerrors.ErrInvalidDateRange)
	})

	t.Run("bad date", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.ExportTimesheet(ctx, "03/01/2024", "2024-03-07")

		assert.ErrorIs(t, err, timeentryerrors.ErrInvalidDateRange)
	})
}
