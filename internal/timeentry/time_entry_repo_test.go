package timeentry

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"timetrack/internal/location"
	timeentryerrors "timetrack/internal/timeentry/errors"
	"timetrack/internal/user"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepoTest(t *testing.T) (*gorm.DB, Repository, *user.User, *location.Location) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "entries.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&user.User{}, &location.Location{}, &TimeEntry{}))
	require.NoError(t, db.Exec(
		"CREATE UNIQUE INDEX " + ActiveEntryIndex + " ON time_entries (user_id) WHERE clock_out_time IS NULL",
	).Error)

	u := &user.User{ID: uuid.New(), Email: "e@x.io", Username: "e", FullName: "Emp", PasswordHash: "h", Role: user.RoleEmployee, IsActive: true}
	require.NoError(t, db.Create(u).Error)
	loc := &location.Location{ID: uuid.New(), Name: "Main Office", Latitude: 40.7128, Longitude: -74.0060, RadiusMeters: 100, IsActive: true}
	require.NoError(t, db.Create(loc).Error)

	return db, NewRepository(db), u, loc
}

func TestRepository_ActiveEntryLifecycle(t *testing.T) {
	ctx := context.Background()
	_, repo, u, loc := setupRepoTest(t)

	_, err := repo.FindActiveByUser(ctx, u.ID.String())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	in := time.Now().UTC().Add(-time.Hour)
	e := &TimeEntry{ID: uuid.New(), UserID: u.ID, LocationID: loc.ID, ClockInTime: in, ClockInLatitude: 40.7128, ClockInLongitude: -74.0060}
	require.NoError(t, repo.Create(ctx, e))

	active, err := repo.FindActiveByUser(ctx, u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, e.ID, active.ID)

	second := &TimeEntry{ID: uuid.New(), UserID: u.ID, LocationID: loc.ID, ClockInTime: time.Now().UTC()}
	err = repo.Create(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, mapActiveEntryViolation(err), timeentryerrors.ErrAlreadyClockedIn)

	out := time.Now().UTC()
	dur := 60
	active.ClockOutTime = &out
	active.DurationMinutes = &dur
	require.NoError(t, repo.CloseActive(ctx, active))

	_, err = repo.FindActiveByUser(ctx, u.ID.String())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// a second close of the same entry must not overwrite the first
	later := out.Add(time.Hour)
	lateDur := 120
	stale := *active
	stale.ClockOutTime = &later
	stale.DurationMinutes = &lateDur
	assert.ErrorIs(t, repo.CloseActive(ctx, &stale), ErrEntryAlreadyClosed)

	closed, err := repo.FindByID(ctx, e.ID.String())
	require.NoError(t, err)
	require.NotNil(t, closed.DurationMinutes)
	assert.Equal(t, 60, *closed.DurationMinutes)

	require.NoError(t, repo.Create(ctx, second))
}

func TestRepository_QueriesPreloadAndOrder(t *testing.T) {
	ctx := context.Background()
	_, repo, u, loc := setupRepoTest(t)

	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		in := base.AddDate(0, 0, i)
		out := in.Add(time.Hour)
		require.NoError(t, repo.Create(ctx, &TimeEntry{
			ID: uuid.New(), UserID: u.ID, LocationID: loc.ID, ClockInTime: in, ClockOutTime: &out,
		}))
	}
	require.NoError(t, repo.Create(ctx, &TimeEntry{
		ID: uuid.New(), UserID: u.ID, LocationID: loc.ID, ClockInTime: base.AddDate(0, 0, 3),
	}))

	mine, err := repo.FindByUser(ctx, u.ID.String(), 0, 2)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.True(t, mine[0].ClockInTime.After(mine[1].ClockInTime))

	active, err := repo.FindAllActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.NotNil(t, active[0].User)
	assert.Equal(t, "Emp", active[0].User.FullName)
	require.NotNil(t, active[0].Location)
	assert.Equal(t, "Main Office", active[0].Location.Name)

	ranged, err := repo.FindInRange(ctx, base, base.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Len(t, ranged, 2)
}
