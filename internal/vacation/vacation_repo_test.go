package vacation

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"timetrack/internal/user"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) (Repository, *user.User) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "vacation.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&user.User{}, &VacationRequest{}))

	u := &user.User{ID: uuid.New(), Email: "emp@x.io", Username: "emp", FullName: "Employee User", PasswordHash: "h", Role: user.RoleEmployee, IsActive: true}
	require.NoError(t, db.Create(u).Error)
	return NewRepository(db), u
}

func TestRepository_ListsAndPreload(t *testing.T) {
	ctx := context.Background()
	repo, u := setupRepo(t)

	start := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	statuses := []string{StatusPending, StatusApproved, StatusPending}
	ids := make([]uuid.UUID, len(statuses))
	for i, status := range statuses {
		ids[i] = uuid.New()
		require.NoError(t, repo.Create(ctx, &VacationRequest{
			ID:           ids[i],
			UserID:       u.ID,
			StartDate:    start.AddDate(0, 0, i*7),
			EndDate:      start.AddDate(0, 0, i*7+2),
			VacationType: TypeVacation,
			Status:       status,
			Reason:       "trip",
			CreatedAt:    time.Now().UTC().Add(time.Duration(i) * time.Minute),
		}))
	}

	mine, err := repo.FindByUser(ctx, u.ID.String(), 0, 10)
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, ids[2], mine[0].ID)
	assert.Nil(t, mine[0].User)

	pending, err := repo.FindPending(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, ids[2], pending[0].ID)
	require.NotNil(t, pending[0].User)
	assert.Equal(t, "Employee User", pending[0].User.FullName)
	assert.Equal(t, 3, pending[0].DurationDays())
}

func TestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo, u := setupRepo(t)

	v := &VacationRequest{
		ID: uuid.New(), UserID: u.ID,
		StartDate: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		VacationType: TypeOther, Status: StatusPending, Reason: "x",
	}
	require.NoError(t, repo.Create(ctx, v))

	got, err := repo.FindByID(ctx, v.ID.String())
	require.NoError(t, err)
	approver := uuid.New()
	now := time.Now().UTC()
	got.Status = StatusApproved
	got.ApprovedBy = &approver
	got.ApprovedAt = &now
	require.NoError(t, repo.Update(ctx, got, StatusPending))

	again, err := repo.FindByID(ctx, v.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, again.Status)
	require.NotNil(t, again.ApprovedBy)
	assert.Equal(t, approver, *again.ApprovedBy)

	// a second reviewer working from the stale pending copy loses
	stale := *got
	stale.Status = StatusRejected
	stale.ApprovedBy = nil
	stale.ApprovedAt = nil
	reason := "too late"
	stale.RejectionReason = &reason
	assert.ErrorIs(t, repo.Update(ctx, &stale, StatusPending), ErrStatusChanged)

	again, err = repo.FindByID(ctx, v.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, again.Status)
	assert.Nil(t, again.RejectionReason)

	_, err = repo.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
