package timeentry

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"timetrack/internal/shared/connection"

	"gorm.io/gorm"
)

//go:generate mockgen -source=time_entry_repo.go -destination=mock/time_entry_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *TimeEntry) error
	FindByID(ctx context.Context, id string) (*TimeEntry, error)
	FindActiveByUser(ctx context.Context, userID string) (*TimeEntry, error)
	FindByUser(ctx context.Context, userID string, skip, limit int) ([]TimeEntry, error)
	FindAllActive(ctx context.Context) ([]TimeEntry, error)
	FindInRange(ctx context.Context, from, to time.Time) ([]TimeEntry, error)
	Update(ctx context.Context, e *TimeEntry) error
	CloseActive(ctx context.Context, e *TimeEntry) error
}

// ErrEntryAlreadyClosed means another clock-out closed the entry first.
var ErrEntryAlreadyClosed = errors.New("time entry already closed")

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return connection.Scoped(ctx, r.db, r.tx)
}

func (r *repository) Create(ctx context.Context, e *TimeEntry) error {
	return r.conn(ctx).Omit("User", "Location").Create(e).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*TimeEntry, error) {
	var e TimeEntry
	err := r.conn(ctx).First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) FindActiveByUser(ctx context.Context, userID string) (*TimeEntry, error) {
	var e TimeEntry
	err := r.conn(ctx).
		Where("user_id = ? AND clock_out_time IS NULL", userID).
		First(&e).Error
	return &e, err
}

func (r *repository) FindByUser(ctx context.Context, userID string, skip, limit int) ([]TimeEntry, error) {
	var rows []TimeEntry
	err := r.conn(ctx).
		Where("user_id = ?", userID).
		Order("clock_in_time DESC").
		Offset(skip).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllActive(ctx context.Context) ([]TimeEntry, error) {
	var rows []TimeEntry
	err := r.conn(ctx).
		Preload("User").
		Preload("Location").
		Where("clock_out_time IS NULL").
		Order("clock_in_time ASC").
		Find(&rows).Error
	return rows, err
}

// FindInRange returns entries whose clock-in falls in [from, to).
func (r *repository) FindInRange(ctx context.Context, from, to time.Time) ([]TimeEntry, error) {
	var rows []TimeEntry
	err := r.conn(ctx).
		Preload("User").
		Preload("Location").
		Where("clock_in_time >= ? AND clock_in_time < ?", from, to).
		Order("user_id ASC, clock_in_time ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, e *TimeEntry) error {
	return r.conn(ctx).Omit("User", "Location").Save(e).Error
}

// CloseActive writes the clock-out columns of e only while the stored entry
// is still open.
func (r *repository) CloseActive(ctx context.Context, e *TimeEntry) error {
	e.UpdatedAt = time.Now()
	res := r.conn(ctx).
		Model(&TimeEntry{}).
		Where("id = ? AND clock_out_time IS NULL", e.ID).
		Updates(map[string]any{
			"clock_out_time":      e.ClockOutTime,
			"clock_out_latitude":  e.ClockOutLatitude,
			"clock_out_longitude": e.ClockOutLongitude,
			"clock_out_accuracy":  e.ClockOutAccuracy,
			"duration_minutes":    e.DurationMinutes,
			"notes":               e.Notes,
			"updated_at":          e.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEntryAlreadyClosed
	}
	return nil
}
