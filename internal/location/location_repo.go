package location

import (
	"context"
	"database/sql"

	"timetrack/internal/shared/connection"

	"gorm.io/gorm"
)

//go:generate mockgen -source=location_repo.go -destination=mock/location_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, loc *Location) error
	FindByID(ctx context.Context, id string) (*Location, error)
	FindAll(ctx context.Context, activeOnly bool) ([]Location, error)
	Update(ctx context.Context, loc *Location) error
	Delete(ctx context.Context, id string) error
	CountOpenTimeEntries(ctx context.Context, id string) (int64, error)
}

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

func (r *repository) Create(ctx context.Context, loc *Location) error {
	return r.conn(ctx).Create(loc).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Location, error) {
	var loc Location
	err := r.conn(ctx).First(&loc, "id = ?", id).Error
	return &loc, err
}

func (r *repository) FindAll(ctx context.Context, activeOnly bool) ([]Location, error) {
	var locs []Location
	q := r.conn(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&locs).Error
	return locs, err
}

func (r *repository) Update(ctx context.Context, loc *Location) error {
	return r.conn(ctx).Save(loc).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.conn(ctx).Where("id = ?", id).Delete(&Location{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountOpenTimeEntries counts entries at this location that are still clocked in.
func (r *repository) CountOpenTimeEntries(ctx context.Context, id string) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Table("time_entries").
		Where("location_id = ? AND clock_out_time IS NULL", id).
		Count(&count).Error
	return count, err
}
