package vacation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"timetrack/internal/shared/connection"

	"gorm.io/gorm"
)

//go:generate mockgen -source=vacation_repo.go -destination=mock/vacation_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, v *VacationRequest) error
	FindByID(ctx context.Context, id string) (*VacationRequest, error)
	FindByUser(ctx context.Context, userID string, skip, limit int) ([]VacationRequest, error)
	FindPending(ctx context.Context, skip, limit int) ([]VacationRequest, error)
	Update(ctx context.Context, v *VacationRequest, from string) error
}

// ErrStatusChanged means the stored status moved away from the one the
// caller read before the write reached it.
var ErrStatusChanged = errors.New("vacation request status changed")

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

func (r *repository) Create(ctx context.Context, v *VacationRequest) error {
	return r.conn(ctx).Omit("User").Create(v).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*VacationRequest, error) {
	var v VacationRequest
	if err := r.conn(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repository) FindByUser(ctx context.Context, userID string, skip, limit int) ([]VacationRequest, error) {
	var rows []VacationRequest
	err := r.conn(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindPending(ctx context.Context, skip, limit int) ([]VacationRequest, error) {
	var rows []VacationRequest
	err := r.conn(ctx).
		Preload("User").
		Where("status = ?", StatusPending).
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Update writes v only while the stored row is still in status from.
func (r *repository) Update(ctx context.Context, v *VacationRequest, from string) error {
	v.UpdatedAt = time.Now()
	res := r.conn(ctx).
		Model(&VacationRequest{}).
		Where("id = ? AND status = ?", v.ID, from).
		Updates(map[string]any{
			"start_date":       v.StartDate,
			"end_date":         v.EndDate,
			"vacation_type":    v.VacationType,
			"status":           v.Status,
			"reason":           v.Reason,
			"notes":            v.Notes,
			"approved_by":      v.ApprovedBy,
			"approved_at":      v.ApprovedAt,
			"rejection_reason": v.RejectionReason,
			"updated_at":       v.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}
