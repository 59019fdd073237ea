package user

import (
	"context"
	"database/sql"

	"timetrack/internal/shared/connection"

	"gorm.io/gorm"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
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

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.conn(ctx).Create(u).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.conn(ctx).First(&u, "id = ?", id).Error
	return &u, err
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.conn(ctx).First(&u, "email = ?", email).Error
	return &u, err
}

func (r *repository) FindAll(ctx context.Context) ([]User, error) {
	var users []User
	err := r.conn(ctx).Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *repository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return r.exists(ctx, "email = ?", email, excludeID)
}

func (r *repository) ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error) {
	return r.exists(ctx, "username = ?", username, excludeID)
}

func (r *repository) exists(ctx context.Context, cond string, value, excludeID string) (bool, error) {
	q := r.conn(ctx).Model(&User{}).Where(cond, value)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *repository) Update(ctx context.Context, u *User) error {
	return r.conn(ctx).Save(u).Error
}

// Delete deactivates the account and soft-deletes it.
func (r *repository) Delete(ctx context.Context, id string) error {
	db := r.conn(ctx)
	if err := db.Model(&User{}).Where("id = ?", id).Update("is_active", false).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&User{}).Error
}
