package auth

import (
	"context"

	"timetrack/internal/user"

	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_repo.go -destination=mock/auth_repo_mock.go -package=mock

// Repository is the narrow view of the users table the login and 2FA flows need.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id string) (*user.User, error)
	SetPendingTOTPSecret(ctx context.Context, id, secret string) error
	EnableTOTP(ctx context.Context, id, secret string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	return &u, err
}

func (r *repository) GetByID(ctx context.Context, id string) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	return &u, err
}

func (r *repository) SetPendingTOTPSecret(ctx context.Context, id, secret string) error {
	return r.db.WithContext(ctx).
		Model(&user.User{}).
		Where("id = ?", id).
		Update("totp_pending_secret", secret).Error
}

// EnableTOTP promotes the pending secret to the active one.
func (r *repository) EnableTOTP(ctx context.Context, id, secret string) error {
	return r.db.WithContext(ctx).
		Model(&user.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"totp_secret":         secret,
			"totp_pending_secret": nil,
			"totp_enabled":        true,
		}).Error
}
