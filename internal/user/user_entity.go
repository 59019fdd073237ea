package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

func ValidRole(role string) bool {
	switch role {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID                uuid.UUID      `gorm:"column:id;type:varchar(36);primaryKey"`
	Email             string         `gorm:"column:email;type:varchar(255);not null;uniqueIndex:uq_users_email"`
	Username          string         `gorm:"column:username;type:varchar(100);not null;uniqueIndex:uq_users_username"`
	FullName          string         `gorm:"column:full_name;type:varchar(255);not null"`
	PasswordHash      string         `gorm:"column:password_hash;type:varchar(255);not null"`
	Role              string         `gorm:"column:role;type:varchar(20);not null;default:employee"`
	IsActive          bool           `gorm:"column:is_active;not null;default:true"`
	TOTPEnabled       bool           `gorm:"column:totp_enabled;not null;default:false"`
	TOTPSecret        *string        `gorm:"column:totp_secret;type:varchar(64)"`
	TOTPPendingSecret *string        `gorm:"column:totp_pending_secret;type:varchar(64)"`
	CreatedAt         time.Time      `gorm:"column:created_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (User) TableName() string {
	return "users"
}
