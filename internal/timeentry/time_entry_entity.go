package timeentry

import (
	"time"

	"timetrack/internal/location"

	"github.com/google/uuid"
)

const (
	ClockKindIn  = "clock_in"
	ClockKindOut = "clock_out"
)

// ActiveEntryIndex enforces at most one open entry per user.
const ActiveEntryIndex = "uq_time_entries_active_user"

type TimeEntry struct {
	ID                uuid.UUID          `gorm:"column:id;type:varchar(36);primaryKey"`
	UserID            uuid.UUID          `gorm:"column:user_id;type:varchar(36);not null;index"`
	LocationID        uuid.UUID          `gorm:"column:location_id;type:varchar(36);not null;index"`
	ClockInTime       time.Time          `gorm:"column:clock_in_time;not null;index"`
	ClockInLatitude   float64            `gorm:"column:clock_in_latitude;not null"`
	ClockInLongitude  float64            `gorm:"column:clock_in_longitude;not null"`
	ClockInAccuracy   *float64           `gorm:"column:clock_in_accuracy"`
	ClockOutTime      *time.Time         `gorm:"column:clock_out_time"`
	ClockOutLatitude  *float64           `gorm:"column:clock_out_latitude"`
	ClockOutLongitude *float64           `gorm:"column:clock_out_longitude"`
	ClockOutAccuracy  *float64           `gorm:"column:clock_out_accuracy"`
	DurationMinutes   *int               `gorm:"column:duration_minutes"`
	Notes             *string            `gorm:"column:notes;type:text"`
	CreatedAt         time.Time          `gorm:"column:created_at"`
	UpdatedAt         time.Time          `gorm:"column:updated_at"`
	User              *UserRef           `gorm:"foreignKey:UserID;references:ID"`
	Location          *location.Location `gorm:"foreignKey:LocationID;references:ID"`
}

func (TimeEntry) TableName() string {
	return "time_entries"
}

func (e TimeEntry) IsActive() bool {
	return e.ClockOutTime == nil
}

type UserRef struct {
	ID       uuid.UUID `gorm:"column:id;type:varchar(36);primaryKey"`
	Email    string    `gorm:"column:email"`
	Username string    `gorm:"column:username"`
	FullName string    `gorm:"column:full_name"`
}

func (UserRef) TableName() string {
	return "users"
}
