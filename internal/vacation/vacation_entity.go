package vacation

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

const (
	TypeVacation    = "vacation"
	TypeSickLeave   = "sick_leave"
	TypePersonalDay = "personal_day"
	TypeOther       = "other"
)

type VacationRequest struct {
	ID              uuid.UUID  `gorm:"column:id;type:varchar(36);primaryKey"`
	UserID          uuid.UUID  `gorm:"column:user_id;type:varchar(36);not null;index:idx_vacation_requests_user_created"`
	StartDate       time.Time  `gorm:"column:start_date;type:date;not null"`
	EndDate         time.Time  `gorm:"column:end_date;type:date;not null"`
	VacationType    string     `gorm:"column:vacation_type;type:varchar(20);not null;default:vacation"`
	Status          string     `gorm:"column:status;type:varchar(20);not null;default:pending;index:idx_vacation_requests_status"`
	Reason          string     `gorm:"column:reason;type:text;not null"`
	Notes           *string    `gorm:"column:notes;type:text"`
	ApprovedBy      *uuid.UUID `gorm:"column:approved_by;type:varchar(36)"`
	ApprovedAt      *time.Time `gorm:"column:approved_at"`
	RejectionReason *string    `gorm:"column:rejection_reason;type:text"`
	CreatedAt       time.Time  `gorm:"column:created_at;index:idx_vacation_requests_user_created"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
	User            *Requester `gorm:"foreignKey:UserID;references:ID"`
}

func (VacationRequest) TableName() string {
	return "vacation_requests"
}

// DurationDays counts both ends of the range.
func (v VacationRequest) DurationDays() int {
	return int(v.EndDate.Sub(v.StartDate).Hours()/24) + 1
}

type Requester struct {
	ID       uuid.UUID `gorm:"column:id;type:varchar(36);primaryKey"`
	Email    string    `gorm:"column:email"`
	Username string    `gorm:"column:username"`
	FullName string    `gorm:"column:full_name"`
}

func (Requester) TableName() string {
	return "users"
}

// CanTransition reports whether a request in from may move to to.
// Only pending requests move, and only into a terminal state.
func CanTransition(from, to string) bool {
	if from != StatusPending {
		return false
	}
	switch to {
	case StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}
