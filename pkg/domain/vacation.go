package domain

import "time"

type VacationType string

const (
	VacationTypeVacation    VacationType = "vacation"
	VacationTypeSickLeave   VacationType = "sick_leave"
	VacationTypePersonalDay VacationType = "personal_day"
	VacationTypeOther       VacationType = "other"
)

func (t VacationType) Valid() bool {
	switch t {
	case VacationTypeVacation, VacationTypeSickLeave, VacationTypePersonalDay, VacationTypeOther:
		return true
	}
	return false
}

type VacationStatus string

const (
	VacationPending   VacationStatus = "pending"
	VacationApproved  VacationStatus = "approved"
	VacationRejected  VacationStatus = "rejected"
	VacationCancelled VacationStatus = "cancelled"
)

func (s VacationStatus) IsTerminal() bool {
	return s == VacationApproved || s == VacationRejected || s == VacationCancelled
}

// CanTransition allows only pending -> approved | rejected | cancelled.
func CanTransition(from, to VacationStatus) bool {
	return from == VacationPending && to.IsTerminal()
}

// DateLayout is the wire format of start_date and end_date.
const DateLayout = "2006-01-02"

type VacationRequest struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	StartDate       string         `json:"start_date"`
	EndDate         string         `json:"end_date"`
	VacationType    VacationType   `json:"vacation_type"`
	Status          VacationStatus `json:"status"`
	Reason          string         `json:"reason"`
	Notes           *string        `json:"notes"`
	ApprovedBy      *string        `json:"approved_by"`
	ApprovedAt      *time.Time     `json:"approved_at"`
	RejectionReason *string        `json:"rejection_reason"`
	DurationDays    int            `json:"duration_days"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	User            *UserSummary   `json:"user,omitempty"`
}

// StatusBadge returns the colour classes a renderer uses for a status pill.
func StatusBadge(s VacationStatus) string {
	switch s {
	case VacationApproved:
		return "bg-green-100 text-green-800"
	case VacationRejected:
		return "bg-red-100 text-red-800"
	case VacationPending:
		return "bg-yellow-100 text-yellow-800"
	default:
		return "bg-gray-100 text-gray-800"
	}
}
