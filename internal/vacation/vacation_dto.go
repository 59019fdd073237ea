package vacation

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

type CreateVacationRequest struct {
	StartDate    string  `json:"start_date" binding:"required"`
	EndDate      string  `json:"end_date" binding:"required"`
	VacationType string  `json:"vacation_type" binding:"omitempty,oneof=vacation sick_leave personal_day other"`
	Reason       string  `json:"reason" binding:"required,max=2000"`
	Notes        *string `json:"notes" binding:"omitempty,max=2000"`
}

type UpdateVacationRequest struct {
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	VacationType *string `json:"vacation_type" binding:"omitempty,oneof=vacation sick_leave personal_day other"`
	Reason       *string `json:"reason" binding:"omitempty,max=2000"`
	Notes        *string `json:"notes" binding:"omitempty,max=2000"`
}

type RejectVacationRequest struct {
	RejectionReason string `json:"rejection_reason"`
}

type RequesterSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type VacationResponse struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	StartDate       string            `json:"start_date"`
	EndDate         string            `json:"end_date"`
	VacationType    string            `json:"vacation_type"`
	Status          string            `json:"status"`
	Reason          string            `json:"reason"`
	Notes           *string           `json:"notes"`
	ApprovedBy      *string           `json:"approved_by"`
	ApprovedAt      *string           `json:"approved_at"`
	RejectionReason *string           `json:"rejection_reason"`
	DurationDays    int               `json:"duration_days"`
	CreatedAt       string            `json:"created_at"`
	UpdatedAt       string            `json:"updated_at"`
	User            *RequesterSummary `json:"user,omitempty"`
}
