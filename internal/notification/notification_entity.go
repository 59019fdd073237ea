package notification

import "time"

const (
	KindVacationStatus = "vacation_status"

	maxPerUser = 50
)

type Notification struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Kind              string    `json:"kind"`
	Title             string    `json:"title"`
	Message           string    `json:"message"`
	VacationRequestID string    `json:"vacation_request_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
