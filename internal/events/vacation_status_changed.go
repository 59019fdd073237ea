package events

import "time"

const VacationStatusTopic = "timetrack.vacation.status.v1"

const VacationStatusChanged = "vacation.status_changed"

type VacationStatusChangedEvent struct {
	EventType         string    `json:"event_type"`
	VacationRequestID string    `json:"vacation_request_id"`
	UserID            string    `json:"user_id"`
	ActorID           string    `json:"actor_id"`
	FromStatus        string    `json:"from_status,omitempty"`
	ToStatus          string    `json:"to_status"`
	StartDate         string    `json:"start_date"`
	EndDate           string    `json:"end_date"`
	RejectionReason   string    `json:"rejection_reason,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}
