package events

import "time"

const TimeEntryTopic = "timetrack.time_entry.v1"

const (
	TimeEntryClockedIn  = "time_entry.clocked_in"
	TimeEntryClockedOut = "time_entry.clocked_out"
)

type TimeEntryEvent struct {
	EventType       string     `json:"event_type"`
	TimeEntryID     string     `json:"time_entry_id"`
	UserID          string     `json:"user_id"`
	LocationID      string     `json:"location_id"`
	ClockInTime     time.Time  `json:"clock_in_time"`
	ClockOutTime    *time.Time `json:"clock_out_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	OccurredAt      time.Time  `json:"occurred_at"`
}
