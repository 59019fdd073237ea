// Package domain holds the shapes the client shares with the TimeTrack API.
package domain

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// In reports whether r is one of allowed.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// ManagerRoles may open the manager dashboard and review requests.
var ManagerRoles = []Role{RoleManager, RoleAdmin}

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	FullName    string    `json:"full_name"`
	Role        Role      `json:"role"`
	IsActive    bool      `json:"is_active"`
	TOTPEnabled bool      `json:"totp_enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserSummary is the embedded requester/owner on entries and requests.
type UserSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type Location struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusMeters int       `json:"radius_meters"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type TimeEntry struct {
	ID                string       `json:"id"`
	UserID            string       `json:"user_id"`
	LocationID        string       `json:"location_id"`
	ClockInTime       time.Time    `json:"clock_in_time"`
	ClockInLatitude   float64      `json:"clock_in_latitude"`
	ClockInLongitude  float64      `json:"clock_in_longitude"`
	ClockInAccuracy   *float64     `json:"clock_in_accuracy"`
	ClockOutTime      *time.Time   `json:"clock_out_time"`
	ClockOutLatitude  *float64     `json:"clock_out_latitude"`
	ClockOutLongitude *float64     `json:"clock_out_longitude"`
	ClockOutAccuracy  *float64     `json:"clock_out_accuracy"`
	DurationMinutes   *int         `json:"duration_minutes"`
	Notes             *string      `json:"notes"`
	IsActive          bool         `json:"is_active"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
	User              *UserSummary `json:"user,omitempty"`
	Location          *Location    `json:"location,omitempty"`
}

// Elapsed is the shift length: up to clock-out when closed, up to now
// while active.
func (e TimeEntry) Elapsed(now time.Time) time.Duration {
	end := now
	if e.ClockOutTime != nil {
		end = *e.ClockOutTime
	}
	d := end.Sub(e.ClockInTime)
	if d < 0 {
		return 0
	}
	return d
}

// FormatDuration renders whole hours and remainder minutes, e.g. "2h 5m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// FormatMinutes renders a stored duration_minutes value.
func FormatMinutes(m int) string {
	return FormatDuration(time.Duration(m) * time.Minute)
}

// Notification is a per-user message projected from vacation status events.
type Notification struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Kind              string    `json:"kind"`
	Title             string    `json:"title"`
	Message           string    `json:"message"`
	VacationRequestID string    `json:"vacation_request_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
