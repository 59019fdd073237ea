package timeentry

import (
	"time"

	"timetrack/internal/location"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

type ClockInRequest struct {
	LocationID string   `json:"location_id" binding:"required,uuid"`
	Latitude   *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	Accuracy   *float64 `json:"accuracy" binding:"omitempty,gte=0"`
	Notes      *string  `json:"notes" binding:"omitempty,max=1000"`
}

type ClockOutRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	Accuracy  *float64 `json:"accuracy" binding:"omitempty,gte=0"`
	Notes     *string  `json:"notes" binding:"omitempty,max=1000"`
}

type UpdateTimeEntryRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=2000"`
}

type UserSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type TimeEntryResponse struct {
	ID                string                     `json:"id"`
	UserID            string                     `json:"user_id"`
	LocationID        string                     `json:"location_id"`
	ClockInTime       time.Time                  `json:"clock_in_time"`
	ClockInLatitude   float64                    `json:"clock_in_latitude"`
	ClockInLongitude  float64                    `json:"clock_in_longitude"`
	ClockInAccuracy   *float64                   `json:"clock_in_accuracy"`
	ClockOutTime      *time.Time                 `json:"clock_out_time"`
	ClockOutLatitude  *float64                   `json:"clock_out_latitude"`
	ClockOutLongitude *float64                   `json:"clock_out_longitude"`
	ClockOutAccuracy  *float64                   `json:"clock_out_accuracy"`
	DurationMinutes   *int                       `json:"duration_minutes"`
	Notes             *string                    `json:"notes"`
	IsActive          bool                       `json:"is_active"`
	CreatedAt         time.Time                  `json:"created_at"`
	UpdatedAt         time.Time                  `json:"updated_at"`
	User              *UserSummary               `json:"user,omitempty"`
	Location          *location.LocationResponse `json:"location,omitempty"`
}

// Timesheet is a rendered XLSX export.
type Timesheet struct {
	Filename string
	Content  []byte
}
