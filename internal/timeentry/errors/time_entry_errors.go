package timeentryerrors

import (
	"fmt"
	"net/http"

	"timetrack/internal/shared/apperror"
)

var (
	ErrAlreadyClockedIn = apperror.New(
		"ALREADY_CLOCKED_IN",
		"You are already clocked in",
		http.StatusConflict,
	)

	ErrNotClockedIn = apperror.New(
		"NOT_CLOCKED_IN",
		"You are not currently clocked in",
		http.StatusConflict,
	)

	ErrNoActiveEntry = apperror.New(
		"NO_ACTIVE_ENTRY",
		"No active time entry found",
		http.StatusNotFound,
	)

	ErrTimeEntryNotFound = apperror.New(
		apperror.CodeNotFound,
		"Time entry not found",
		http.StatusNotFound,
	)

	ErrInvalidTimeEntryID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid time entry ID",
		http.StatusBadRequest,
	)

	ErrLocationInactive = apperror.New(
		"LOCATION_INACTIVE",
		"Location is not active",
		http.StatusBadRequest,
	)

	ErrOutsideGeofence = apperror.New(
		"OUTSIDE_GEOFENCE",
		"You are outside the work area",
		http.StatusBadRequest,
	)

	ErrInvalidDateRange = apperror.New(
		apperror.CodeValidation,
		"Dates must be YYYY-MM-DD and from must not be after to",
		http.StatusBadRequest,
	)
)

// OutsideGeofence reports how far, in whole meters, the caller is from the fence center.
func OutsideGeofence(distanceMeters int) error {
	return ErrOutsideGeofence.WithMessage(fmt.Sprintf("You are %dm away from the work area", distanceMeters))
}
