package locationerrors

import (
	"net/http"

	"timetrack/internal/shared/apperror"
)

var (
	ErrLocationNotFound = apperror.New(
		apperror.CodeNotFound,
		"Location not found",
		http.StatusNotFound,
	)

	ErrInvalidLocationID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid location ID",
		http.StatusBadRequest,
	)

	ErrInvalidRadius = apperror.New(
		apperror.CodeValidation,
		"Radius must be between 1 and 10000 meters",
		http.StatusBadRequest,
	)

	ErrInvalidCoordinates = apperror.New(
		apperror.CodeValidation,
		"Latitude must be within [-90, 90] and longitude within [-180, 180]",
		http.StatusBadRequest,
	)

	ErrLocationInUse = apperror.New(
		"LOCATION_IN_USE",
		"Location has employees clocked in and cannot be deleted",
		http.StatusConflict,
	)
)
