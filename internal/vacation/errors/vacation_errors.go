package vacationerrors

import (
	"net/http"

	"timetrack/internal/shared/apperror"
)

var (
	ErrVacationNotFound = apperror.New(
		apperror.CodeNotFound,
		"Vacation request not found",
		http.StatusNotFound,
	)
	ErrInvalidVacationID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid vacation request ID",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"Start date must be before or equal to end date",
		http.StatusBadRequest,
	)
	ErrStartDateInPast = apperror.New(
		apperror.CodeInvalidInput,
		"Start date cannot be in the past",
		http.StatusBadRequest,
	)
	ErrReasonRequired = apperror.New(
		apperror.CodeValidation,
		"Reason is required",
		http.StatusBadRequest,
	)
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"Not enough permissions",
		http.StatusForbidden,
	)
	ErrInvalidStatusTransition = apperror.New(
		"INVALID_STATUS_TRANSITION",
		"Request is not pending",
		http.StatusConflict,
	)
	ErrRejectionReasonRequired = apperror.New(
		"REJECTION_REASON_REQUIRED",
		"Rejection reason is required",
		http.StatusBadRequest,
	)
)
