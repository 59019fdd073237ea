package autherrors

import (
	"net/http"

	"timetrack/internal/shared/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(
		"INVALID_CREDENTIALS",
		"Incorrect email or password",
		http.StatusUnauthorized,
	)

	ErrOTPRequired = apperror.New(
		"OTP_REQUIRED",
		"A one-time code is required",
		http.StatusUnauthorized,
	)

	ErrInvalidOTP = apperror.New(
		"INVALID_OTP",
		"The one-time code is invalid",
		http.StatusUnauthorized,
	)

	ErrTokenMissing = apperror.New(
		apperror.CodeUnauthorized,
		"Not authenticated",
		http.StatusUnauthorized,
	)

	ErrInvalidToken = apperror.New(
		"INVALID_TOKEN",
		"Could not validate credentials",
		http.StatusUnauthorized,
	)

	ErrTokenExpired = apperror.New(
		"TOKEN_EXPIRED",
		"Session expired, please log in again",
		http.StatusUnauthorized,
	)

	ErrTOTPNotInitiated = apperror.New(
		"TOTP_NOT_INITIATED",
		"Start two-factor setup before enabling it",
		http.StatusBadRequest,
	)

	ErrTOTPAlreadyEnabled = apperror.New(
		"TOTP_ALREADY_ENABLED",
		"Two-factor authentication is already enabled",
		http.StatusConflict,
	)
)
