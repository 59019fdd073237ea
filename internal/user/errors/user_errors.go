package usererrors

import (
	"net/http"

	"timetrack/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"User not found",
		http.StatusNotFound,
	)

	ErrEmailTaken = apperror.New(
		"EMAIL_TAKEN",
		"Email already registered",
		http.StatusConflict,
	)

	ErrUsernameTaken = apperror.New(
		"USERNAME_TAKEN",
		"Username already taken",
		http.StatusConflict,
	)

	ErrCannotDeleteSelf = apperror.New(
		"CANNOT_DELETE_SELF",
		"You cannot delete your own account",
		http.StatusBadRequest,
	)

	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid user ID",
		http.StatusBadRequest,
	)

	ErrInvalidRole = apperror.New(
		apperror.CodeInvalidInput,
		"Role must be one of employee, manager, admin",
		http.StatusBadRequest,
	)

	ErrUserInactive = apperror.New(
		apperror.CodeForbidden,
		"User is inactive",
		http.StatusForbidden,
	)
)
