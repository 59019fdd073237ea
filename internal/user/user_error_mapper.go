package user

import (
	"errors"
	"strings"

	usererrors "timetrack/internal/user/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uqUsersEmail    = "uq_users_email"
	uqUsersUsername = "uq_users_username"
)

// mapUniqueViolation turns a storage level unique violation into the
// matching conflict error, or returns nil when err is something else.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case uqUsersEmail:
			return usererrors.ErrEmailTaken
		case uqUsersUsername:
			return usererrors.ErrUsernameTaken
		}
		return nil
	}

	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "duplicate") && !strings.Contains(msg, "unique constraint") {
		return nil
	}
	switch {
	case strings.Contains(msg, uqUsersEmail), strings.Contains(msg, "users.email"):
		return usererrors.ErrEmailTaken
	case strings.Contains(msg, uqUsersUsername), strings.Contains(msg, "users.username"):
		return usererrors.ErrUsernameTaken
	}
	return nil
}
