package timeentry

import (
	"errors"
	"strings"

	timeentryerrors "timetrack/internal/timeentry/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// mapActiveEntryViolation catches a concurrent second clock-in that slipped
// past the lookup and hit the partial unique index.
func mapActiveEntryViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == ActiveEntryIndex {
			return timeentryerrors.ErrAlreadyClockedIn
		}
		return nil
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, ActiveEntryIndex) || strings.Contains(msg, "unique constraint failed: time_entries.user_id") {
		return timeentryerrors.ErrAlreadyClockedIn
	}
	return nil
}
