package app

import (
	"timetrack/internal/location"
	"timetrack/internal/messaging/kafka"
	"timetrack/internal/timeentry"
	"timetrack/internal/user"
	"timetrack/internal/vacation"

	"gorm.io/gorm"
)

// Migrate brings the schema up to date. It is safe to run repeatedly.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&user.User{},
		&location.Location{},
		&timeentry.TimeEntry{},
		&vacation.VacationRequest{},
		&kafka.OutboxEvent{},
	); err != nil {
		return err
	}
	return ensureActiveEntryIndex(db)
}

// ensureActiveEntryIndex adds the partial unique index that allows one open
// time entry per user. MySQL has no partial indexes; there the clock-in
// lookup inside the transaction is the only guard.
func ensureActiveEntryIndex(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case "postgres", "sqlite":
		return db.Exec(
			"CREATE UNIQUE INDEX IF NOT EXISTS " + timeentry.ActiveEntryIndex +
				" ON time_entries (user_id) WHERE clock_out_time IS NULL",
		).Error
	}
	return nil
}
