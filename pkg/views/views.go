// Package views holds the view models a renderer binds to: Dashboard,
// TimeTracking, Vacation and ManagerDashboard. They never render; they
// validate input, call the API, keep the query cache honest and report
// outcomes through a Notifier.
package views

import (
	"context"
	"errors"

	"timetrack/pkg/client"
	"timetrack/pkg/domain"
	"timetrack/pkg/querycache"
)

// Result sets shared between views.
const (
	KeyLocations        querycache.Key = "locations"
	KeyActiveEntry      querycache.Key = "active-entry"
	KeyMyEntries        querycache.Key = "my-entries"
	KeyActiveEmployees  querycache.Key = "active-employees"
	KeyMyVacations      querycache.Key = "my-vacations"
	KeyPendingVacations querycache.Key = "pending-vacations"
)

var (
	ErrNoLocation              = errors.New("views: no location selected")
	ErrUnknownLocation         = errors.New("views: location not available")
	ErrAlreadyClockedIn        = errors.New("views: already clocked in")
	ErrNotClockedIn            = errors.New("views: not clocked in")
	ErrReasonRequired          = errors.New("views: reason required")
	ErrReasonTooLong           = errors.New("views: reason too long")
	ErrInvalidDates            = errors.New("views: invalid dates")
	ErrInvalidVacationType     = errors.New("views: invalid vacation type")
	ErrNotCancellable          = errors.New("views: request cannot be cancelled")
	ErrRejectionReasonRequired = errors.New("views: rejection reason required")
	ErrForbidden               = errors.New("views: not allowed for this role")
	ErrDeclined                = errors.New("views: action not confirmed")
)

// API is everything the views call; *client.Client satisfies it.
type API interface {
	Locations(ctx context.Context) ([]domain.Location, error)
	MyActiveEntry(ctx context.Context) (*domain.TimeEntry, error)
	MyEntries(ctx context.Context, skip, limit int) ([]domain.TimeEntry, error)
	ActiveEmployees(ctx context.Context) ([]domain.TimeEntry, error)
	ClockIn(ctx context.Context, in client.ClockInInput) (domain.TimeEntry, error)
	ClockOut(ctx context.Context, in client.ClockOutInput) (domain.TimeEntry, error)

	MyVacationRequests(ctx context.Context, skip, limit int) ([]domain.VacationRequest, error)
	PendingVacationRequests(ctx context.Context, skip, limit int) ([]domain.VacationRequest, error)
	CreateVacationRequest(ctx context.Context, in client.CreateVacationInput) (domain.VacationRequest, error)
	ApproveVacationRequest(ctx context.Context, id string) (domain.VacationRequest, error)
	RejectVacationRequest(ctx context.Context, id, reason string) (domain.VacationRequest, error)
	CancelVacationRequest(ctx context.Context, id string) (domain.VacationRequest, error)
}

// Notifier shows transient messages (toasts).
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Confirmer asks the user a yes/no question before a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmerFunc func(ctx context.Context, prompt string) bool

func (f ConfirmerFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// UserSource is satisfied by *session.Session.
type UserSource interface {
	User() (domain.User, bool)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// confirm treats a missing Confirmer as "no".
func confirm(ctx context.Context, c Confirmer, prompt string) bool {
	return c != nil && c.Confirm(ctx, prompt)
}
