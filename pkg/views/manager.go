package views

import (
	"context"
	"strings"
	"time"

	"timetrack/pkg/domain"
	"timetrack/pkg/querycache"
	"timetrack/pkg/task"

	"golang.org/x/sync/errgroup"
)

const (
	msgConfirmApprove  = "Are you sure you want to approve this request?"
	msgApproved        = "Request approved successfully!"
	msgApproveFailed   = "Failed to approve request"
	msgRejectionReason = "Please provide a reason for rejection"
	msgRejected        = "Request rejected successfully!"
	msgRejectFailed    = "Failed to reject request"
)

var reviewMutationAffects = []querycache.Key{KeyPendingVacations, KeyMyVacations}

type ManagerState struct {
	ActiveEmployees []domain.TimeEntry
	Pending         []domain.VacationRequest
}

type ManagerDashboard struct {
	users   UserSource
	api     API
	queries *Queries
	notify  Notifier
	confirm Confirmer

	approve task.Task[domain.VacationRequest]
	reject  task.Task[domain.VacationRequest]
}

func NewManagerDashboard(users UserSource, api API, queries *Queries, notify Notifier, confirm Confirmer) *ManagerDashboard {
	return &ManagerDashboard{
		users:   users,
		api:     api,
		queries: queries,
		notify:  notifierOrNop(notify),
		confirm: confirm,
	}
}

// Allowed is the capability check for every action on this view.
func (v *ManagerDashboard) Allowed() bool {
	u, ok := v.users.User()
	return ok && u.Role.In(domain.ManagerRoles...)
}

func (v *ManagerDashboard) Load(ctx context.Context) (ManagerState, error) {
	if !v.Allowed() {
		return ManagerState{}, ErrForbidden
	}
	var st ManagerState
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.ActiveEmployees, err = v.queries.ActiveEmployees(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.Pending, err = v.queries.PendingVacations(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return ManagerState{}, err
	}
	return st, nil
}

// Busy reports whether a review action is outstanding.
func (v *ManagerDashboard) Busy() bool {
	return v.approve.InFlight() || v.reject.InFlight()
}

func (v *ManagerDashboard) Approve(ctx context.Context, id string) (domain.VacationRequest, error) {
	if !v.Allowed() {
		return domain.VacationRequest{}, ErrForbidden
	}
	if v.approve.InFlight() {
		return domain.VacationRequest{}, task.ErrInFlight
	}
	if !confirm(ctx, v.confirm, msgConfirmApprove) {
		return domain.VacationRequest{}, ErrDeclined
	}

	m := querycache.Mutation{Name: "vacation-approve", Affects: reviewMutationAffects}
	res, err := v.approve.Run(ctx, func(ctx context.Context) (domain.VacationRequest, error) {
		return querycache.Run(ctx, v.queries.Cache(), m, func(ctx context.Context) (domain.VacationRequest, error) {
			return v.api.ApproveVacationRequest(ctx, id)
		})
	})
	return finishVacation(v.notify, res, err, msgApproved, msgApproveFailed)
}

// Reject needs a non-blank reason; without one no request is sent.
func (v *ManagerDashboard) Reject(ctx context.Context, id, reason string) (domain.VacationRequest, error) {
	if !v.Allowed() {
		return domain.VacationRequest{}, ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		v.notify.Error(msgRejectionReason)
		return domain.VacationRequest{}, ErrRejectionReasonRequired
	}
	if v.reject.InFlight() {
		return domain.VacationRequest{}, task.ErrInFlight
	}

	m := querycache.Mutation{Name: "vacation-reject", Affects: reviewMutationAffects}
	res, err := v.reject.Run(ctx, func(ctx context.Context) (domain.VacationRequest, error) {
		return querycache.Run(ctx, v.queries.Cache(), m, func(ctx context.Context) (domain.VacationRequest, error) {
			return v.api.RejectVacationRequest(ctx, id, reason)
		})
	})
	return finishVacation(v.notify, res, err, msgRejected, msgRejectFailed)
}

// OnShiftFor renders how long an active employee has been clocked in.
func OnShiftFor(e domain.TimeEntry, now time.Time) string {
	return domain.FormatDuration(e.Elapsed(now))
}
