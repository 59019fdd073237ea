package views

import (
	"context"
	"errors"
	"strings"
	"time"

	"timetrack/pkg/client"
	"timetrack/pkg/domain"
	"timetrack/pkg/querycache"
	"timetrack/pkg/task"
)

const (
	msgReasonRequired = "Please provide a reason for your request"
	msgInvalidDates   = "Please choose a valid start and end date"
	msgInvalidType    = "Please choose a valid request type"
	msgSubmitted      = "Vacation request submitted successfully!"
	msgSubmitFailed   = "Failed to submit request"
	msgConfirmCancel  = "Are you sure you want to cancel this request?"
	msgCancelled      = "Request cancelled successfully!"
	msgCancelFailed   = "Failed to cancel request"
	msgNotCancellable = "Only pending requests can be cancelled"
	msgReasonTooLong  = "Reason must be at most 2000 characters"
	maxReasonLength   = 2000
)

var vacationMutationAffects = []querycache.Key{KeyMyVacations, KeyPendingVacations}

// VacationForm is the unvalidated create form.
type VacationForm struct {
	StartDate    string
	EndDate      string
	VacationType domain.VacationType
	Reason       string
	Notes        string
}

// Validate checks the form the way the server will, so a bad form never
// leaves the client.
func (f VacationForm) Validate() (client.CreateVacationInput, error) {
	reason := strings.TrimSpace(f.Reason)
	if reason == "" {
		return client.CreateVacationInput{}, ErrReasonRequired
	}
	if len(reason) > maxReasonLength {
		return client.CreateVacationInput{}, ErrReasonTooLong
	}

	start, err := time.Parse(domain.DateLayout, strings.TrimSpace(f.StartDate))
	if err != nil {
		return client.CreateVacationInput{}, ErrInvalidDates
	}
	end, err := time.Parse(domain.DateLayout, strings.TrimSpace(f.EndDate))
	if err != nil || end.Before(start) {
		return client.CreateVacationInput{}, ErrInvalidDates
	}

	typ := f.VacationType
	if typ == "" {
		typ = domain.VacationTypeVacation
	}
	if !typ.Valid() {
		return client.CreateVacationInput{}, ErrInvalidVacationType
	}

	in := client.CreateVacationInput{
		StartDate:    start.Format(domain.DateLayout),
		EndDate:      end.Format(domain.DateLayout),
		VacationType: typ,
		Reason:       reason,
	}
	if notes := strings.TrimSpace(f.Notes); notes != "" {
		in.Notes = &notes
	}
	return in, nil
}

type Vacation struct {
	api     API
	queries *Queries
	notify  Notifier
	confirm Confirmer

	create task.Task[domain.VacationRequest]
	cancel task.Task[domain.VacationRequest]
}

func NewVacation(api API, queries *Queries, notify Notifier, confirm Confirmer) *Vacation {
	return &Vacation{
		api:     api,
		queries: queries,
		notify:  notifierOrNop(notify),
		confirm: confirm,
	}
}

func (v *Vacation) Load(ctx context.Context) ([]domain.VacationRequest, error) {
	return v.queries.MyVacations(ctx)
}

func (v *Vacation) Submitting() bool {
	return v.create.InFlight()
}

func (v *Vacation) Create(ctx context.Context, form VacationForm) (domain.VacationRequest, error) {
	in, err := form.Validate()
	if err != nil {
		v.notify.Error(formMessage(err))
		return domain.VacationRequest{}, err
	}

	m := querycache.Mutation{Name: "vacation-create", Affects: vacationMutationAffects}
	res, err := v.create.Run(ctx, func(ctx context.Context) (domain.VacationRequest, error) {
		return querycache.Run(ctx, v.queries.Cache(), m, func(ctx context.Context) (domain.VacationRequest, error) {
			return v.api.CreateVacationRequest(ctx, in)
		})
	})
	return finishVacation(v.notify, res, err, msgSubmitted, msgSubmitFailed)
}

// CanCancel drives whether the cancel control is shown at all.
func (v *Vacation) CanCancel(req domain.VacationRequest) bool {
	return req.Status == domain.VacationPending && !v.cancel.InFlight()
}

// Cancel asks for confirmation, then withdraws req.
func (v *Vacation) Cancel(ctx context.Context, req domain.VacationRequest) (domain.VacationRequest, error) {
	if req.Status != domain.VacationPending {
		v.notify.Error(msgNotCancellable)
		return domain.VacationRequest{}, ErrNotCancellable
	}
	if v.cancel.InFlight() {
		return domain.VacationRequest{}, task.ErrInFlight
	}
	if !confirm(ctx, v.confirm, msgConfirmCancel) {
		return domain.VacationRequest{}, ErrDeclined
	}

	m := querycache.Mutation{Name: "vacation-cancel", Affects: vacationMutationAffects}
	res, err := v.cancel.Run(ctx, func(ctx context.Context) (domain.VacationRequest, error) {
		return querycache.Run(ctx, v.queries.Cache(), m, func(ctx context.Context) (domain.VacationRequest, error) {
			return v.api.CancelVacationRequest(ctx, req.ID)
		})
	})
	return finishVacation(v.notify, res, err, msgCancelled, msgCancelFailed)
}

func formMessage(err error) string {
	switch {
	case errors.Is(err, ErrReasonTooLong):
		return msgReasonTooLong
	case errors.Is(err, ErrReasonRequired):
		return msgReasonRequired
	case errors.Is(err, ErrInvalidVacationType):
		return msgInvalidType
	default:
		return msgInvalidDates
	}
}

func finishVacation(n Notifier, res task.Result[domain.VacationRequest], err error, ok, failed string) (domain.VacationRequest, error) {
	if err != nil {
		return domain.VacationRequest{}, err
	}
	switch res.Outcome {
	case task.Succeeded:
		n.Success(ok)
		return res.Value, nil
	case task.Cancelled:
		return domain.VacationRequest{}, res.Err
	default:
		if !errors.Is(res.Err, client.ErrUnauthorized) {
			n.Error(client.MessageOr(res.Err, failed))
		}
		return domain.VacationRequest{}, res.Err
	}
}
