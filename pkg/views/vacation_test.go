package views

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"timetrack/pkg/client"
	"timetrack/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vacationServer struct {
	requests []domain.VacationRequest
}

func (s *vacationServer) api() *fakeAPI {
	return &fakeAPI{
		myVacationsFn: func(context.Context) ([]domain.VacationRequest, error) {
			return append([]domain.VacationRequest(nil), s.requests...), nil
		},
		pendingFn: func(context.Context) ([]domain.VacationRequest, error) {
			var out []domain.VacationRequest
			for _, r := range s.requests {
				if r.Status == domain.VacationPending {
					out = append(out, r)
				}
			}
			return out, nil
		},
		createVacationFn: func(_ context.Context, in client.CreateVacationInput) (domain.VacationRequest, error) {
			r := domain.VacationRequest{
				ID: "v-1", StartDate: in.StartDate, EndDate: in.EndDate,
				VacationType: in.VacationType, Reason: in.Reason, Status: domain.VacationPending,
			}
			s.requests = append(s.requests, r)
			return r, nil
		},
		cancelVacationFn: func(_ context.Context, id string) (domain.VacationRequest, error) {
			return s.setStatus(id, domain.VacationCancelled), nil
		},
		approveFn: func(_ context.Context, id string) (domain.VacationRequest, error) {
			return s.setStatus(id, domain.VacationApproved), nil
		},
		rejectFn: func(_ context.Context, id, reason string) (domain.VacationRequest, error) {
			r := s.setStatus(id, domain.VacationRejected)
			r.RejectionReason = &reason
			return r, nil
		},
	}
}

func (s *vacationServer) setStatus(id string, st domain.VacationStatus) domain.VacationRequest {
	for i := range s.requests {
		if s.requests[i].ID == id {
			s.requests[i].Status = st
			return s.requests[i]
		}
	}
	return domain.VacationRequest{}
}

func validForm() VacationForm {
	return VacationForm{StartDate: "2099-07-01", EndDate: "2099-07-03", Reason: "Doctor visit"}
}

func TestVacationForm_Validate(t *testing.T) {
	in, err := validForm().Validate()
	require.NoError(t, err)
	assert.Equal(t, domain.VacationTypeVacation, in.VacationType)
	assert.Equal(t, "Doctor visit", in.Reason)
	assert.Nil(t, in.Notes)

	tests := []struct {
		name string
		mut  func(f *VacationForm)
		want error
	}{
		{"blank reason", func(f *VacationForm) { f.Reason = "   " }, ErrReasonRequired},
		{"long reason", func(f *VacationForm) { f.Reason = strings.Repeat("x", maxReasonLength+1) }, ErrReasonTooLong},
		{"bad start", func(f *VacationForm) { f.StartDate = "07/01/2099" }, ErrInvalidDates},
		{"end before start", func(f *VacationForm) { f.EndDate = "2099-06-30" }, ErrInvalidDates},
		{"bad type", func(f *VacationForm) { f.VacationType = "holiday" }, ErrInvalidVacationType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mut(&f)
			_, err := f.Validate()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVacation_CreateThenCancel(t *testing.T) {
	srv := &vacationServer{}
	api := srv.api()
	n := &recordingNotifier{}
	v := NewVacation(api, newQueries(api), n, yes())
	ctx := context.Background()

	list, err := v.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	created, err := v.Create(ctx, validForm())
	require.NoError(t, err)
	assert.Equal(t, domain.VacationPending, created.Status)
	assert.False(t, v.Submitting())

	list, err = v.Load(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.VacationPending, list[0].Status)
	assert.True(t, v.CanCancel(list[0]))

	_, err = v.Cancel(ctx, list[0])
	require.NoError(t, err)

	list, err = v.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.VacationCancelled, list[0].Status)
	assert.False(t, v.CanCancel(list[0]))
	assert.Equal(t, []string{msgSubmitted, msgCancelled}, n.successes)
	assert.Equal(t, 3, api.count("MyVacationRequests"))
}

func TestVacation_CreateInvalidSendsNothing(t *testing.T) {
	api := (&vacationServer{}).api()
	n := &recordingNotifier{}
	v := NewVacation(api, newQueries(api), n, yes())

	f := validForm()
	f.Reason = ""
	_, err := v.Create(context.Background(), f)
	assert.ErrorIs(t, err, ErrReasonRequired)
	assert.Equal(t, []string{msgReasonRequired}, n.errors)
	assert.Zero(t, api.count("CreateVacationRequest"))
}

func TestVacation_CancelGuards(t *testing.T) {
	pending := domain.VacationRequest{ID: "v-1", Status: domain.VacationPending}

	t.Run("terminal request", func(t *testing.T) {
		api := (&vacationServer{}).api()
		v := NewVacation(api, newQueries(api), nil, yes())
		for _, st := range []domain.VacationStatus{domain.VacationApproved, domain.VacationRejected, domain.VacationCancelled} {
			_, err := v.Cancel(context.Background(), domain.VacationRequest{ID: "v-1", Status: st})
			assert.ErrorIs(t, err, ErrNotCancellable)
		}
		assert.Zero(t, api.count("CancelVacationRequest"))
	})

	t.Run("declined confirmation", func(t *testing.T) {
		api := (&vacationServer{}).api()
		n := &recordingNotifier{}
		v := NewVacation(api, newQueries(api), n, no())
		_, err := v.Cancel(context.Background(), pending)
		assert.ErrorIs(t, err, ErrDeclined)
		assert.Zero(t, api.count("CancelVacationRequest"))
		assert.Empty(t, n.errors)
	})

	t.Run("missing confirmer declines", func(t *testing.T) {
		api := (&vacationServer{}).api()
		v := NewVacation(api, newQueries(api), nil, nil)
		_, err := v.Cancel(context.Background(), pending)
		assert.ErrorIs(t, err, ErrDeclined)
	})

	t.Run("server failure falls back", func(t *testing.T) {
		srv := &vacationServer{requests: []domain.VacationRequest{pending}}
		api := srv.api()
		api.cancelVacationFn = func(context.Context, string) (domain.VacationRequest, error) {
			return domain.VacationRequest{}, &client.APIError{Status: http.StatusInternalServerError, Message: client.GenericMessage}
		}
		n := &recordingNotifier{}
		v := NewVacation(api, newQueries(api), n, yes())
		before, err := v.Load(context.Background())
		require.NoError(t, err)

		_, err = v.Cancel(context.Background(), pending)
		assert.Error(t, err)
		assert.Equal(t, []string{msgCancelFailed}, n.errors)

		after, err := v.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, before, after)
		assert.Equal(t, 1, api.count("MyVacationRequests"))
	})
}
