package views

import (
	"context"
	"sync"

	"timetrack/pkg/client"
	"timetrack/pkg/domain"
	"timetrack/pkg/querycache"

	"go.uber.org/zap"
)

type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	locationsFn       func(ctx context.Context) ([]domain.Location, error)
	myActiveFn        func(ctx context.Context) (*domain.TimeEntry, error)
	myEntriesFn       func(ctx context.Context) ([]domain.TimeEntry, error)
	activeEmployeesFn func(ctx context.Context) ([]domain.TimeEntry, error)
	clockInFn         func(ctx context.Context, in client.ClockInInput) (domain.TimeEntry, error)
	clockOutFn        func(ctx context.Context, in client.ClockOutInput) (domain.TimeEntry, error)
	myVacationsFn     func(ctx context.Context) ([]domain.VacationRequest, error)
	pendingFn         func(ctx context.Context) ([]domain.VacationRequest, error)
	createVacationFn  func(ctx context.Context, in client.CreateVacationInput) (domain.VacationRequest, error)
	approveFn         func(ctx context.Context, id string) (domain.VacationRequest, error)
	rejectFn          func(ctx context.Context, id, reason string) (domain.VacationRequest, error)
	cancelVacationFn  func(ctx context.Context, id string) (domain.VacationRequest, error)
}

func (f *fakeAPI) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) Locations(ctx context.Context) ([]domain.Location, error) {
	f.hit("Locations")
	if f.locationsFn == nil {
		return nil, nil
	}
	return f.locationsFn(ctx)
}

func (f *fakeAPI) MyActiveEntry(ctx context.Context) (*domain.TimeEntry, error) {
	f.hit("MyActiveEntry")
	if f.myActiveFn == nil {
		return nil, nil
	}
	return f.myActiveFn(ctx)
}

func (f *fakeAPI) MyEntries(ctx context.Context, skip, limit int) ([]domain.TimeEntry, error) {
	f.hit("MyEntries")
	if f.myEntriesFn == nil {
		return nil, nil
	}
	return f.myEntriesFn(ctx)
}

func (f *fakeAPI) ActiveEmployees(ctx context.Context) ([]domain.TimeEntry, error) {
	f.hit("ActiveEmployees")
	if f.activeEmployeesFn == nil {
		return nil, nil
	}
	return f.activeEmployeesFn(ctx)
}

func (f *fakeAPI) ClockIn(ctx context.Context, in client.ClockInInput) (domain.TimeEntry, error) {
	f.hit("ClockIn")
	return f.clockInFn(ctx, in)
}

func (f *fakeAPI) ClockOut(ctx context.Context, in client.ClockOutInput) (domain.TimeEntry, error) {
	f.hit("ClockOut")
	return f.clockOutFn(ctx, in)
}

func (f *fakeAPI) MyVacationRequests(ctx context.Context, skip, limit int) ([]domain.VacationRequest, error) {
	f.hit("MyVacationRequests")
	if f.myVacationsFn == nil {
		return nil, nil
	}
	return f.myVacationsFn(ctx)
}

func (f *fakeAPI) PendingVacationRequests(ctx context.Context, skip, limit int) ([]domain.VacationRequest, error) {
	f.hit("PendingVacationRequests")
	if f.pendingFn == nil {
		return nil, nil
	}
	return f.pendingFn(ctx)
}

func (f *fakeAPI) CreateVacationRequest(ctx context.Context, in client.CreateVacationInput) (domain.VacationRequest, error) {
	f.hit("CreateVacationRequest")
	return f.createVacationFn(ctx, in)
}

func (f *fakeAPI) ApproveVacationRequest(ctx context.Context, id string) (domain.VacationRequest, error) {
	f.hit("ApproveVacationRequest")
	return f.approveFn(ctx, id)
}

func (f *fakeAPI) RejectVacationRequest(ctx context.Context, id, reason string) (domain.VacationRequest, error) {
	f.hit("RejectVacationRequest")
	return f.rejectFn(ctx, id, reason)
}

func (f *fakeAPI) CancelVacationRequest(ctx context.Context, id string) (domain.VacationRequest, error) {
	f.hit("CancelVacationRequest")
	return f.cancelVacationFn(ctx, id)
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	n.successes = append(n.successes, msg)
	n.mu.Unlock()
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	n.errors = append(n.errors, msg)
	n.mu.Unlock()
}

type staticUser struct {
	user domain.User
	ok   bool
}

func (s staticUser) User() (domain.User, bool) { return s.user, s.ok }

func yes() Confirmer {
	return ConfirmerFunc(func(context.Context, string) bool { return true })
}

func no() Confirmer {
	return ConfirmerFunc(func(context.Context, string) bool { return false })
}

func newQueries(api API) *Queries {
	return NewQueries(api, querycache.New(zap.NewNop()))
}

func ptr[T any](v T) *T { return &v }
