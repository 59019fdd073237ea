package views

import (
	"context"
	"errors"
	"sync"
	"time"

	"timetrack/pkg/client"
	"timetrack/pkg/domain"
	"timetrack/pkg/geo"
	"timetrack/pkg/querycache"
	"timetrack/pkg/task"

	"golang.org/x/sync/errgroup"
)

const (
	defaultGeoTimeout = 10 * time.Second

	msgSelectLocation = "Please select a location and ensure location access is enabled"
	msgClockedIn      = "Successfully clocked in!"
	msgClockInFailed  = "Failed to clock in"
	msgClockedOut     = "Successfully clocked out!"
	msgClockOutFailed = "Failed to clock out"
)

var clockMutationAffects = []querycache.Key{KeyActiveEntry, KeyMyEntries, KeyActiveEmployees}

type TimeTrackingState struct {
	Locations   []domain.Location
	Selected    *domain.Location
	Active      *domain.TimeEntry
	Entries     []domain.TimeEntry
	Position    *geo.Position
	PositionErr error
	Busy        bool
}

type TimeTracking struct {
	api     API
	queries *Queries
	geo     geo.Provider
	notify  Notifier

	geoTimeout time.Duration

	mu       sync.Mutex
	selected *domain.Location
	position *geo.Position
	posErr   error

	clockIn  task.Task[domain.TimeEntry]
	clockOut task.Task[domain.TimeEntry]
}

func NewTimeTracking(api API, queries *Queries, provider geo.Provider, notify Notifier) *TimeTracking {
	return &TimeTracking{
		api:        api,
		queries:    queries,
		geo:        provider,
		notify:     notifierOrNop(notify),
		geoTimeout: defaultGeoTimeout,
	}
}

// Load fetches locations, the active entry and history. The device position
// is acquired alongside; its failure is kept in the state and never fails
// the load.
func (v *TimeTracking) Load(ctx context.Context) (TimeTrackingState, error) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = v.RefreshPosition(ctx)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { _, err := v.queries.Locations(gctx); return err })
	g.Go(func() error { _, err := v.queries.ActiveEntry(gctx); return err })
	g.Go(func() error { _, err := v.queries.MyEntries(gctx); return err })
	err := g.Wait()
	wg.Wait()
	if err != nil {
		return TimeTrackingState{}, err
	}
	return v.State(), nil
}

// RefreshPosition asks the device for a fresh fix.
func (v *TimeTracking) RefreshPosition(ctx context.Context) error {
	_, err := v.locate(ctx)
	return err
}

// locate records the outcome of one fix attempt and returns it, so callers
// never depend on what a concurrent attempt left behind.
func (v *TimeTracking) locate(ctx context.Context) (geo.Position, error) {
	pos, err := geo.Locate(ctx, v.geo, v.geoTimeout)
	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.position = nil
		v.posErr = err
		return geo.Position{}, err
	}
	v.position = &pos
	v.posErr = nil
	return pos, nil
}

// State assembles the current view from cache and local selections.
func (v *TimeTracking) State() TimeTrackingState {
	cache := v.queries.Cache()
	st := TimeTrackingState{Busy: v.busy()}
	st.Locations, _ = querycache.Peek[[]domain.Location](cache, KeyLocations)
	st.Active, _ = v.queries.activeEntryLoaded()
	st.Entries, _ = querycache.Peek[[]domain.TimeEntry](cache, KeyMyEntries)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected != nil {
		sel := *v.selected
		st.Selected = &sel
	}
	if v.position != nil {
		pos := *v.position
		st.Position = &pos
	}
	st.PositionErr = v.posErr
	return st
}

// SelectLocation picks one of the loaded active locations.
func (v *TimeTracking) SelectLocation(id string) error {
	locs, _ := querycache.Peek[[]domain.Location](v.queries.Cache(), KeyLocations)
	for _, l := range locs {
		if l.ID == id && l.IsActive {
			l := l
			v.mu.Lock()
			v.selected = &l
			v.mu.Unlock()
			return nil
		}
	}
	return ErrUnknownLocation
}

// CanClockIn is true only once the active entry is known to be absent.
func (v *TimeTracking) CanClockIn() bool {
	active, loaded := v.queries.activeEntryLoaded()
	return loaded && active == nil && !v.busy()
}

// CanClockOut is true only while an active entry is loaded.
func (v *TimeTracking) CanClockOut() bool {
	active, loaded := v.queries.activeEntryLoaded()
	return loaded && active != nil && !v.busy()
}

// busy reports whether either clock action is still running.
func (v *TimeTracking) busy() bool {
	return v.clockIn.InFlight() || v.clockOut.InFlight()
}

func (v *TimeTracking) ClockIn(ctx context.Context, notes *string) (domain.TimeEntry, error) {
	if v.busy() {
		return domain.TimeEntry{}, task.ErrInFlight
	}
	if active, loaded := v.queries.activeEntryLoaded(); loaded && active != nil {
		return domain.TimeEntry{}, ErrAlreadyClockedIn
	}

	v.mu.Lock()
	selected := v.selected
	v.mu.Unlock()
	if selected == nil {
		v.notify.Error(msgSelectLocation)
		return domain.TimeEntry{}, ErrNoLocation
	}
	pos, err := v.resolvePosition(ctx)
	if err != nil {
		v.notify.Error(geo.Message(err))
		return domain.TimeEntry{}, err
	}

	in := client.ClockInInput{
		LocationID: selected.ID,
		Latitude:   pos.Latitude,
		Longitude:  pos.Longitude,
		Accuracy:   accuracyPtr(pos),
		Notes:      notes,
	}
	m := querycache.Mutation{Name: "clock-in", Affects: clockMutationAffects}
	res, err := v.clockIn.Run(ctx, func(ctx context.Context) (domain.TimeEntry, error) {
		return querycache.Run(ctx, v.queries.Cache(), m, func(ctx context.Context) (domain.TimeEntry, error) {
			return v.api.ClockIn(ctx, in)
		})
	})
	return v.finish(res, err, msgClockedIn, msgClockInFailed)
}

func (v *TimeTracking) ClockOut(ctx context.Context, notes *string) (domain.TimeEntry, error) {
	if v.busy() {
		return domain.TimeEntry{}, task.ErrInFlight
	}
	if active, loaded := v.queries.activeEntryLoaded(); loaded && active == nil {
		return domain.TimeEntry{}, ErrNotClockedIn
	}

	pos, err := v.resolvePosition(ctx)
	if err != nil {
		v.notify.Error(geo.Message(err))
		return domain.TimeEntry{}, err
	}

	in := client.ClockOutInput{
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		Accuracy:  accuracyPtr(pos),
		Notes:     notes,
	}
	m := querycache.Mutation{Name: "clock-out", Affects: clockMutationAffects}
	res, err := v.clockOut.Run(ctx, func(ctx context.Context) (domain.TimeEntry, error) {
		return querycache.Run(ctx, v.queries.Cache(), m, func(ctx context.Context) (domain.TimeEntry, error) {
			return v.api.ClockOut(ctx, in)
		})
	})
	return v.finish(res, err, msgClockedOut, msgClockOutFailed)
}

func (v *TimeTracking) finish(res task.Result[domain.TimeEntry], err error, ok, failed string) (domain.TimeEntry, error) {
	if err != nil {
		return domain.TimeEntry{}, err
	}
	switch res.Outcome {
	case task.Succeeded:
		v.notify.Success(ok)
		return res.Value, nil
	case task.Cancelled:
		return domain.TimeEntry{}, res.Err
	default:
		if !errors.Is(res.Err, client.ErrUnauthorized) {
			v.notify.Error(client.MessageOr(res.Err, failed))
		}
		return domain.TimeEntry{}, res.Err
	}
}

// resolvePosition uses the last fix, or tries once more if there is none.
func (v *TimeTracking) resolvePosition(ctx context.Context) (geo.Position, error) {
	v.mu.Lock()
	pos := v.position
	v.mu.Unlock()
	if pos != nil {
		return *pos, nil
	}
	return v.locate(ctx)
}

func accuracyPtr(p geo.Position) *float64 {
	if p.Accuracy <= 0 {
		return nil
	}
	a := p.Accuracy
	return &a
}

// EntryDuration renders a history row: stored minutes for closed entries,
// elapsed time for the active one.
func EntryDuration(e domain.TimeEntry, now time.Time) string {
	if e.DurationMinutes != nil {
		return domain.FormatMinutes(*e.DurationMinutes)
	}
	return domain.FormatDuration(e.Elapsed(now))
}
