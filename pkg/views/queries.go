package views

import (
	"context"

	"timetrack/pkg/domain"
	"timetrack/pkg/querycache"
)

// Queries binds each shared key to the one loader that fills it, so every
// view reading a key sees the same data and refetch.
type Queries struct {
	api   API
	cache *querycache.Cache
}

func NewQueries(api API, cache *querycache.Cache) *Queries {
	return &Queries{api: api, cache: cache}
}

func (q *Queries) Cache() *querycache.Cache {
	return q.cache
}

func (q *Queries) Locations(ctx context.Context) ([]domain.Location, error) {
	return querycache.Fetch(ctx, q.cache, KeyLocations, q.api.Locations)
}

// ActiveEntry is nil when the user is not clocked in.
func (q *Queries) ActiveEntry(ctx context.Context) (*domain.TimeEntry, error) {
	return querycache.Fetch(ctx, q.cache, KeyActiveEntry, q.api.MyActiveEntry)
}

func (q *Queries) MyEntries(ctx context.Context) ([]domain.TimeEntry, error) {
	return querycache.Fetch(ctx, q.cache, KeyMyEntries, func(ctx context.Context) ([]domain.TimeEntry, error) {
		return q.api.MyEntries(ctx, 0, 0)
	})
}

func (q *Queries) ActiveEmployees(ctx context.Context) ([]domain.TimeEntry, error) {
	return querycache.Fetch(ctx, q.cache, KeyActiveEmployees, q.api.ActiveEmployees)
}

func (q *Queries) MyVacations(ctx context.Context) ([]domain.VacationRequest, error) {
	return querycache.Fetch(ctx, q.cache, KeyMyVacations, func(ctx context.Context) ([]domain.VacationRequest, error) {
		return q.api.MyVacationRequests(ctx, 0, 0)
	})
}

func (q *Queries) PendingVacations(ctx context.Context) ([]domain.VacationRequest, error) {
	return querycache.Fetch(ctx, q.cache, KeyPendingVacations, func(ctx context.Context) ([]domain.VacationRequest, error) {
		return q.api.PendingVacationRequests(ctx, 0, 0)
	})
}

// activeEntryLoaded returns the cached active entry and whether the key
// has been loaded at all.
func (q *Queries) activeEntryLoaded() (*domain.TimeEntry, bool) {
	return querycache.Peek[*domain.TimeEntry](q.cache, KeyActiveEntry)
}
