package views

import (
	"context"
	"time"

	"timetrack/pkg/domain"

	"golang.org/x/sync/errgroup"
)

type DashboardSummary struct {
	Working          bool
	ActiveEntry      *domain.TimeEntry
	ActiveFor        string
	TodayEntries     int
	PendingVacations int
	RecentVacations  []domain.VacationRequest
}

const recentVacationCount = 5

// Summarize derives the dashboard from collections already fetched. Today
// is the calendar day of now in now's location.
func Summarize(entries []domain.TimeEntry, vacations []domain.VacationRequest, active *domain.TimeEntry, now time.Time) DashboardSummary {
	y, m, d := now.Date()
	loc := now.Location()

	s := DashboardSummary{Working: active != nil, ActiveEntry: active}
	if active != nil {
		s.ActiveFor = domain.FormatDuration(active.Elapsed(now))
	}
	for _, e := range entries {
		ey, em, ed := e.ClockInTime.In(loc).Date()
		if ey == y && em == m && ed == d {
			s.TodayEntries++
		}
	}
	for _, v := range vacations {
		if v.Status == domain.VacationPending {
			s.PendingVacations++
		}
	}
	if len(vacations) > recentVacationCount {
		s.RecentVacations = vacations[:recentVacationCount]
	} else {
		s.RecentVacations = vacations
	}
	return s
}

type Dashboard struct {
	queries *Queries
	now     func() time.Time
}

func NewDashboard(queries *Queries) *Dashboard {
	return &Dashboard{queries: queries, now: time.Now}
}

// Load fetches the three result sets concurrently and summarizes them.
func (d *Dashboard) Load(ctx context.Context) (DashboardSummary, error) {
	var (
		active    *domain.TimeEntry
		entries   []domain.TimeEntry
		vacations []domain.VacationRequest
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		active, err = d.queries.ActiveEntry(gctx)
		return err
	})
	g.Go(func() (err error) {
		entries, err = d.queries.MyEntries(gctx)
		return err
	})
	g.Go(func() (err error) {
		vacations, err = d.queries.MyVacations(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return DashboardSummary{}, err
	}
	return Summarize(entries, vacations, active, d.now()), nil
}
