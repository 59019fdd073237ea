package vacation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	all := []string{StatusPending, StatusApproved, StatusRejected, StatusCancelled}
	for _, from := range all {
		for _, to := range all {
			want := from == StatusPending && to != StatusPending
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestDurationDays(t *testing.T) {
	start := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, VacationRequest{StartDate: start, EndDate: start}.DurationDays())
	assert.Equal(t, 5, VacationRequest{StartDate: start, EndDate: start.AddDate(0, 0, 4)}.DurationDays())
}
