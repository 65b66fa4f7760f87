package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/okarpov/cinehall/internal/domain"
	"github.com/okarpov/cinehall/internal/service/booking"
)

func TestDeriveMissed(t *testing.T) {
	start := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	session := domain.Session{Start: start, End: end}

	tests := []struct {
		name   string
		ticket domain.Ticket
		now    time.Time
		want   bool
	}{
		{
			name:   "before start nothing is missed",
			ticket: domain.Ticket{},
			now:    start.Add(-time.Minute),
			want:   false,
		},
		{
			name:   "unpaid at start is missed",
			ticket: domain.Ticket{},
			now:    start,
			want:   true,
		},
		{
			name:   "paid during the session is fine",
			ticket: domain.Ticket{IsPaid: true},
			now:    start.Add(time.Hour),
			want:   false,
		},
		{
			name:   "paid but never visited after end is missed",
			ticket: domain.Ticket{IsPaid: true},
			now:    end,
			want:   true,
		},
		{
			name:   "paid and visited is never missed",
			ticket: domain.Ticket{IsPaid: true, IsVisited: true},
			now:    end.Add(time.Hour),
			want:   false,
		},
		{
			name:   "missed flag is sticky",
			ticket: domain.Ticket{IsMissed: true, IsPaid: true, IsVisited: true},
			now:    start.Add(-time.Hour),
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, booking.DeriveMissed(tt.ticket, session, tt.now))
		})
	}
}
