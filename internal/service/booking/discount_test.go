package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/okarpov/cinehall/internal/service/booking"
)

func TestDiscount(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start time.Time
		want  int
	}{
		{
			name:  "seven days ahead earns the cap",
			start: now.AddDate(0, 0, 7),
			want:  35,
		},
		{
			name:  "three days ahead",
			start: now.AddDate(0, 0, 3),
			want:  15,
		},
		{
			name:  "one day ahead",
			start: now.AddDate(0, 0, 1),
			want:  5,
		},
		{
			name:  "more than seven days earns nothing",
			start: now.AddDate(0, 0, 8),
			want:  0,
		},
		{
			name:  "same day later earns nothing",
			start: now.Add(5 * time.Hour),
			want:  0,
		},
		{
			name:  "session already started",
			start: now.Add(-time.Hour),
			want:  0,
		},
		{
			name:  "session starting exactly now",
			start: now,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, booking.Discount(now, tt.start))
		})
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)

	t.Run("crossing midnight counts a full day", func(t *testing.T) {
		start := time.Date(2025, 3, 11, 0, 30, 0, 0, time.UTC)
		assert.Equal(t, 1, booking.DaysUntil(now, start))
	})

	t.Run("same calendar day is zero", func(t *testing.T) {
		start := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
		assert.Equal(t, 0, booking.DaysUntil(now, start))
	})

	t.Run("month boundary", func(t *testing.T) {
		start := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
		assert.Equal(t, 23, booking.DaysUntil(now, start))
	})

	t.Run("start in another zone compares by local date", func(t *testing.T) {
		loc := time.FixedZone("UTC+3", 3*3600)
		start := time.Date(2025, 3, 11, 1, 0, 0, 0, loc) // 2025-03-10 22:00 UTC
		assert.Equal(t, 0, booking.DaysUntil(now, start))
	})
}
