package seating_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okarpov/cinehall/internal/service/seating"
)

func TestDefaultLayout(t *testing.T) {
	seats := seating.DefaultLayout(42, 12.5)

	require.Len(t, seats, seating.LayoutSize())
	assert.Len(t, seats, 68)

	widths := map[int]int{}
	for _, s := range seats {
		assert.Equal(t, int64(42), s.SessionID)
		assert.Equal(t, 12.5, s.Price)
		assert.Nil(t, s.TicketID)
		widths[s.Row]++
	}

	require.Len(t, widths, 9)
	assert.Equal(t, 6, widths[1])
	assert.Equal(t, 6, widths[9])
	for row := 2; row <= 8; row++ {
		assert.Equal(t, 8, widths[row], "row %d", row)
	}
}

func TestDefaultLayoutNumbering(t *testing.T) {
	seats := seating.DefaultLayout(1, 10)

	// seats within a row are numbered 1..width without gaps
	seen := map[[2]int]bool{}
	for _, s := range seats {
		key := [2]int{s.Row, s.Number}
		assert.False(t, seen[key], "duplicate seat row=%d number=%d", s.Row, s.Number)
		seen[key] = true
		assert.GreaterOrEqual(t, s.Number, 1)
	}

	assert.True(t, seen[[2]int{1, 6}])
	assert.False(t, seen[[2]int{1, 7}])
	assert.True(t, seen[[2]int{5, 8}])
	assert.False(t, seen[[2]int{5, 9}])
}
