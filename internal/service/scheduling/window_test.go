package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/okarpov/cinehall/internal/domain"
)

func TestMergeWindow(t *testing.T) {
	start := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	current := domain.Session{Start: start, End: end}

	newStart := start.Add(time.Hour)
	newEnd := end.Add(time.Hour)

	t.Run("empty patch keeps the stored window", func(t *testing.T) {
		s, e := mergeWindow(current, WindowPatch{})
		assert.Equal(t, start, s)
		assert.Equal(t, end, e)
	})

	t.Run("start-only overlays start", func(t *testing.T) {
		s, e := mergeWindow(current, WindowPatch{Start: &newStart})
		assert.Equal(t, newStart, s)
		assert.Equal(t, end, e)
	})

	t.Run("end-only overlays end", func(t *testing.T) {
		s, e := mergeWindow(current, WindowPatch{End: &newEnd})
		assert.Equal(t, start, s)
		assert.Equal(t, newEnd, e)
	})

	t.Run("both replace the window", func(t *testing.T) {
		s, e := mergeWindow(current, WindowPatch{Start: &newStart, End: &newEnd})
		assert.Equal(t, newStart, s)
		assert.Equal(t, newEnd, e)
	})
}

func TestValidateWindow(t *testing.T) {
	start := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	movieStart := start.Add(-24 * time.Hour)

	t.Run("valid window", func(t *testing.T) {
		assert.NoError(t, validateWindow(start, end, &movieStart))
	})

	t.Run("no movie start date skips the premiere check", func(t *testing.T) {
		assert.NoError(t, validateWindow(start, end, nil))
	})

	t.Run("start equal to end is invalid", func(t *testing.T) {
		assert.ErrorIs(t, validateWindow(start, start, nil), ErrInvalidRange)
	})

	t.Run("start after end is invalid", func(t *testing.T) {
		assert.ErrorIs(t, validateWindow(end, start, nil), ErrInvalidRange)
	})

	t.Run("session before the movie premiere is invalid", func(t *testing.T) {
		early := movieStart.Add(-time.Hour)
		assert.ErrorIs(t, validateWindow(early, end, &movieStart), ErrInvalidStart)
	})

	t.Run("session exactly at the premiere is valid", func(t *testing.T) {
		assert.NoError(t, validateWindow(movieStart, end, &movieStart))
	})
}

func TestOnDay(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	plusThree := time.FixedZone("UTC+3", 3*60*60)

	t.Run("same UTC day matches", func(t *testing.T) {
		start := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
		assert.True(t, onDay(start, day))
	})

	t.Run("next UTC day does not match", func(t *testing.T) {
		start := time.Date(2025, 3, 11, 0, 30, 0, 0, time.UTC)
		assert.False(t, onDay(start, day))
	})

	t.Run("zoned start compares in the day's location", func(t *testing.T) {
		// 01:30 on the 11th in UTC+3 is still 22:30 on the 10th in UTC.
		start := time.Date(2025, 3, 11, 1, 30, 0, 0, plusThree)
		assert.True(t, onDay(start, day))
	})

	t.Run("zoned start past the day's midnight does not match", func(t *testing.T) {
		start := time.Date(2025, 3, 11, 4, 30, 0, 0, plusThree)
		assert.False(t, onDay(start, day))
	})
}
