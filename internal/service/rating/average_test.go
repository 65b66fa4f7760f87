package rating_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/okarpov/cinehall/internal/service/rating"
)

func TestMean(t *testing.T) {
	t.Run("empty set has no mean", func(t *testing.T) {
		_, ok := rating.Mean(nil)
		assert.False(t, ok)
	})

	t.Run("single rating", func(t *testing.T) {
		mean, ok := rating.Mean([]float64{7})
		assert.True(t, ok)
		assert.Equal(t, 7.0, mean)
	})

	t.Run("mixed ratings", func(t *testing.T) {
		mean, ok := rating.Mean([]float64{4, 5})
		assert.True(t, ok)
		assert.Equal(t, 4.5, mean)
	})
}

func TestRoundRating(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"exact value untouched", 4.5, 4.5},
		{"rounds down", 4.44, 4.4},
		{"rounds up", 4.46, 4.5},
		{"half rounds away from zero", 4.45, 4.5},
		{"float noise collapses", 6.999999999999999, 7.0},
		{"mean of three", 20.0 / 3.0, 6.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, rating.RoundRating(tt.in), 1e-9)
		})
	}
}
