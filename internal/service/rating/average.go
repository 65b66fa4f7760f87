package rating

import "math"

// RoundRating rounds a raw mean to one decimal place, the precision the
// movie rating column carries.
func RoundRating(mean float64) float64 {
	return math.Round(mean*10) / 10
}

// Mean averages a set of review ratings. The empty set has no mean; ok is
// false and the movie rating becomes undefined rather than zero or NaN.
func Mean(ratings []float64) (mean float64, ok bool) {
	if len(ratings) == 0 {
		return 0, false
	}

	var sum float64
	for _, r := range ratings {
		sum += r
	}

	return sum / float64(len(ratings)), true
}
