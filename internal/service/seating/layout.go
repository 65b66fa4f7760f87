package seating

import "github.com/okarpov/cinehall/internal/domain"

const (
	layoutRows      = 9
	layoutEdgeWidth = 6
	layoutMidWidth  = 8
)

// DefaultLayout builds the standard hall grid for a session: nine rows, the
// first and last six seats wide, the rest eight seats wide, every seat at
// the same price. Seats are numbered 1..width within their row.
func DefaultLayout(sessionID int64, price float64) []domain.Seat {
	seats := make([]domain.Seat, 0, LayoutSize())

	for row := 1; row <= layoutRows; row++ {
		width := layoutMidWidth
		if row == 1 || row == layoutRows {
			width = layoutEdgeWidth
		}

		for number := 1; number <= width; number++ {
			seats = append(seats, domain.Seat{
				SessionID: sessionID,
				Price:     price,
				Number:    number,
				Row:       row,
			})
		}
	}

	return seats
}

// LayoutSize is the seat count DefaultLayout produces.
func LayoutSize() int {
	return 2*layoutEdgeWidth + (layoutRows-2)*layoutMidWidth
}
