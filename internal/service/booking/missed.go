package booking

import (
	"time"

	"github.com/okarpov/cinehall/internal/domain"
)

// DeriveMissed reports whether a ticket counts as missed at the given
// moment: either the session started and the ticket was never paid, or the
// session ended and the paid ticket was never checked in. Once missed,
// always missed.
func DeriveMissed(t domain.Ticket, session domain.Session, now time.Time) bool {
	if t.IsMissed {
		return true
	}

	unpaidForStartedSession := !now.Before(session.Start) && !t.IsPaid
	paidButNeverVisited := !now.Before(session.End) && t.IsPaid && !t.IsVisited

	return unpaidForStartedSession || paidButNeverVisited
}
