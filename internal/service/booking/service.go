package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okarpov/cinehall/internal/domain"
	"github.com/okarpov/cinehall/internal/repository"
	postgresrepo "github.com/okarpov/cinehall/internal/repository/postgres"
	redisrepo "github.com/okarpov/cinehall/internal/repository/redis"
	"github.com/okarpov/cinehall/internal/uow"
)

type Service struct {
	store   *postgresrepo.Store
	cache   *redisrepo.Cache
	pubsub  *redisrepo.SessionsPubSub
	limiter *redisrepo.SlidingWindowLimiter
	uow     *uow.UoW
}

func New(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	pubsub *redisrepo.SessionsPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
) *Service {
	return &Service{
		store:   store,
		cache:   cache,
		pubsub:  pubsub,
		limiter: limiter,
		uow:     uow.NewUoW(store),
	}
}

// TicketPatch is a partial ticket update. A nil SeatIDs keeps the current
// seats; a non-nil one replaces them through the full booking pipeline.
type TicketPatch struct {
	SeatIDs   []int64
	IsPaid    *bool
	IsVisited *bool
}

// Book atomically reserves the given seats into a new ticket for the
// person. The whole read-validate-claim sequence runs in one transaction;
// the claim re-checks seat availability with a conditional update, so two
// concurrent bookings of an overlapping seat set cannot both succeed.
//
// Returns:
//   - *domain.TicketView: the created ticket with its seats and session.
//   - error: booking.ErrSeatsNotFound when any seat id does not resolve.
//   - error: booking.ErrAlreadyBooked when any seat already has a ticket.
//   - error: booking.ErrMixedSessions when the seats span sessions.
//   - error: booking.ErrSessionEnded when the session is over.
//   - error: booking.ErrPersonNotFound when the person does not exist.
func (s *Service) Book(
	ctx context.Context,
	personID int64,
	seatIDs []int64,
	rlKey string,
) (*domain.TicketView, error) {
	const op = "service.booking.Book"

	if len(seatIDs) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSeats)
	}

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: rate limited, retry in %s", op, retry)
		}
	}

	if _, err := s.store.Persons().Get(ctx, personID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPersonNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var view *domain.TicketView

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		seats, session, err := s.validateSeats(ctx, tx, seatIDs, time.Now())
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		discount := Discount(time.Now(), session.Start)

		ticketID, err := s.store.Tickets().With(tx).Create(ctx, personID, discount)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := s.store.Seats().With(tx).ClaimForTicket(ctx, ticketID, seatIDs); err != nil {
			if errors.Is(err, repository.ErrSeatsTaken) {
				return fmt.Errorf("%s: %w", op, ErrAlreadyBooked)
			}

			return fmt.Errorf("%s: %w", op, err)
		}

		ticket, err := s.store.Tickets().With(tx).Get(ctx, ticketID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		movie, err := s.store.Movies().With(tx).Get(ctx, session.MovieID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		for i := range seats {
			seats[i].TicketID = &ticketID
		}

		view = &domain.TicketView{
			Ticket:  *ticket,
			Seats:   seats,
			Session: *session,
			Movie:   *movie,
		}

		after(func(ctx context.Context) {
			s.invalidate(ctx, session.ID)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// Get returns a ticket view to its owner, lazily flipping the missed flag
// first when the derived state says so.
//
// Returns:
//   - error: booking.ErrTicketNotFound when the ticket does not exist.
//   - error: booking.ErrForbidden when the caller does not own the ticket.
func (s *Service) Get(ctx context.Context, personID, id int64) (*domain.TicketView, error) {
	const op = "service.booking.Get"

	ticket, err := s.store.Tickets().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if ticket.PersonID != personID {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	view, err := s.assembleView(ctx, *ticket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return view, nil
}

// ListByPerson returns all of a person's tickets, each with the missed flag
// recomputed on the way out.
func (s *Service) ListByPerson(ctx context.Context, personID int64) ([]domain.TicketView, error) {
	const op = "service.booking.ListByPerson"

	tickets, err := s.store.Tickets().ListByPerson(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	views := make([]domain.TicketView, 0, len(tickets))
	for _, t := range tickets {
		view, err := s.assembleView(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		views = append(views, *view)
	}

	return views, nil
}

// Update patches a ticket. A new seat set goes through the same validation
// pipeline as booking, with the ticket's current seats released first inside
// the same transaction, and the discount recomputed for the target session.
// Paying re-checks that the session has not ended. The missed flag is never
// cleared here.
//
// Returns:
//   - *domain.TicketView: the updated ticket view.
//   - error: booking.ErrTicketNotFound, booking.ErrForbidden, plus the
//     booking pipeline errors when SeatIDs is supplied.
func (s *Service) Update(
	ctx context.Context,
	personID, id int64,
	patch TicketPatch,
) (*domain.TicketView, error) {
	const op = "service.booking.Update"

	var ticket *domain.Ticket

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		// Read under the same transaction that writes, so a missed flag
		// flipped by a concurrent reader is visible to the merge below.
		var err error
		ticket, err = s.store.Tickets().With(tx).Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrTicketNotFound)
			}

			return fmt.Errorf("%s: %w", op, err)
		}

		if ticket.PersonID != personID {
			return fmt.Errorf("%s: %w", op, ErrForbidden)
		}

		now := time.Now()

		currentSeats, err := s.store.Seats().With(tx).ListByTicket(ctx, id)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		var sessionID int64
		if len(currentSeats) > 0 {
			sessionID = currentSeats[0].SessionID
		}

		if patch.SeatIDs != nil {
			if len(patch.SeatIDs) == 0 {
				return fmt.Errorf("%s: %w", op, ErrNoSeats)
			}

			// Release first so the ticket can keep a subset of its own
			// seats; the claim below re-checks availability anyway.
			if _, err := s.store.Seats().With(tx).ReleaseByTicket(ctx, id); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}

			_, session, err := s.validateSeats(ctx, tx, patch.SeatIDs, now)
			if err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}

			if err := s.store.Seats().With(tx).ClaimForTicket(ctx, id, patch.SeatIDs); err != nil {
				if errors.Is(err, repository.ErrSeatsTaken) {
					return fmt.Errorf("%s: %w", op, ErrAlreadyBooked)
				}

				return fmt.Errorf("%s: %w", op, err)
			}

			ticket.Discount = Discount(now, session.Start)

			if session.ID != sessionID {
				prev := sessionID
				after(func(ctx context.Context) {
					if prev != 0 {
						s.invalidate(ctx, prev)
					}
				})
			}

			sessionID = session.ID
		}

		if patch.IsPaid != nil {
			if *patch.IsPaid && sessionID != 0 {
				session, err := s.store.Sessions().With(tx).Get(ctx, sessionID)
				if err != nil {
					return fmt.Errorf("%s: %w", op, err)
				}

				if !now.Before(session.End) {
					return fmt.Errorf("%s: %w", op, ErrSessionEnded)
				}
			}

			ticket.IsPaid = *patch.IsPaid
		}

		if patch.IsVisited != nil {
			ticket.IsVisited = *patch.IsVisited
		}

		if err := s.store.Tickets().With(tx).Update(ctx, *ticket); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		sid := sessionID
		after(func(ctx context.Context) {
			if sid != 0 {
				s.invalidate(ctx, sid)
			}
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	view, err := s.assembleView(ctx, *ticket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return view, nil
}

// Remove deletes a ticket after detaching its seats. Seats are released,
// never deleted, so the hall keeps its inventory.
//
// Returns:
//   - error: booking.ErrTicketNotFound, booking.ErrForbidden.
func (s *Service) Remove(ctx context.Context, personID, id int64) error {
	const op = "service.booking.Remove"

	ticket, err := s.store.Tickets().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrTicketNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if ticket.PersonID != personID {
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	return s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		seats, err := s.store.Seats().With(tx).ListByTicket(ctx, id)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if _, err := s.store.Seats().With(tx).ReleaseByTicket(ctx, id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := s.store.Tickets().With(tx).Delete(ctx, id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if len(seats) > 0 {
			sid := seats[0].SessionID
			after(func(ctx context.Context) {
				s.invalidate(ctx, sid)
			})
		}

		return nil
	})
}

// validateSeats runs the booking checks over a requested seat set: every id
// resolves, none is booked, all share one session, and that session has not
// ended. It returns the resolved seats and their session.
func (s *Service) validateSeats(
	ctx context.Context,
	tx postgresrepo.DB,
	seatIDs []int64,
	now time.Time,
) ([]domain.Seat, *domain.Session, error) {
	seats, err := s.store.Seats().With(tx).GetByIDs(ctx, seatIDs)
	if err != nil {
		return nil, nil, err
	}

	// Count comparison covers missing and duplicated ids alike.
	if len(seats) != len(seatIDs) {
		return nil, nil, ErrSeatsNotFound
	}

	sessionID := seats[0].SessionID
	for _, seat := range seats {
		if seat.Booked() {
			return nil, nil, ErrAlreadyBooked
		}

		if seat.SessionID != sessionID {
			return nil, nil, ErrMixedSessions
		}
	}

	session, err := s.store.Sessions().With(tx).Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	if !now.Before(session.End) {
		return nil, nil, ErrSessionEnded
	}

	return seats, session, nil
}

// assembleView builds the owner-facing projection of a ticket and persists
// a missed-flag flip before returning it. The flip is the only write a read
// path performs, and it is one-way.
func (s *Service) assembleView(ctx context.Context, ticket domain.Ticket) (*domain.TicketView, error) {
	seats, err := s.store.Seats().ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	if len(seats) == 0 {
		return nil, fmt.Errorf("ticket %d has no seats", ticket.ID)
	}

	session, err := s.store.Sessions().Get(ctx, seats[0].SessionID)
	if err != nil {
		return nil, err
	}

	movie, err := s.store.Movies().Get(ctx, session.MovieID)
	if err != nil {
		return nil, err
	}

	if !ticket.IsMissed && DeriveMissed(ticket, *session, time.Now()) {
		if err := s.store.Tickets().MarkMissed(ctx, ticket.ID); err != nil {
			return nil, err
		}

		ticket.IsMissed = true
	}

	return &domain.TicketView{
		Ticket:  ticket,
		Seats:   seats,
		Session: *session,
		Movie:   *movie,
	}, nil
}

func (s *Service) invalidate(ctx context.Context, sessionID int64) {
	_ = s.cache.InvalidateSession(ctx, sessionID)
	_ = s.pubsub.PublishSessionChanged(ctx, sessionID)
}
