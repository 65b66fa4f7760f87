package seating

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
	store  *postgresrepo.Store
	cache  *redisrepo.Cache
	pubsub *redisrepo.SessionsPubSub
	uow    *uow.UoW
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, pubsub *redisrepo.SessionsPubSub) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		pubsub: pubsub,
		uow:    uow.NewUoW(store),
	}
}

// SeatPatch is a partial seat update. Nil fields keep their stored value.
type SeatPatch struct {
	Number *int
	Row    *int
	Price  *float64
}

// checkExisting scans the session's seats for a (number, row) collision.
// Sessions are small fixed halls, the linear scan is fine. The DB unique
// index backs this up for the concurrent case.
func checkExisting(seats []domain.Seat, number, row int, selfID int64) error {
	for _, seat := range seats {
		if seat.ID == selfID {
			continue
		}

		if seat.Number == number && seat.Row == row {
			return ErrDuplicateSeat
		}
	}

	return nil
}

// Create adds a seat to a session.
//
// Returns:
//   - *domain.Seat: the created seat.
//   - error: seating.ErrSessionNotFound when the session does not exist.
//   - error: seating.ErrDuplicateSeat when (number, row) is taken in the
//     session.
func (s *Service) Create(
	ctx context.Context,
	sessionID int64,
	number, row int,
	price float64,
) (*domain.Seat, error) {
	const op = "service.seating.Create"

	if _, err := s.store.Sessions().Get(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	existing, err := s.store.Seats().ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := checkExisting(existing, number, row, 0); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	seat := domain.Seat{
		SessionID: sessionID,
		Price:     price,
		Number:    number,
		Row:       row,
	}

	id, err := s.store.Seats().Create(ctx, seat)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicateSeat)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	seat.ID = id

	s.invalidate(ctx, sessionID)

	return &seat, nil
}

// GenerateDefault populates a session with the standard hall layout inside
// one transaction. Any insert failure, including a collision with seats
// created beforehand, rolls the whole layout back; a partial grid is never
// left behind.
//
// Returns:
//   - []domain.Seat: exactly the generated seats, ids filled in. Seats the
//     session already had are not included.
//   - error: seating.ErrSessionNotFound when the session does not exist.
//   - error: seating.ErrGenerateFailed when any seat insert fails.
func (s *Service) GenerateDefault(ctx context.Context, sessionID int64, price float64) ([]domain.Seat, error) {
	const op = "service.seating.GenerateDefault"

	if _, err := s.store.Sessions().Get(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	seats := DefaultLayout(sessionID, price)

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		ids, err := s.store.Seats().With(tx).BatchCreate(ctx, seats)
		if err != nil {
			return fmt.Errorf("%s: %w: %w", op, ErrGenerateFailed, err)
		}

		for i := range seats {
			seats[i].ID = ids[i]
		}

		after(func(ctx context.Context) {
			s.invalidate(ctx, sessionID)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return seats, nil
}

// SessionSeats lists all seats of a session; a seat with a non-nil ticket
// reference is booked.
//
// Returns:
//   - error: seating.ErrSessionNotFound when the session does not exist.
func (s *Service) SessionSeats(ctx context.Context, sessionID int64) ([]domain.Seat, error) {
	const op = "service.seating.SessionSeats"

	if _, err := s.store.Sessions().Get(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	seats, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeySessionSeatMap(sessionID),
		15*time.Second,
		func(ctx context.Context) ([]domain.Seat, error) {
			return s.store.Seats().ListBySession(ctx, sessionID)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return seats, nil
}

// Update applies a partial seat patch, re-checking the duplicate constraint
// against the seat's session with the merged values.
//
// Returns:
//   - *domain.Seat: the updated seat.
//   - error: seating.ErrSeatNotFound when the seat does not exist.
//   - error: seating.ErrDuplicateSeat when the merged (number, row) is taken.
func (s *Service) Update(ctx context.Context, id int64, patch SeatPatch) (*domain.Seat, error) {
	const op = "service.seating.Update"

	seat, err := s.store.Seats().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrSeatNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if patch.Number != nil {
		seat.Number = *patch.Number
	}

	if patch.Row != nil {
		seat.Row = *patch.Row
	}

	if patch.Price != nil {
		seat.Price = *patch.Price
	}

	existing, err := s.store.Seats().ListBySession(ctx, seat.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := checkExisting(existing, seat.Number, seat.Row, seat.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.Seats().Update(ctx, *seat); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicateSeat)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, seat.SessionID)

	return seat, nil
}

// Remove deletes a seat unless a ticket references it. The check and the
// delete are one conditional statement in the store, so a concurrent
// booking either lands before the delete (which then fails) or after it
// never sees the seat.
//
// Returns:
//   - error: seating.ErrSeatNotFound when the seat does not exist.
//   - error: seating.ErrSeatHasTicket when the seat is booked.
func (s *Service) Remove(ctx context.Context, id int64) error {
	const op = "service.seating.Remove"

	seat, err := s.store.Seats().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrSeatNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.Seats().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSeatTicketed) {
			return fmt.Errorf("%s: %w", op, ErrSeatHasTicket)
		}

		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrSeatNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, seat.SessionID)

	return nil
}

func (s *Service) invalidate(ctx context.Context, sessionID int64) {
	_ = s.cache.InvalidateSession(ctx, sessionID)
	_ = s.pubsub.PublishSessionChanged(ctx, sessionID)
}
