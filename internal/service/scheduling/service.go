package scheduling

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

// WindowPatch is a partial update of a session's time window. Nil fields
// keep their stored value.
type WindowPatch struct {
	Start *time.Time
	End   *time.Time
}

func (p WindowPatch) isEmpty() bool { return p.Start == nil && p.End == nil }

// mergeWindow overlays the patch on the stored window. The merged window is
// what gets validated: both-supplied, start-only and end-only patches are
// each checked against the correct counterpart.
func mergeWindow(current domain.Session, p WindowPatch) (start, end time.Time) {
	start, end = current.Start, current.End

	if p.Start != nil {
		start = *p.Start
	}

	if p.End != nil {
		end = *p.End
	}

	return start, end
}

// validateWindow enforces start < end for the session window and, when the
// movie has a scheduled start, start >= movie.Start.
func validateWindow(start, end time.Time, movieStart *time.Time) error {
	if !start.Before(end) {
		return ErrInvalidRange
	}

	if movieStart != nil && start.Before(*movieStart) {
		return ErrInvalidStart
	}

	return nil
}

// Create validates and persists a session against its movie.
//
// Returns:
//   - *domain.Session: the created session.
//   - error: scheduling.ErrInvalidRange when start >= end.
//   - error: scheduling.ErrMovieNotFound when the movie does not exist.
//   - error: scheduling.ErrInvalidStart when the session starts before the
//     movie's scheduled start.
func (s *Service) Create(
	ctx context.Context,
	movieID int64,
	start, end time.Time,
	format string,
) (*domain.Session, error) {
	const op = "service.scheduling.Create"

	if !start.Before(end) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRange)
	}

	movie, err := s.store.Movies().Get(ctx, movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrMovieNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validateWindow(start, end, movie.Start); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	session := domain.Session{
		MovieID: movieID,
		Start:   start,
		End:     end,
		Format:  format,
	}

	id, err := s.store.Sessions().Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	session.ID = id

	_ = s.cache.Del(ctx, redisrepo.KeyMovieSessions(movieID))

	return &session, nil
}

// Get retrieves a session.
//
// Returns:
//   - error: scheduling.ErrSessionNotFound when the session does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Session, error) {
	const op = "service.scheduling.Get"

	session, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeySessionSummary(id),
		time.Minute,
		func(ctx context.Context) (domain.Session, error) {
			sess, err := s.store.Sessions().Get(ctx, id)
			if err != nil {
				return domain.Session{}, err
			}

			return *sess, nil
		},
	)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &session, nil
}

// MovieSessions lists a movie's sessions with available-seat counts,
// optionally narrowed to the sessions starting on the given calendar day.
func (s *Service) MovieSessions(
	ctx context.Context,
	movieID int64,
	day *time.Time,
) ([]domain.SessionWithAvailability, error) {
	const op = "service.scheduling.MovieSessions"

	if _, err := s.store.Movies().Get(ctx, movieID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrMovieNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Availability counts drift as bookings land; a short TTL keeps the
	// listing fresh enough without a per-booking invalidation fan-out.
	sessions, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyMovieSessions(movieID),
		15*time.Second,
		func(ctx context.Context) ([]domain.SessionWithAvailability, error) {
			return s.store.Sessions().ListByMovie(ctx, movieID)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if day == nil {
		return sessions, nil
	}

	filtered := make([]domain.SessionWithAvailability, 0, len(sessions))
	for _, sess := range sessions {
		if onDay(sess.Start, *day) {
			filtered = append(filtered, sess)
		}
	}

	return filtered, nil
}

// onDay reports whether t falls on the given calendar day. t is converted
// into the day's location first, so a session stored in another zone does
// not drift across midnight during the comparison.
func onDay(t, day time.Time) bool {
	y, m, d := day.Date()
	ty, tm, td := t.In(day.Location()).Date()

	return ty == y && tm == m && td == d
}

// Update applies a partial window patch, re-validating the effective range.
// A start change is additionally re-validated against the movie's start.
//
// Returns:
//   - *domain.Session: the session with the updated window.
//   - error: scheduling.ErrSessionNotFound when the session does not exist.
//   - error: scheduling.ErrInvalidRange when the merged window is inverted
//     or empty.
//   - error: scheduling.ErrInvalidStart when the new start predates the
//     movie's scheduled start.
func (s *Service) Update(ctx context.Context, id int64, patch WindowPatch) (*domain.Session, error) {
	const op = "service.scheduling.Update"

	session, err := s.store.Sessions().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if patch.isEmpty() {
		return session, nil
	}

	start, end := mergeWindow(*session, patch)

	var movieStart *time.Time
	if patch.Start != nil {
		movie, err := s.store.Movies().Get(ctx, session.MovieID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		movieStart = movie.Start
	}

	if err := validateWindow(start, end, movieStart); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.Sessions().UpdateWindow(ctx, id, start, end); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	session.Start = start
	session.End = end

	_ = s.cache.InvalidateSession(ctx, id)
	_ = s.cache.Del(ctx, redisrepo.KeyMovieSessions(session.MovieID))
	_ = s.pubsub.PublishSessionChanged(ctx, id)

	return session, nil
}

// Remove deletes a session and its seats. A session with any ticketed seat
// is kept; the check runs inside the delete transaction so a concurrent
// booking cannot invalidate it.
//
// Returns:
//   - error: scheduling.ErrSessionNotFound when the session does not exist.
//   - error: scheduling.ErrHasTicketedSeats when any seat of the session is
//     booked.
func (s *Service) Remove(ctx context.Context, id int64) error {
	const op = "service.scheduling.Remove"

	session, err := s.store.Sessions().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := s.store.Sessions().With(tx).Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrSeatTicketed) {
				return fmt.Errorf("%s: %w", op, ErrHasTicketedSeats)
			}

			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrSessionNotFound)
			}

			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateSession(ctx, id)
			_ = s.cache.Del(ctx, redisrepo.KeyMovieSessions(session.MovieID))
			_ = s.pubsub.PublishSessionChanged(ctx, id)
		})

		return nil
	})

	return err
}
