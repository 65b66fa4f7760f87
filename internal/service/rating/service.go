package rating

import (
	"context"
	"errors"
	"fmt"

	"github.com/okarpov/cinehall/internal/domain"
	"github.com/okarpov/cinehall/internal/repository"
	postgresrepo "github.com/okarpov/cinehall/internal/repository/postgres"
	"github.com/okarpov/cinehall/internal/uow"
)

// Service keeps every movie's rating equal to the rounded mean of its
// review ratings. Each review mutation and the rating recompute it triggers
// share one transaction: either both land or neither does.
type Service struct {
	store *postgresrepo.Store
	uow   *uow.UoW
}

func New(store *postgresrepo.Store) *Service {
	return &Service{
		store: store,
		uow:   uow.NewUoW(store),
	}
}

// ReviewPatch is a partial review update. Nil fields keep their stored
// value; the movie rating is recomputed only when Rating is set.
type ReviewPatch struct {
	Author      *string
	Description *string
	Rating      *float64
}

// CreateReview persists a review and recomputes the movie's rating in one
// transaction.
//
// Returns:
//   - *domain.Review: the created review.
//   - error: rating.ErrMovieNotFound when the movie does not exist.
func (s *Service) CreateReview(ctx context.Context, movieID int64, rv domain.Review) (*domain.Review, error) {
	const op = "service.rating.CreateReview"

	if _, err := s.store.Movies().Get(ctx, movieID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrMovieNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rv.MovieID = movieID

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		id, err := s.store.Reviews().With(tx).Create(ctx, rv)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		rv.ID = id

		if err := s.recompute(ctx, tx, movieID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &rv, nil
}

// Get retrieves a review.
//
// Returns:
//   - error: rating.ErrReviewNotFound when the review does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Review, error) {
	const op = "service.rating.Get"

	rv, err := s.store.Reviews().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrReviewNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rv, nil
}

// MovieReviews lists a movie's reviews.
//
// Returns:
//   - error: rating.ErrMovieNotFound when the movie does not exist.
func (s *Service) MovieReviews(ctx context.Context, movieID int64) ([]domain.Review, error) {
	const op = "service.rating.MovieReviews"

	if _, err := s.store.Movies().Get(ctx, movieID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrMovieNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reviews, err := s.store.Reviews().ListByMovie(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return reviews, nil
}

// UpdateReview patches a review; when the rating changes, the movie rating
// is recomputed in the same transaction.
//
// Returns:
//   - *domain.Review: the updated review.
//   - error: rating.ErrReviewNotFound when the review does not exist.
func (s *Service) UpdateReview(ctx context.Context, id int64, patch ReviewPatch) (*domain.Review, error) {
	const op = "service.rating.UpdateReview"

	rv, err := s.store.Reviews().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrReviewNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if patch.Author != nil {
		rv.Author = *patch.Author
	}

	if patch.Description != nil {
		rv.Description = *patch.Description
	}

	if patch.Rating != nil {
		rv.Rating = *patch.Rating
	}

	err = s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := s.store.Reviews().With(tx).Update(ctx, *rv); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if patch.Rating != nil {
			if err := s.recompute(ctx, tx, rv.MovieID); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return rv, nil
}

// RemoveReview deletes a review and recomputes the movie rating over the
// remaining reviews in one transaction. Deleting the last review clears the
// rating.
//
// Returns:
//   - error: rating.ErrReviewNotFound when the review does not exist.
func (s *Service) RemoveReview(ctx context.Context, id int64) error {
	const op = "service.rating.RemoveReview"

	rv, err := s.store.Reviews().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrReviewNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := s.store.Reviews().With(tx).Delete(ctx, id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := s.recompute(ctx, tx, rv.MovieID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		return nil
	})
}

// recompute refreshes the movie's rating from its current reviews. Zero
// reviews clear the rating to NULL; there is no division in that path.
func (s *Service) recompute(ctx context.Context, tx postgresrepo.DB, movieID int64) error {
	mean, count, err := s.store.Movies().With(tx).RatingStats(ctx, movieID)
	if err != nil {
		return err
	}

	var value *float64
	if count > 0 {
		rounded := RoundRating(mean)
		value = &rounded
	}

	return s.store.Movies().With(tx).SetRating(ctx, movieID, value)
}
