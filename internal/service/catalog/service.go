package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okarpov/cinehall/internal/domain"
	"github.com/okarpov/cinehall/internal/repository"
	postgresrepo "github.com/okarpov/cinehall/internal/repository/postgres"
)

// Service is the thin CRUD boundary over the catalog collaborators the
// booking core consumes: movies and persons. Ratings are owned by the
// rating service and are not writable here.
type Service struct {
	store *postgresrepo.Store
}

func New(store *postgresrepo.Store) *Service {
	return &Service{store: store}
}

type MoviePatch struct {
	Title  *string
	Author *string
	Start  *time.Time
}

type PersonPatch struct {
	Name    *string
	Surname *string
	Email   *string
}

func (s *Service) GetMovie(ctx context.Context, id int64) (*domain.Movie, error) {
	const op = "service.catalog.GetMovie"

	m, err := s.store.Movies().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrMovieNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return m, nil
}

func (s *Service) ListMovies(ctx context.Context, limit, offset int) ([]domain.Movie, error) {
	const op = "service.catalog.ListMovies"

	if limit <= 0 {
		limit = 50
	}

	movies, err := s.store.Movies().List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return movies, nil
}

func (s *Service) CreateMovie(ctx context.Context, m domain.Movie) (*domain.Movie, error) {
	const op = "service.catalog.CreateMovie"

	id, err := s.store.Movies().Create(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m.ID = id
	m.Rating = nil

	return &m, nil
}

func (s *Service) UpdateMovie(ctx context.Context, id int64, patch MoviePatch) (*domain.Movie, error) {
	const op = "service.catalog.UpdateMovie"

	m, err := s.store.Movies().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrMovieNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if patch.Title != nil {
		m.Title = *patch.Title
	}

	if patch.Author != nil {
		m.Author = *patch.Author
	}

	if patch.Start != nil {
		m.Start = patch.Start
	}

	if err := s.store.Movies().Update(ctx, *m); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return m, nil
}

func (s *Service) RemoveMovie(ctx context.Context, id int64) error {
	const op = "service.catalog.RemoveMovie"

	if err := s.store.Movies().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrMovieNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) GetPerson(ctx context.Context, id int64) (*domain.Person, error) {
	const op = "service.catalog.GetPerson"

	p, err := s.store.Persons().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPersonNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

func (s *Service) CreatePerson(ctx context.Context, p domain.Person) (*domain.Person, error) {
	const op = "service.catalog.CreatePerson"

	id, err := s.store.Persons().Create(ctx, p)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p.ID = id

	return &p, nil
}

func (s *Service) UpdatePerson(ctx context.Context, id int64, patch PersonPatch) (*domain.Person, error) {
	const op = "service.catalog.UpdatePerson"

	p, err := s.store.Persons().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPersonNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}

	if patch.Surname != nil {
		p.Surname = *patch.Surname
	}

	if patch.Email != nil {
		p.Email = *patch.Email
	}

	if err := s.store.Persons().Update(ctx, *p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

func (s *Service) RemovePerson(ctx context.Context, id int64) error {
	const op = "service.catalog.RemovePerson"

	if err := s.store.Persons().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrPersonNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
