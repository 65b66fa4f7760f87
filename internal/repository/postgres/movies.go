package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okarpov/cinehall/internal/domain"
)

type MovieRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *MovieRepo) With(db DB) *MovieRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *MovieRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Get retrieves a movie by its ID.
//
// Returns:
//   - *domain.Movie: the movie when found.
//   - error: repository.ErrNotFound if the movie is not found.
func (r *MovieRepo) Get(ctx context.Context, id int64) (*domain.Movie, error) {
	const op = "postgres.MovieRepo.Get"

	db := r.handle()

	var m domain.Movie
	err := db.QueryRow(ctx,
		`SELECT id, title, author, rating, starts_at
       	 FROM movies WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.Title, &m.Author, &m.Rating, &m.Start)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &m, nil
}

func (r *MovieRepo) List(ctx context.Context, limit, offset int) ([]domain.Movie, error) {
	const op = "postgres.MovieRepo.List"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, title, author, rating, starts_at
       	 FROM movies
       	 ORDER BY id
       	 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Movie
	for rows.Next() {
		var m domain.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Author, &m.Rating, &m.Start); err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *MovieRepo) Create(ctx context.Context, m domain.Movie) (int64, error) {
	const op = "postgres.MovieRepo.Create"

	db := r.handle()

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO movies(title, author, starts_at)
       	 VALUES ($1, $2, $3)
     	 RETURNING id`,
		m.Title, m.Author, m.Start,
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

func (r *MovieRepo) Update(ctx context.Context, m domain.Movie) error {
	const op = "postgres.MovieRepo.Update"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE movies
        	SET title = $2, author = $3, starts_at = $4
      	 WHERE id = $1`,
		m.ID, m.Title, m.Author, m.Start,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, errNoRowsAffected)
	}

	return nil
}

func (r *MovieRepo) Delete(ctx context.Context, id int64) error {
	const op = "postgres.MovieRepo.Delete"

	db := r.handle()

	tag, err := db.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, errNoRowsAffected)
	}

	return nil
}

// SetRating persists a derived rating value. A nil rating clears the column,
// which is the state of a movie with no reviews left.
func (r *MovieRepo) SetRating(ctx context.Context, id int64, rating *float64) error {
	const op = "postgres.MovieRepo.SetRating"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE movies SET rating = $2 WHERE id = $1`,
		id, rating,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, errNoRowsAffected)
	}

	return nil
}

// RatingStats returns the arithmetic mean of the movie's review ratings and
// the number of reviews. The mean is unrounded; callers decide the precision.
func (r *MovieRepo) RatingStats(ctx context.Context, id int64) (float64, int64, error) {
	const op = "postgres.MovieRepo.RatingStats"

	db := r.handle()

	var sum float64
	var count int64
	err := db.QueryRow(ctx,
		`SELECT COALESCE(SUM(rating), 0), COUNT(*)
       	 FROM reviews WHERE movie_id = $1`,
		id,
	).Scan(&sum, &count)
	if err != nil {
		return 0, 0, wrapDBErr(op, err)
	}

	if count == 0 {
		return 0, 0, nil
	}

	return sum / float64(count), count, nil
}
