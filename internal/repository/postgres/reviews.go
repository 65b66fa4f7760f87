package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okarpov/cinehall/internal/domain"
)

type ReviewRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *ReviewRepo) With(db DB) *ReviewRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ReviewRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Get retrieves a review by its ID.
//
// Returns:
//   - *domain.Review: the review when found.
//   - error: repository.ErrNotFound if the review is not found.
func (r *ReviewRepo) Get(ctx context.Context, id int64) (*domain.Review, error) {
	const op = "postgres.ReviewRepo.Get"

	db := r.handle()

	var rv domain.Review
	err := db.QueryRow(ctx,
		`SELECT id, movie_id, author, description, rating
       	 FROM reviews WHERE id = $1`,
		id,
	).Scan(&rv.ID, &rv.MovieID, &rv.Author, &rv.Description, &rv.Rating)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &rv, nil
}

func (r *ReviewRepo) ListByMovie(ctx context.Context, movieID int64) ([]domain.Review, error) {
	const op = "postgres.ReviewRepo.ListByMovie"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, movie_id, author, description, rating
       	 FROM reviews
      	 WHERE movie_id = $1
      	 ORDER BY id`,
		movieID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.MovieID, &rv.Author, &rv.Description, &rv.Rating); err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *ReviewRepo) Create(ctx context.Context, rv domain.Review) (int64, error) {
	const op = "postgres.ReviewRepo.Create"

	db := r.handle()

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO reviews(movie_id, author, description, rating)
       	 VALUES ($1, $2, $3, $4)
     	 RETURNING id`,
		rv.MovieID, rv.Author, rv.Description, rv.Rating,
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

func (r *ReviewRepo) Update(ctx context.Context, rv domain.Review) error {
	const op = "postgres.ReviewRepo.Update"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE reviews
        	SET author = $2, description = $3, rating = $4
      	 WHERE id = $1`,
		rv.ID, rv.Author, rv.Description, rv.Rating,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, errNoRowsAffected)
	}

	return nil
}

func (r *ReviewRepo) Delete(ctx context.Context, id int64) error {
	const op = "postgres.ReviewRepo.Delete"

	db := r.handle()

	tag, err := db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, errNoRowsAffected)
	}

	return nil
}
