package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okarpov/cinehall/internal/domain"
)

type PersonRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *PersonRepo) With(db DB) *PersonRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *PersonRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Get retrieves a person by ID.
//
// Returns:
//   - *domain.Person: the person when found.
//   - error: repository.ErrNotFound if the person is not found.
func (r *PersonRepo) Get(ctx context.Context, id int64) (*domain.Person, error) {
	const op = "postgres.PersonRepo.Get"

	db := r.handle()

	var p domain.Person
	err := db.QueryRow(ctx,
		`SELECT id, name, surname, email
       	 FROM persons WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.Surname, &p.Email)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &p, nil
}

// Create inserts a person row.
//
// Returns:
//   - error: repository.ErrConflict on a duplicate email.
func (r *PersonRepo) Create(ctx context.Context, p domain.Person) (int64, error) {
	const op = "postgres.PersonRepo.Create"

	db := r.handle()

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO persons(name, surname, email)
       	 VALUES ($1, $2, $3)
     	 RETURNING id`,
		p.Name, p.Surname, p.Email,
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

func (r *PersonRepo) Update(ctx context.Context, p domain.Person) error {
	const op = "postgres.PersonRepo.Update"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE persons
        	SET name = $2, surname = $3, email = $4
      	 WHERE id = $1`,
		p.ID, p.Name, p.Surname, p.Email,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, errNoRowsAffected)
	}

	return nil
}

func (r *PersonRepo) Delete(ctx context.Context, id int64) error {
	const op = "postgres.PersonRepo.Delete"

	db := r.handle()

	tag, err := db.Exec(ctx, `DELETE FROM persons WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, errNoRowsAffected)
	}

	return nil
}
