package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okarpov/cinehall/internal/domain"
)

type TicketRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *TicketRepo) With(db DB) *TicketRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *TicketRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Get retrieves a ticket by its ID.
//
// Returns:
//   - *domain.Ticket: the ticket when found.
//   - error: repository.ErrNotFound if the ticket is not found.
func (r *TicketRepo) Get(ctx context.Context, id int64) (*domain.Ticket, error) {
	const op = "postgres.TicketRepo.Get"

	db := r.handle()

	var t domain.Ticket
	err := db.QueryRow(ctx,
		`SELECT id, person_id, is_paid, is_visited, is_missed, discount, created_at
       	 FROM tickets WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.PersonID, &t.IsPaid, &t.IsVisited, &t.IsMissed, &t.Discount, &t.CreatedAt)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &t, nil
}

func (r *TicketRepo) ListByPerson(ctx context.Context, personID int64) ([]domain.Ticket, error) {
	const op = "postgres.TicketRepo.ListByPerson"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, person_id, is_paid, is_visited, is_missed, discount, created_at
       	 FROM tickets
      	 WHERE person_id = $1
      	 ORDER BY created_at`,
		personID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(
			&t.ID,
			&t.PersonID,
			&t.IsPaid,
			&t.IsVisited,
			&t.IsMissed,
			&t.Discount,
			&t.CreatedAt,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// Create inserts a ticket row in its initial state: unpaid, unvisited,
// unmissed.
func (r *TicketRepo) Create(ctx context.Context, personID int64, discount int) (int64, error) {
	const op = "postgres.TicketRepo.Create"

	db := r.handle()

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO tickets(person_id, discount)
       	 VALUES ($1, $2)
     	 RETURNING id`,
		personID, discount,
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

// Update writes the mutable ticket fields. is_missed merges with OR in the
// statement itself, so a flag flipped by a concurrent reader survives even
// a write from a stale struct; the flag stays one-way.
func (r *TicketRepo) Update(ctx context.Context, t domain.Ticket) error {
	const op = "postgres.TicketRepo.Update"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE tickets
        	SET is_paid = $2, is_visited = $3, is_missed = (is_missed OR $4), discount = $5
      	 WHERE id = $1`,
		t.ID, t.IsPaid, t.IsVisited, t.IsMissed, t.Discount,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, errNoRowsAffected)
	}

	return nil
}

// MarkMissed flips is_missed to true. The flag is one-way; there is no
// companion that clears it.
func (r *TicketRepo) MarkMissed(ctx context.Context, id int64) error {
	const op = "postgres.TicketRepo.MarkMissed"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE tickets SET is_missed = TRUE WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, errNoRowsAffected)
	}

	return nil
}

func (r *TicketRepo) Delete(ctx context.Context, id int64) error {
	const op = "postgres.TicketRepo.Delete"

	db := r.handle()

	tag, err := db.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, errNoRowsAffected)
	}

	return nil
}
