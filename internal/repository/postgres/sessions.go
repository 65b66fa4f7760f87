package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okarpov/cinehall/internal/domain"
	"github.com/okarpov/cinehall/internal/repository"
)

type SessionRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *SessionRepo) With(db DB) *SessionRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *SessionRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Get retrieves a session by its ID.
//
// Returns:
//   - *domain.Session: the session when found.
//   - error: repository.ErrNotFound if the session is not found.
func (r *SessionRepo) Get(ctx context.Context, id int64) (*domain.Session, error) {
	const op = "postgres.SessionRepo.Get"

	db := r.handle()

	var s domain.Session
	err := db.QueryRow(ctx,
		`SELECT id, movie_id, starts_at, ends_at, format
       	 FROM sessions WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.MovieID, &s.Start, &s.End, &s.Format)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &s, nil
}

func (r *SessionRepo) Create(ctx context.Context, s domain.Session) (int64, error) {
	const op = "postgres.SessionRepo.Create"

	db := r.handle()

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO sessions(movie_id, starts_at, ends_at, format)
       	 VALUES ($1, $2, $3, $4)
     	 RETURNING id`,
		s.MovieID, s.Start, s.End, s.Format,
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

func (r *SessionRepo) UpdateWindow(ctx context.Context, id int64, start, end time.Time) error {
	const op = "postgres.SessionRepo.UpdateWindow"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE sessions SET starts_at = $2, ends_at = $3 WHERE id = $1`,
		id, start, end,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, errNoRowsAffected)
	}

	return nil
}

// ListByMovie lists a movie's sessions with the count of seats that still
// have no ticket attached.
func (r *SessionRepo) ListByMovie(ctx context.Context, movieID int64) ([]domain.SessionWithAvailability, error) {
	const op = "postgres.SessionRepo.ListByMovie"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT s.id, s.movie_id, s.starts_at, s.ends_at, s.format,
        	 	COALESCE(SUM(CASE WHEN st.ticket_id IS NULL AND st.id IS NOT NULL THEN 1 ELSE 0 END), 0)
       	 FROM sessions s
       	 LEFT JOIN seats st ON st.session_id = s.id
      	 WHERE s.movie_id = $1
      	 GROUP BY s.id
      	 ORDER BY s.starts_at`,
		movieID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.SessionWithAvailability
	for rows.Next() {
		var sa domain.SessionWithAvailability
		if err := rows.Scan(
			&sa.ID,
			&sa.MovieID,
			&sa.Start,
			&sa.End,
			&sa.Format,
			&sa.AvailableSeats,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, sa)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// HasTicketedSeats reports whether any seat of the session is linked to a
// ticket. Run it inside the same transaction as the delete that depends on
// it, otherwise the answer can go stale against a concurrent booking.
func (r *SessionRepo) HasTicketedSeats(ctx context.Context, id int64) (bool, error) {
	const op = "postgres.SessionRepo.HasTicketedSeats"

	db := r.handle()

	var ticketed bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (
        	SELECT 1 FROM seats
         	WHERE session_id = $1 AND ticket_id IS NOT NULL
     	 )`,
		id,
	).Scan(&ticketed)
	if err != nil {
		return false, wrapDBErr(op, err)
	}

	return ticketed, nil
}

// Delete removes the session and cascades its seat rows. The ticketed-seats
// check is repeated here so the delete aborts even if a booking slipped in
// after the service-level check.
func (r *SessionRepo) Delete(ctx context.Context, id int64) error {
	const op = "postgres.SessionRepo.Delete"

	db := r.handle()

	ticketed, err := r.HasTicketedSeats(ctx, id)
	if err != nil {
		return err
	}

	if ticketed {
		return wrapDBErr(op, repository.ErrSeatTicketed)
	}

	if _, err := db.Exec(ctx, `DELETE FROM seats WHERE session_id = $1`, id); err != nil {
		return wrapDBErr(op, err)
	}

	tag, err := db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, errNoRowsAffected)
	}

	return nil
}
