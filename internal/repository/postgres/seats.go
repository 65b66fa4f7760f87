package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okarpov/cinehall/internal/domain"
	"github.com/okarpov/cinehall/internal/repository"
)

type SeatRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *SeatRepo) With(db DB) *SeatRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *SeatRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const seatColumns = `id, session_id, ticket_id, price, number, "row"`

func scanSeat(row pgx.Row, s *domain.Seat) error {
	return row.Scan(&s.ID, &s.SessionID, &s.TicketID, &s.Price, &s.Number, &s.Row)
}

// Get retrieves a seat by its ID.
//
// Returns:
//   - *domain.Seat: the seat when found.
//   - error: repository.ErrNotFound if the seat is not found.
func (r *SeatRepo) Get(ctx context.Context, id int64) (*domain.Seat, error) {
	const op = "postgres.SeatRepo.Get"

	db := r.handle()

	var s domain.Seat
	err := scanSeat(db.QueryRow(ctx,
		`SELECT `+seatColumns+` FROM seats WHERE id = $1`, id), &s)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &s, nil
}

// GetByIDs resolves a set of seat IDs. Missing or duplicated IDs simply
// shrink the result; callers compare lengths.
func (r *SeatRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Seat, error) {
	const op = "postgres.SeatRepo.GetByIDs"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT `+seatColumns+` FROM seats WHERE id = ANY($1) ORDER BY id`,
		ids,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Seat
	for rows.Next() {
		var s domain.Seat
		if err := rows.Scan(&s.ID, &s.SessionID, &s.TicketID, &s.Price, &s.Number, &s.Row); err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// ListBySession lists all seats of a session, ticket references included.
func (r *SeatRepo) ListBySession(ctx context.Context, sessionID int64) ([]domain.Seat, error) {
	const op = "postgres.SeatRepo.ListBySession"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT `+seatColumns+`
       	 FROM seats
      	 WHERE session_id = $1
      	 ORDER BY "row", number`,
		sessionID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Seat
	for rows.Next() {
		var s domain.Seat
		if err := rows.Scan(&s.ID, &s.SessionID, &s.TicketID, &s.Price, &s.Number, &s.Row); err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// ListByTicket lists the seats linked to a ticket.
func (r *SeatRepo) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Seat, error) {
	const op = "postgres.SeatRepo.ListByTicket"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT `+seatColumns+`
       	 FROM seats
      	 WHERE ticket_id = $1
      	 ORDER BY "row", number`,
		ticketID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Seat
	for rows.Next() {
		var s domain.Seat
		if err := rows.Scan(&s.ID, &s.SessionID, &s.TicketID, &s.Price, &s.Number, &s.Row); err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// Create inserts a single seat.
//
// Returns:
//   - error: repository.ErrConflict when (session, number, row) already exists.
func (r *SeatRepo) Create(ctx context.Context, s domain.Seat) (int64, error) {
	const op = "postgres.SeatRepo.Create"

	db := r.handle()

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO seats(session_id, price, number, "row")
       	 VALUES ($1, $2, $3, $4)
     	 RETURNING id`,
		s.SessionID, s.Price, s.Number, s.Row,
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

// BatchCreate inserts a batch of seats in one round trip and returns the
// generated ids, in input order. A single failed insert fails the whole
// batch, which inside a transaction rolls every row back.
func (r *SeatRepo) BatchCreate(ctx context.Context, seats []domain.Seat) ([]int64, error) {
	const op = "postgres.SeatRepo.BatchCreate"

	db := r.handle()

	batch := &pgx.Batch{}
	for _, s := range seats {
		batch.Queue(
			`INSERT INTO seats(session_id, price, number, "row")
         	 VALUES ($1, $2, $3, $4)
         	 RETURNING id`,
			s.SessionID, s.Price, s.Number, s.Row,
		)
	}

	br := db.SendBatch(ctx, batch)

	ids := make([]int64, 0, len(seats))
	for range seats {
		var id int64
		if err := br.QueryRow().Scan(&id); err != nil {
			_ = br.Close()
			return nil, wrapDBErr(op, err)
		}

		ids = append(ids, id)
	}
	if err := br.Close(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return ids, nil
}

func (r *SeatRepo) Update(ctx context.Context, s domain.Seat) error {
	const op = "postgres.SeatRepo.Update"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE seats SET price = $2, number = $3, "row" = $4 WHERE id = $1`,
		s.ID, s.Price, s.Number, s.Row,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, errNoRowsAffected)
	}

	return nil
}

// Delete removes a seat, refusing when a ticket still references it. The
// ticket check and the delete are a single conditional statement so a
// concurrent booking cannot slip between them.
//
// Returns:
//   - error: repository.ErrSeatTicketed when the seat is booked.
//   - error: repository.ErrNotFound when the seat does not exist.
func (r *SeatRepo) Delete(ctx context.Context, id int64) error {
	const op = "postgres.SeatRepo.Delete"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`DELETE FROM seats WHERE id = $1 AND ticket_id IS NULL`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM seats WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return wrapDBErr(op, err)
		}

		if exists {
			return wrapDBErr(op, repository.ErrSeatTicketed)
		}

		return wrapDBErr(op, errNoRowsAffected)
	}

	return nil
}

// ClaimForTicket links the given seats to a ticket, but only those that are
// still unclaimed. The rows-affected count is compared against the request
// so two concurrent bookings of the same seat cannot both succeed: the
// second one claims fewer rows than it asked for and the caller rolls back.
//
// Returns:
//   - error: repository.ErrSeatsTaken when any requested seat was already
//     claimed.
func (r *SeatRepo) ClaimForTicket(ctx context.Context, ticketID int64, seatIDs []int64) error {
	const op = "postgres.SeatRepo.ClaimForTicket"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE seats
        	SET ticket_id = $1
      	 WHERE id = ANY($2)
        	AND ticket_id IS NULL`,
		ticketID, seatIDs,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if int(tag.RowsAffected()) != len(seatIDs) {
		return wrapDBErr(op, repository.ErrSeatsTaken)
	}

	return nil
}

// ReleaseByTicket nulls the ticket reference of every seat the ticket holds.
// Seat rows themselves are kept.
func (r *SeatRepo) ReleaseByTicket(ctx context.Context, ticketID int64) (int64, error) {
	const op = "postgres.SeatRepo.ReleaseByTicket"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE seats SET ticket_id = NULL WHERE ticket_id = $1`,
		ticketID,
	)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return tag.RowsAffected(), nil
}
