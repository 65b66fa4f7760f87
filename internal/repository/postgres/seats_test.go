package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okarpov/cinehall/internal/domain"
	"github.com/okarpov/cinehall/internal/repository"
)

// scriptedDB satisfies DB without a live connection: it records every
// statement and plays back canned results, which is enough to exercise the
// repository-side contracts (rows-affected checks, statement shape, batch
// id collection) that otherwise only show up under concurrent load.
type scriptedDB struct {
	sql  []string
	args [][]any

	execTag pgconn.CommandTag
	execErr error

	batch *scriptedBatchResults
}

func (d *scriptedDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.sql = append(d.sql, sql)
	d.args = append(d.args, args)
	return d.execTag, d.execErr
}

func (d *scriptedDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	d.sql = append(d.sql, sql)
	return nil, pgx.ErrNoRows
}

func (d *scriptedDB) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	d.sql = append(d.sql, sql)
	return scanErrRow{}
}

func (d *scriptedDB) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	d.batch.queued = b.Len()
	return d.batch
}

type scanErrRow struct{}

func (scanErrRow) Scan(...any) error { return pgx.ErrNoRows }

// scriptedBatchResults hands out sequential ids, one per QueryRow call.
type scriptedBatchResults struct {
	next   int64
	queued int
}

func (b *scriptedBatchResults) Exec() (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (b *scriptedBatchResults) Query() (pgx.Rows, error) { return nil, nil }

func (b *scriptedBatchResults) QueryRow() pgx.Row {
	b.next++
	return idRow{id: b.next}
}

func (b *scriptedBatchResults) Close() error { return nil }

type idRow struct{ id int64 }

func (r idRow) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.id
	return nil
}

func TestSeatRepoClaimForTicket(t *testing.T) {
	ctx := context.Background()
	seatIDs := []int64{10, 11, 12}

	t.Run("claiming every requested seat succeeds", func(t *testing.T) {
		db := &scriptedDB{execTag: pgconn.NewCommandTag("UPDATE 3")}
		repo := (&SeatRepo{}).With(db)

		assert.NoError(t, repo.ClaimForTicket(ctx, 7, seatIDs))
	})

	t.Run("a partial claim reports the seats as taken", func(t *testing.T) {
		// Someone else's UPDATE got to one of the rows first, so the
		// conditional SET matches fewer rows than asked for.
		db := &scriptedDB{execTag: pgconn.NewCommandTag("UPDATE 2")}
		repo := (&SeatRepo{}).With(db)

		err := repo.ClaimForTicket(ctx, 7, seatIDs)
		assert.ErrorIs(t, err, repository.ErrSeatsTaken)
	})

	t.Run("zero claimed rows reports the seats as taken", func(t *testing.T) {
		db := &scriptedDB{execTag: pgconn.NewCommandTag("UPDATE 0")}
		repo := (&SeatRepo{}).With(db)

		err := repo.ClaimForTicket(ctx, 7, seatIDs)
		assert.ErrorIs(t, err, repository.ErrSeatsTaken)
	})

	t.Run("the claim only touches unclaimed rows", func(t *testing.T) {
		db := &scriptedDB{execTag: pgconn.NewCommandTag("UPDATE 3")}
		repo := (&SeatRepo{}).With(db)

		require.NoError(t, repo.ClaimForTicket(ctx, 7, seatIDs))
		require.Len(t, db.sql, 1)
		assert.Contains(t, db.sql[0], "ticket_id IS NULL")
	})
}

func TestSeatRepoBatchCreate(t *testing.T) {
	ctx := context.Background()

	seats := []domain.Seat{
		{SessionID: 3, Price: 10, Number: 1, Row: 1},
		{SessionID: 3, Price: 10, Number: 2, Row: 1},
		{SessionID: 3, Price: 10, Number: 3, Row: 1},
	}

	db := &scriptedDB{batch: &scriptedBatchResults{}}
	repo := (&SeatRepo{}).With(db)

	ids, err := repo.BatchCreate(ctx, seats)
	require.NoError(t, err)

	assert.Equal(t, len(seats), db.batch.queued)
	assert.Equal(t, []int64{1, 2, 3}, ids)
}
