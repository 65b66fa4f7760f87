package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okarpov/cinehall/internal/domain"
)

func TestTicketRepoUpdateMissedStaysSticky(t *testing.T) {
	ctx := context.Background()

	// A ticket struct read before another request marked the row missed
	// still carries is_missed=false. The statement must OR the flag with
	// the stored value instead of assigning it, otherwise this write
	// would silently clear it.
	db := &scriptedDB{execTag: pgconn.NewCommandTag("UPDATE 1")}
	repo := (&TicketRepo{}).With(db)

	err := repo.Update(ctx, domain.Ticket{
		ID:     9,
		IsPaid: true,
	})
	require.NoError(t, err)

	require.Len(t, db.sql, 1)
	assert.Contains(t, db.sql[0], "is_missed = (is_missed OR $4)")
	assert.NotContains(t, db.sql[0], "is_missed = $4")
}
