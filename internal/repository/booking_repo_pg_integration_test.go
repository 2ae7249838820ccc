package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Domenick1991/hotelbot/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPool connects to TEST_DATABASE_URL and skips the test when it is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(ctx))
	return pool
}

func assertConnsReleased(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	assert.Zero(t, pool.Stat().AcquiredConns(), "connection not released")
}

func TestPGBookingRepository_Postgres(t *testing.T) {
	pool := testPool(t)
	repo := NewBookingRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.EnsureSchema(ctx))
	assertConnsReleased(t, pool)
	require.NoError(t, repo.EnsureSchema(ctx), "schema creation must be repeatable")
	assertConnsReleased(t, pool)

	draft := domain.BookingDraft{
		Room:       domain.RoomDouble,
		CheckIn:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
		Nights:     3,
		TotalPrice: 38700,
		BookingID:  domain.NewBookingID(),
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM bookings WHERE booking_id=$1`, draft.BookingID)
	})

	record := domain.NewBookingRecord(draft, domain.UserIdentity{ID: 42, ChatID: 42})
	require.NoError(t, repo.Create(ctx, record))
	assertConnsReleased(t, pool)
	assert.NotZero(t, record.ID)
	assert.False(t, record.CreatedAt.IsZero())

	duplicate := domain.NewBookingRecord(draft, domain.UserIdentity{ID: 7, Username: "other"})
	err := repo.Create(ctx, duplicate)
	assert.ErrorIs(t, err, domain.ErrDuplicateBookingID)
	assertConnsReleased(t, pool)

	got, err := repo.GetByBookingID(ctx, draft.BookingID)
	require.NoError(t, err)
	assertConnsReleased(t, pool)
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, int64(42), got.UserID)
	assert.Empty(t, got.Username)
	assert.Equal(t, domain.RoomDouble, got.RoomType)
	assert.True(t, draft.CheckIn.Equal(got.CheckIn))
	assert.True(t, draft.CheckOut.Equal(got.CheckOut))
	assert.Equal(t, 3, got.Nights)
	assert.Equal(t, int64(38700), got.TotalPrice)
	assert.Equal(t, domain.BookingStatusPending, got.Status)

	_, err = repo.GetByBookingID(ctx, "MISSING0")
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	assertConnsReleased(t, pool)
}

func TestPGBookingRepository_PostgresNullUsername(t *testing.T) {
	pool := testPool(t)
	repo := NewBookingRepository(pool)
	ctx := context.Background()
	require.NoError(t, repo.EnsureSchema(ctx))

	id := domain.NewBookingID()
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM bookings WHERE booking_id=$1`, id)
	})
	_, err := pool.Exec(ctx, `INSERT INTO bookings (user_id, room_type, check_in, check_out, nights, total_price, booking_id)
		VALUES (1, 'single', '2024-07-10', '2024-07-11', 1, 7900, $1)`, id)
	require.NoError(t, err)

	got, err := repo.GetByBookingID(ctx, id)
	require.NoError(t, err)
	assertConnsReleased(t, pool)
	assert.Empty(t, got.Username)
	assert.Equal(t, domain.BookingStatusPending, got.Status)
}
