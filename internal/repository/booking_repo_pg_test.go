package repository

import (
	"errors"
	"testing"

	"github.com/Domenick1991/hotelbot/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewBookingRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewBookingRepository(pool)
	assert.NotNil(t, repo)
}

func TestMapError(t *testing.T) {
	t.Run("unique violation", func(t *testing.T) {
		err := mapError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "bookings_booking_id_key"}, "insert booking")
		assert.ErrorIs(t, err, domain.ErrDuplicateBookingID)
		assert.Contains(t, err.Error(), "bookings_booking_id_key")
	})

	t.Run("no rows", func(t *testing.T) {
		err := mapError(pgx.ErrNoRows, "select booking")
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	})

	t.Run("other postgres error", func(t *testing.T) {
		err := mapError(&pgconn.PgError{Code: "57P01"}, "insert booking")
		assert.NotErrorIs(t, err, domain.ErrDuplicateBookingID)
		assert.Contains(t, err.Error(), "insert booking")
	})

	t.Run("connection error", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := mapError(cause, "insert booking")
		assert.ErrorIs(t, err, cause)
	})
}

func TestCreateBookingsTableSchema(t *testing.T) {
	for _, column := range []string{
		"id SERIAL PRIMARY KEY",
		"user_id BIGINT",
		"booking_id TEXT UNIQUE",
		"status TEXT DEFAULT 'pending'",
		"created_at TIMESTAMP DEFAULT NOW()",
	} {
		assert.Contains(t, createBookingsTable, column)
	}
	assert.Contains(t, createBookingsTable, "IF NOT EXISTS")
}
