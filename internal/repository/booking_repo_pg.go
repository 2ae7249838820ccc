package repository

import (
	"context"

	"github.com/Domenick1991/hotelbot/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

const uniqueViolation = "23505"

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id SERIAL PRIMARY KEY,
    user_id BIGINT,
    username TEXT,
    room_type TEXT,
    check_in DATE,
    check_out DATE,
    nights INTEGER,
    total_price INTEGER,
    booking_id TEXT UNIQUE,
    status TEXT DEFAULT 'pending',
    created_at TIMESTAMP DEFAULT NOW()
)`

type BookingRepository interface {
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, booking *domain.BookingRecord) error
	GetByBookingID(ctx context.Context, bookingID string) (*domain.BookingRecord, error)
}

// PGBookingRepository acquires one pooled connection per call and always
// hands it back before returning.
type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) EnsureSchema(ctx context.Context) error {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return errors.Wrap(err, "acquire connection")
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, createBookingsTable); err != nil {
		return errors.Wrap(err, "create bookings table")
	}
	return nil
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.BookingRecord) error {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return errors.Wrap(err, "acquire connection")
	}
	defer conn.Release()

	if booking.Status == "" {
		booking.Status = domain.BookingStatusPending
	}

	err = conn.QueryRow(ctx, `INSERT INTO bookings (user_id, username, room_type, check_in, check_out, nights, total_price, booking_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		booking.UserID, booking.Username, string(booking.RoomType), booking.CheckIn, booking.CheckOut,
		booking.Nights, booking.TotalPrice, booking.BookingID, string(booking.Status)).
		Scan(&booking.ID, &booking.CreatedAt)
	if err != nil {
		return mapError(err, "insert booking")
	}
	return nil
}

func (r *PGBookingRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.BookingRecord, error) {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "acquire connection")
	}
	defer conn.Release()

	var (
		b            domain.BookingRecord
		room, status string
		username     *string
	)
	row := conn.QueryRow(ctx, `SELECT id, user_id, username, room_type, check_in, check_out, nights, total_price, booking_id, status, created_at
		FROM bookings WHERE booking_id=$1`, bookingID)
	if err := row.Scan(&b.ID, &b.UserID, &username, &room, &b.CheckIn, &b.CheckOut, &b.Nights, &b.TotalPrice, &b.BookingID, &status, &b.CreatedAt); err != nil {
		return nil, mapError(err, "select booking")
	}
	if username != nil {
		b.Username = *username
	}
	b.RoomType = domain.RoomType(room)
	b.Status = domain.BookingStatus(status)
	return &b, nil
}

func mapError(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrBookingNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errors.Wrap(domain.ErrDuplicateBookingID, pgErr.ConstraintName)
	}
	return errors.Wrap(err, op)
}

var _ BookingRepository = (*PGBookingRepository)(nil)
