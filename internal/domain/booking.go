package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending BookingStatus = "pending"
	// BookingStatusPaid is never written: a confirmed payment leaves the
	// record pending.
	BookingStatusPaid BookingStatus = "paid"
)

const (
	DateLayout    = "2006-01-02"
	secondsPerDay = 24 * 60 * 60
)

var (
	ErrInvalidStay         = errors.New("check-out must be after check-in")
	ErrUnknownRoom         = errors.New("unknown room type")
	ErrIncompleteDraft     = errors.New("booking draft is incomplete")
	ErrDuplicateBookingID  = errors.New("booking id already exists")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrPersistenceDisabled = errors.New("booking store is not configured")
	ErrPaymentUnavailable  = errors.New("payment could not be requested")
)

// UserIdentity is who the messaging transport says is talking to us.
type UserIdentity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	ChatID   int64  `json:"chat_id"`
}

// BookingDraft is the booking being assembled in one conversation.
type BookingDraft struct {
	Room       RoomType  `json:"room,omitempty"`
	CheckIn    time.Time `json:"check_in,omitempty"`
	CheckOut   time.Time `json:"check_out,omitempty"`
	Nights     int       `json:"nights,omitempty"`
	TotalPrice int64     `json:"total_price,omitempty"`
	BookingID  string    `json:"booking_id,omitempty"`
	Persisted  bool      `json:"persisted,omitempty"`
}

func (d BookingDraft) Complete() bool {
	return d.Room != "" &&
		!d.CheckIn.IsZero() &&
		!d.CheckOut.IsZero() &&
		d.Nights >= 1 &&
		d.TotalPrice > 0 &&
		d.BookingID != ""
}

type BookingRecord struct {
	ID         int64         `json:"id"`
	UserID     int64         `json:"user_id"`
	Username   string        `json:"username"`
	RoomType   RoomType      `json:"room_type"`
	CheckIn    time.Time     `json:"check_in"`
	CheckOut   time.Time     `json:"check_out"`
	Nights     int           `json:"nights"`
	TotalPrice int64         `json:"total_price"`
	BookingID  string        `json:"booking_id"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

func NewBookingRecord(d BookingDraft, user UserIdentity) *BookingRecord {
	return &BookingRecord{
		UserID:     user.ID,
		Username:   user.Username,
		RoomType:   d.Room,
		CheckIn:    d.CheckIn,
		CheckOut:   d.CheckOut,
		Nights:     d.Nights,
		TotalPrice: d.TotalPrice,
		BookingID:  d.BookingID,
		Status:     BookingStatusPending,
	}
}

// Date truncates t to its calendar day in UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights returns the number of nights between two calendar dates.
func Nights(checkIn, checkOut time.Time) (int, error) {
	in, out := Date(checkIn), Date(checkOut)
	if !out.After(in) {
		return 0, ErrInvalidStay
	}
	// Subtracting Unix seconds avoids Duration overflow past ~292 years.
	return int((out.Unix() - in.Unix()) / secondsPerDay), nil
}

// Quote prices a stay in the given category.
func Quote(category RoomCategory, checkIn, checkOut time.Time) (nights int, total int64, err error) {
	nights, err = Nights(checkIn, checkOut)
	if err != nil {
		return 0, 0, err
	}
	return nights, int64(nights) * category.NightlyPrice, nil
}

// NewBookingID returns an 8 character upper-case hex token.
func NewBookingID() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// Invoice is a single line item payment request.
type Invoice struct {
	ChatID        int64
	Title         string
	Description   string
	Label         string
	Amount        int64
	Currency      string
	Payload       string
	ProviderToken string
}

type PrecheckQuery struct {
	ID      string
	Payload string
	From    UserIdentity
}

type PaymentConfirmation struct {
	Payload     string
	Currency    string
	TotalAmount int64
	Payer       UserIdentity
}
