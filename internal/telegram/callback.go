package telegram

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/hotelbot/internal/domain"
	"github.com/Domenick1991/hotelbot/internal/service/conversation"
)

// Callback data formats. Telegram caps callback data at 64 bytes.
const (
	prefixRoom     = "room:"
	prefixDay      = "cal:day:"
	prefixNav      = "cal:nav:"
	prefixPay      = "pay:"
	callbackNoop   = "cal:noop"
	monthLayout    = "2006-01"
	maxCallbackLen = 64
)

var (
	ErrMalformedCallback = errors.New("malformed callback data")
	// errNoop marks buttons that only decorate the calendar.
	errNoop = errors.New("no-op callback")
)

func roomCallback(room domain.RoomType) string {
	return prefixRoom + string(room)
}

func dayCallback(day time.Time) string {
	return prefixDay + day.Format(domain.DateLayout)
}

func navCallback(month time.Time) string {
	return prefixNav + month.Format(monthLayout)
}

func payCallback(bookingID string) string {
	return prefixPay + bookingID
}

// ParseCallback turns inline button data into a conversation event.
func ParseCallback(data string) (conversation.Event, error) {
	if data == "" || len(data) > maxCallbackLen {
		return nil, fmt.Errorf("%w: %q", ErrMalformedCallback, data)
	}

	switch {
	case data == callbackNoop:
		return nil, errNoop

	case strings.HasPrefix(data, prefixRoom):
		room := strings.TrimPrefix(data, prefixRoom)
		if room == "" {
			return nil, fmt.Errorf("%w: empty room", ErrMalformedCallback)
		}
		return conversation.RoomSelected{Room: room}, nil

	case strings.HasPrefix(data, prefixDay):
		day, err := time.Parse(domain.DateLayout, strings.TrimPrefix(data, prefixDay))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
		}
		return conversation.DateSelected{Date: day}, nil

	case strings.HasPrefix(data, prefixNav):
		month, err := time.Parse(monthLayout, strings.TrimPrefix(data, prefixNav))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
		}
		return conversation.CalendarNavigated{Year: month.Year(), Month: month.Month()}, nil

	case strings.HasPrefix(data, prefixPay):
		id := strings.TrimPrefix(data, prefixPay)
		if id == "" {
			return nil, fmt.Errorf("%w: empty booking id", ErrMalformedCallback)
		}
		return conversation.ConfirmPressed{BookingID: id}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrMalformedCallback, data)
}
