package telegram

import (
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/hotelbot/internal/domain"
	"github.com/Domenick1991/hotelbot/internal/service/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name string
		data string
		want conversation.Event
	}{
		{"room", "room:suite", conversation.RoomSelected{Room: "suite"}},
		{"unknown room is passed through", "room:penthouse", conversation.RoomSelected{Room: "penthouse"}},
		{"day", "cal:day:2024-06-01", conversation.DateSelected{Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}},
		{"navigation", "cal:nav:2024-12", conversation.CalendarNavigated{Year: 2024, Month: time.December}},
		{"pay", "pay:ABC12345", conversation.ConfirmPressed{BookingID: "ABC12345"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCallback(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCallback_Rejects(t *testing.T) {
	for _, data := range []string{
		"",
		"room:",
		"pay:",
		"cal:day:2024-02-30",
		"cal:day:tomorrow",
		"cal:nav:2024-13",
		"checkout",
		"pay:" + strings.Repeat("A", 64),
	} {
		t.Run(data, func(t *testing.T) {
			_, err := ParseCallback(data)
			assert.ErrorIs(t, err, ErrMalformedCallback)
		})
	}
}

func TestParseCallback_Noop(t *testing.T) {
	event, err := ParseCallback(callbackNoop)
	assert.Nil(t, event)
	assert.ErrorIs(t, err, errNoop)
	assert.NotErrorIs(t, err, ErrMalformedCallback)
}

func TestCallbackEncodersRoundTrip(t *testing.T) {
	day := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)

	ev, err := ParseCallback(dayCallback(day))
	require.NoError(t, err)
	assert.Equal(t, conversation.DateSelected{Date: day}, ev)

	ev, err = ParseCallback(navCallback(day))
	require.NoError(t, err)
	assert.Equal(t, conversation.CalendarNavigated{Year: 2024, Month: time.February}, ev)

	ev, err = ParseCallback(roomCallback(domain.RoomDouble))
	require.NoError(t, err)
	assert.Equal(t, conversation.RoomSelected{Room: "double"}, ev)

	id := domain.NewBookingID()
	ev, err = ParseCallback(payCallback(id))
	require.NoError(t, err)
	assert.Equal(t, conversation.ConfirmPressed{BookingID: id}, ev)
}
