package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBookingEvent(t *testing.T) {
	occurred := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	payload, err := json.Marshal(BookingEvent{
		Type:       EventBookingCreated,
		BookingID:  "ABC12345",
		UserID:     42,
		Username:   "guest",
		RoomType:   "double",
		CheckIn:    "2024-06-01",
		CheckOut:   "2024-06-04",
		Nights:     3,
		TotalPrice: 38700,
		Currency:   "USD",
		OccurredAt: occurred,
	})
	require.NoError(t, err)

	event, err := DecodeBookingEvent(kafka.Message{Key: []byte("ABC12345"), Value: payload})
	require.NoError(t, err)
	assert.Equal(t, EventBookingCreated, event.Type)
	assert.Equal(t, "ABC12345", event.BookingID)
	assert.Equal(t, int64(38700), event.TotalPrice)
	assert.True(t, occurred.Equal(event.OccurredAt))
}

func TestDecodeBookingEvent_Garbage(t *testing.T) {
	_, err := DecodeBookingEvent(kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)
}

func TestNewProducer(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"})
	require.NotNil(t, p)
	assert.NoError(t, p.Close())
}

func TestConsumer_CloseNilFromProducerTest(t *testing.T) {
	var c *Consumer
	assert.NoError(t, c.Close())
}
