package kafka

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderConfig(t *testing.T) {
	cfg := readerConfig([]string{"kafka-1:9092", "kafka-2:9092"}, "hotelbot-audit", "bookings")

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
	assert.Equal(t, "hotelbot-audit", cfg.GroupID)
	assert.Equal(t, "bookings", cfg.Topic)
	assert.Equal(t, kafka.FirstOffset, cfg.StartOffset)
	assert.Equal(t, time.Second, cfg.CommitInterval)
	assert.Equal(t, 1, cfg.MinBytes)
	assert.Equal(t, 1<<20, cfg.MaxBytes)
	require.NotNil(t, cfg.ErrorLogger)
	require.NoError(t, cfg.Validate())
}

func TestConsumer_CloseNil(t *testing.T) {
	var c *Consumer
	assert.NoError(t, c.Close())
	assert.NoError(t, (&Consumer{}).Close())
}
