package audit

import (
	"context"
	"sync"

	"github.com/Domenick1991/hotelbot/internal/kafka"
	"github.com/rs/zerolog"
	kafkaGo "github.com/segmentio/kafka-go"
)

// Recorder writes one structured log line per booking event.
type Recorder struct {
	logger zerolog.Logger

	mu     sync.Mutex
	counts map[string]int
}

func NewRecorder(logger zerolog.Logger) *Recorder {
	return &Recorder{
		logger: logger.With().Str("component", "audit").Logger(),
		counts: make(map[string]int),
	}
}

func (r *Recorder) Record(_ context.Context, event kafka.BookingEvent) error {
	r.logger.Info().
		Str("type", event.Type).
		Str("booking_id", event.BookingID).
		Int64("user_id", event.UserID).
		Str("username", event.Username).
		Str("room_type", event.RoomType).
		Str("check_in", event.CheckIn).
		Str("check_out", event.CheckOut).
		Int("nights", event.Nights).
		Int64("total_price", event.TotalPrice).
		Str("currency", event.Currency).
		Time("occurred_at", event.OccurredAt).
		Msg("booking event")

	r.mu.Lock()
	r.counts[event.Type]++
	r.mu.Unlock()
	return nil
}

// Handle is a kafka consumer handler. Undecodable messages are skipped so a
// poison message does not stop the worker.
func (r *Recorder) Handle(ctx context.Context, msg kafkaGo.Message) error {
	event, err := kafka.DecodeBookingEvent(msg)
	if err != nil {
		r.logger.Warn().Err(err).Int64("offset", msg.Offset).Int("partition", msg.Partition).Msg("skipping undecodable message")
		return nil
	}
	return r.Record(ctx, event)
}

// Counts returns how many events of each type were recorded.
func (r *Recorder) Counts() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}
