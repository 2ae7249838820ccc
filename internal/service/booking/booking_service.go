package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/hotelbot/internal/domain"
	"github.com/Domenick1991/hotelbot/internal/kafka"
	"github.com/Domenick1991/hotelbot/internal/repository"
	"github.com/rs/zerolog/log"
)

const (
	invoiceTitle    = "LuxeHotel"
	maxPersistTries = 3
)

type BookingUseCase interface {
	Checkout(ctx context.Context, draft domain.BookingDraft, user domain.UserIdentity) (domain.BookingDraft, error)
	PersistDraft(ctx context.Context, draft domain.BookingDraft, user domain.UserIdentity) (*domain.BookingRecord, error)
	InitiatePayment(ctx context.Context, draft domain.BookingDraft, user domain.UserIdentity) error
	ApprovePrecheck(ctx context.Context, query domain.PrecheckQuery) error
	OnPaymentConfirmed(ctx context.Context, payment domain.PaymentConfirmation) error
}

// Messenger is the outbound side of the chat transport.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendInvoice(ctx context.Context, invoice domain.Invoice) error
	AnswerPrecheck(ctx context.Context, queryID string, ok bool, errorMessage string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings      repository.BookingRepository
	messenger     Messenger
	prices        *domain.PriceTable
	producer      Producer
	bookingTopic  string
	operatorID    int64
	providerToken string
	newID         func() string
	now           func() time.Time
}

type BookingServiceOption func(*BookingService)

// WithRepository enables persistence. Without it the service runs in
// degraded mode and only requests payments.
func WithRepository(repo repository.BookingRepository) BookingServiceOption {
	return func(s *BookingService) {
		s.bookings = repo
	}
}

func WithEvents(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = topic
	}
}

func WithOperator(chatID int64) BookingServiceOption {
	return func(s *BookingService) {
		s.operatorID = chatID
	}
}

func WithProviderToken(token string) BookingServiceOption {
	return func(s *BookingService) {
		s.providerToken = token
	}
}

func NewBookingService(messenger Messenger, prices *domain.PriceTable, opts ...BookingServiceOption) *BookingService {
	service := &BookingService{
		messenger: messenger,
		prices:    prices,
		newID:     domain.NewBookingID,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Checkout persists the draft (once) and sends the invoice. The returned
// draft carries the identifier that was actually used and whether it is
// stored, so a retry after a payment failure does not insert twice.
func (s *BookingService) Checkout(ctx context.Context, draft domain.BookingDraft, user domain.UserIdentity) (domain.BookingDraft, error) {
	if !draft.Complete() {
		return draft, domain.ErrIncompleteDraft
	}

	if !draft.Persisted {
		persisted, err := s.persistWithRetry(ctx, &draft, user)
		if err != nil {
			return draft, err
		}
		draft.Persisted = persisted
	}

	if err := s.InitiatePayment(ctx, draft, user); err != nil {
		return draft, err
	}
	return draft, nil
}

func (s *BookingService) persistWithRetry(ctx context.Context, draft *domain.BookingDraft, user domain.UserIdentity) (bool, error) {
	for attempt := 1; ; attempt++ {
		_, err := s.PersistDraft(ctx, *draft, user)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, domain.ErrPersistenceDisabled):
			return false, nil
		case errors.Is(err, domain.ErrDuplicateBookingID):
			if attempt >= maxPersistTries {
				log.Error().Err(err).Str("booking_id", draft.BookingID).Int("attempts", attempt).Msg("giving up on booking id collisions")
				return false, err
			}
			previous := draft.BookingID
			draft.BookingID = s.newID()
			log.Warn().Str("previous", previous).Str("booking_id", draft.BookingID).Msg("booking id collision, regenerated")
		default:
			log.Error().Err(err).Str("booking_id", draft.BookingID).Msg("booking store unavailable, continuing without a stored record")
			return false, nil
		}
	}
}

func (s *BookingService) PersistDraft(ctx context.Context, draft domain.BookingDraft, user domain.UserIdentity) (*domain.BookingRecord, error) {
	if !draft.Complete() {
		return nil, domain.ErrIncompleteDraft
	}
	if s.bookings == nil {
		log.Warn().Str("booking_id", draft.BookingID).Msg("booking store not configured, record not written")
		return nil, domain.ErrPersistenceDisabled
	}

	record := domain.NewBookingRecord(draft, user)
	if err := s.bookings.Create(ctx, record); err != nil {
		return nil, err
	}

	log.Info().Str("booking_id", record.BookingID).Int64("id", record.ID).Int64("user_id", user.ID).Msg("booking stored")
	s.publish(ctx, kafka.EventBookingCreated, draft, user)
	return record, nil
}

func (s *BookingService) InitiatePayment(ctx context.Context, draft domain.BookingDraft, user domain.UserIdentity) error {
	if !draft.Complete() {
		return domain.ErrIncompleteDraft
	}
	if s.providerToken == "" {
		log.Error().Str("booking_id", draft.BookingID).Msg("payment provider token not configured")
		return fmt.Errorf("%w: provider token not configured", domain.ErrPaymentUnavailable)
	}

	roomName := string(draft.Room)
	if category, ok := s.prices.Lookup(draft.Room); ok {
		roomName = category.Name
	}

	invoice := domain.Invoice{
		ChatID:        invoiceChat(user),
		Title:         invoiceTitle,
		Description:   fmt.Sprintf("%s × %d nights", roomName, draft.Nights),
		Label:         fmt.Sprintf("Booking for %d nights", draft.Nights),
		Amount:        draft.TotalPrice,
		Currency:      domain.Currency,
		Payload:       draft.BookingID,
		ProviderToken: s.providerToken,
	}
	if err := s.messenger.SendInvoice(ctx, invoice); err != nil {
		log.Error().Err(err).Str("booking_id", draft.BookingID).Msg("invoice rejected")
		return fmt.Errorf("%w: %v", domain.ErrPaymentUnavailable, err)
	}

	s.publish(ctx, kafka.EventPaymentRequested, draft, user)
	return nil
}

// ApprovePrecheck approves every pre-checkout query; availability is not
// re-validated.
func (s *BookingService) ApprovePrecheck(ctx context.Context, query domain.PrecheckQuery) error {
	log.Info().Str("query_id", query.ID).Str("booking_id", query.Payload).Int64("user_id", query.From.ID).Msg("approving pre-checkout")
	return s.messenger.AnswerPrecheck(ctx, query.ID, true, "")
}

// OnPaymentConfirmed notifies the operator and the payer. The stored record
// keeps its pending status.
func (s *BookingService) OnPaymentConfirmed(ctx context.Context, payment domain.PaymentConfirmation) error {
	log.Info().Str("booking_id", payment.Payload).Int64("user_id", payment.Payer.ID).Int64("amount", payment.TotalAmount).Msg("payment confirmed")

	var errs []error
	if s.operatorID != 0 {
		text := fmt.Sprintf("NEW PAID BOOKING!\nID: %s\nUser: @%s", payment.Payload, payment.Payer.Username)
		if err := s.messenger.SendText(ctx, s.operatorID, text); err != nil {
			errs = append(errs, fmt.Errorf("notify operator: %w", err))
		}
	} else {
		log.Warn().Str("booking_id", payment.Payload).Msg("no operator configured, paid booking not forwarded")
	}

	if err := s.messenger.SendText(ctx, chatOf(payment.Payer), "Payment successful! Your booking is confirmed!"); err != nil {
		errs = append(errs, fmt.Errorf("notify payer: %w", err))
	}

	s.publish(ctx, kafka.EventBookingPaid, domain.BookingDraft{BookingID: payment.Payload, TotalPrice: payment.TotalAmount}, payment.Payer)
	return errors.Join(errs...)
}

func (s *BookingService) publish(ctx context.Context, eventType string, draft domain.BookingDraft, user domain.UserIdentity) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:       eventType,
		BookingID:  draft.BookingID,
		UserID:     user.ID,
		Username:   user.Username,
		RoomType:   string(draft.Room),
		Nights:     draft.Nights,
		TotalPrice: draft.TotalPrice,
		Currency:   domain.Currency,
		OccurredAt: s.now(),
	}
	if !draft.CheckIn.IsZero() {
		event.CheckIn = draft.CheckIn.Format(domain.DateLayout)
	}
	if !draft.CheckOut.IsZero() {
		event.CheckOut = draft.CheckOut.Format(domain.DateLayout)
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, draft.BookingID, event); err != nil {
		log.Warn().Err(err).Str("event", eventType).Str("booking_id", draft.BookingID).Msg("failed to publish booking event")
	}
}

// invoiceChat is the private chat of the user who confirmed, also when the
// conversation runs in a group.
func invoiceChat(user domain.UserIdentity) int64 {
	if user.ID != 0 {
		return user.ID
	}
	return user.ChatID
}

func chatOf(user domain.UserIdentity) int64 {
	if user.ChatID != 0 {
		return user.ChatID
	}
	return user.ID
}

var _ BookingUseCase = (*BookingService)(nil)
