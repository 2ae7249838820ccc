package conversation

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/Domenick1991/hotelbot/internal/domain"
	"github.com/Domenick1991/hotelbot/internal/session"
	"github.com/rs/zerolog/log"
)

const (
	textWelcome           = "Welcome to LuxeHotel!\nChoose your room:"
	textCheckoutTooEarly  = "Check-out must be after check-in!"
	textIncomplete        = "Booking details are incomplete. Send /start to begin again."
	textStaleSummary      = "This summary is out of date. Use the latest one or send /start."
	textChooseRoomFirst   = "Choose a room first. Send /start to see the rooms."
	textRoomAlreadyChosen = "Your room is already chosen. Send /start to begin again."
	textUnknownRoom       = "That room is not available."
)

var ErrUnknownEvent = errors.New("unknown conversation event")

type CheckoutService interface {
	Checkout(ctx context.Context, draft domain.BookingDraft, user domain.UserIdentity) (domain.BookingDraft, error)
}

// Machine drives one booking conversation per session key. It holds no
// per-chat state itself; everything lives in the session store.
type Machine struct {
	sessions session.Store
	prices   *domain.PriceTable
	checkout CheckoutService
	now      func() time.Time
	newID    func() string
}

func NewMachine(sessions session.Store, prices *domain.PriceTable, checkout CheckoutService) *Machine {
	return &Machine{
		sessions: sessions,
		prices:   prices,
		checkout: checkout,
		now:      time.Now,
		newID:    domain.NewBookingID,
	}
}

func (m *Machine) Rooms() []domain.RoomCategory {
	return m.prices.Categories()
}

// Handle applies event to the session under key. Errors are infrastructure
// failures only; anything the user did wrong comes back as an alert reply.
func (m *Machine) Handle(ctx context.Context, key session.Key, user domain.UserIdentity, event Event) (Reply, error) {
	if _, ok := event.(StartCommand); ok {
		return m.start(ctx, key)
	}

	s, err := m.sessions.Get(ctx, key)
	if err != nil {
		return Reply{}, fmt.Errorf("load session %s: %w", key, err)
	}

	switch ev := event.(type) {
	case RoomSelected:
		return m.selectRoom(ctx, key, s, ev)
	case DateSelected:
		return m.selectDate(ctx, key, s, ev)
	case CalendarNavigated:
		return m.navigate(s, ev), nil
	case ConfirmPressed:
		return m.confirm(ctx, key, user, s, ev)
	}
	return Reply{}, fmt.Errorf("%w: %T", ErrUnknownEvent, event)
}

func (m *Machine) start(ctx context.Context, key session.Key) (Reply, error) {
	// A missing session reads back as a fresh one, so dropping it resets.
	if err := m.sessions.Delete(ctx, key); err != nil {
		return Reply{}, fmt.Errorf("reset session %s: %w", key, err)
	}
	return Reply{Kind: ReplyRoomMenu, Text: textWelcome}, nil
}

func (m *Machine) selectRoom(ctx context.Context, key session.Key, s session.Session, ev RoomSelected) (Reply, error) {
	if s.State != session.StateChoosingRoom {
		return alert(textRoomAlreadyChosen), nil
	}
	category, err := m.prices.Resolve(domain.RoomType(ev.Room))
	if err != nil {
		log.Debug().Err(err).Stringer("session", key).Msg("room rejected")
		return alert(textUnknownRoom), nil
	}

	s.Draft = domain.BookingDraft{Room: category.Type}
	s.State = session.StateChoosingCheckIn
	if err := m.sessions.Save(ctx, key, s); err != nil {
		return Reply{}, fmt.Errorf("save session %s: %w", key, err)
	}

	return Reply{
		Kind:  ReplyCalendar,
		Text:  fmt.Sprintf("Selected: <b>%s</b>\nSelect check-in date:", html.EscapeString(category.Name)),
		Month: firstOfMonth(m.now()),
	}, nil
}

func (m *Machine) selectDate(ctx context.Context, key session.Key, s session.Session, ev DateSelected) (Reply, error) {
	date := domain.Date(ev.Date)

	switch s.State {
	case session.StateChoosingCheckIn:
		s.Draft.CheckIn = date
		s.State = session.StateChoosingCheckOut
		if err := m.sessions.Save(ctx, key, s); err != nil {
			return Reply{}, fmt.Errorf("save session %s: %w", key, err)
		}
		return Reply{
			Kind:  ReplyCalendar,
			Text:  fmt.Sprintf("Check-in: <b>%s</b>\nSelect check-out:", date.Format(domain.DateLayout)),
			Month: firstOfMonth(date),
		}, nil

	case session.StateChoosingCheckOut:
		category, ok := m.prices.Lookup(s.Draft.Room)
		if !ok || s.Draft.CheckIn.IsZero() {
			return alert(textIncomplete), nil
		}
		nights, total, err := domain.Quote(category, s.Draft.CheckIn, date)
		if err != nil {
			return alert(textCheckoutTooEarly), nil
		}

		s.Draft.CheckOut = date
		s.Draft.Nights = nights
		s.Draft.TotalPrice = total
		s.Draft.BookingID = m.newID()
		s.Draft.Persisted = false
		if err := m.sessions.Save(ctx, key, s); err != nil {
			return Reply{}, fmt.Errorf("save session %s: %w", key, err)
		}
		return m.summary(s.Draft, category), nil

	default:
		return alert(textChooseRoomFirst), nil
	}
}

func (m *Machine) navigate(s session.Session, ev CalendarNavigated) Reply {
	if s.State != session.StateChoosingCheckIn && s.State != session.StateChoosingCheckOut {
		return Reply{Kind: ReplyNone}
	}
	return Reply{
		Kind:  ReplyCalendar,
		Month: time.Date(ev.Year, ev.Month, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *Machine) confirm(ctx context.Context, key session.Key, user domain.UserIdentity, s session.Session, ev ConfirmPressed) (Reply, error) {
	if s.State != session.StateChoosingCheckOut || !s.Draft.Complete() {
		return alert(textIncomplete), nil
	}
	if ev.BookingID != s.Draft.BookingID {
		return alert(textStaleSummary), nil
	}

	updated, checkoutErr := m.checkout.Checkout(ctx, s.Draft, user)
	if updated != s.Draft {
		s.Draft = updated
		if err := m.sessions.Save(ctx, key, s); err != nil {
			return Reply{}, fmt.Errorf("save session %s: %w", key, err)
		}
	}

	if checkoutErr != nil {
		log.Warn().Err(checkoutErr).Stringer("session", key).Str("booking_id", s.Draft.BookingID).Msg("checkout failed")
		category, _ := m.prices.Lookup(s.Draft.Room)
		reply := m.summary(s.Draft, category)
		reply.Text = failureNotice(checkoutErr) + "\n\n" + reply.Text
		return reply, nil
	}

	return Reply{
		Kind: ReplyText,
		Text: fmt.Sprintf("Invoice for booking <b>%s</b> sent. Complete the payment to confirm it.", s.Draft.BookingID),
	}, nil
}

func (m *Machine) summary(d domain.BookingDraft, category domain.RoomCategory) Reply {
	text := fmt.Sprintf("Summary:\nRoom: %s\nCheck-in: %s\nCheck-out: %s\nNights: %d\nTotal: <b>%s</b>",
		html.EscapeString(category.Name),
		d.CheckIn.Format(domain.DateLayout),
		d.CheckOut.Format(domain.DateLayout),
		d.Nights,
		domain.FormatPrice(d.TotalPrice),
	)
	return Reply{Kind: ReplySummary, Text: text, BookingID: d.BookingID}
}

func failureNotice(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateBookingID):
		return "We could not save your booking. Please press Confirm &amp; Pay again."
	case errors.Is(err, domain.ErrPaymentUnavailable):
		return "Payment could not be started. Please press Confirm &amp; Pay to try again."
	default:
		return "Something went wrong. Please press Confirm &amp; Pay to try again."
	}
}

func alert(text string) Reply {
	return Reply{Kind: ReplyAlert, Text: text}
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
