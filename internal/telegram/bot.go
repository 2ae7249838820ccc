package telegram

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/Domenick1991/hotelbot/internal/domain"
	"github.com/Domenick1991/hotelbot/internal/service/conversation"
	"github.com/Domenick1991/hotelbot/internal/session"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	textUnsupported = "Unsupported action"
	textFailure     = "Something went wrong, please try again."
	textHint        = "Send /start to book a room."
	shardBuffer     = 64
)

type Conversation interface {
	Handle(ctx context.Context, key session.Key, user domain.UserIdentity, event conversation.Event) (conversation.Reply, error)
	Rooms() []domain.RoomCategory
}

type Payments interface {
	ApprovePrecheck(ctx context.Context, query domain.PrecheckQuery) error
	OnPaymentConfirmed(ctx context.Context, payment domain.PaymentConfirmation) error
}

type Bot struct {
	api            BotAPI
	conversation   Conversation
	payments       Payments
	workers        int
	pollingTimeout int
}

func NewBot(api BotAPI, conv Conversation, payments Payments, workers, pollingTimeout int) *Bot {
	if workers < 1 {
		workers = 1
	}
	return &Bot{
		api:            api,
		conversation:   conv,
		payments:       payments,
		workers:        workers,
		pollingTimeout: pollingTimeout,
	}
}

// Run polls for updates until ctx is cancelled. Updates are sharded by
// session key so one user's conversation is handled in order while other
// conversations run in parallel.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.pollingTimeout
	return b.dispatch(ctx, b.api.GetUpdatesChan(cfg))
}

func (b *Bot) dispatch(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	// In-flight updates finish even after shutdown starts.
	handlerCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	shards := make([]chan tgbotapi.Update, b.workers)
	for i := range shards {
		ch := make(chan tgbotapi.Update, shardBuffer)
		shards[i] = ch
		g.Go(func() error {
			for upd := range ch {
				b.HandleUpdate(handlerCtx, upd)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer func() {
			for _, ch := range shards {
				close(ch)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				b.api.StopReceivingUpdates()
				return nil
			case upd, ok := <-updates:
				if !ok {
					return nil
				}
				select {
				case shards[shardOf(updateKey(upd), b.workers)] <- upd:
				case <-ctx.Done():
					b.api.StopReceivingUpdates()
					return nil
				}
			}
		}
	})

	return g.Wait()
}

// HandleUpdate processes a single update. It never panics and never returns
// an error; failures are logged and, where possible, reported to the user.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Int("update_id", upd.UpdateID).Bytes("stack", debug.Stack()).Msg("update handler panicked")
		}
	}()

	switch {
	case upd.PreCheckoutQuery != nil:
		b.handlePrecheck(ctx, upd.PreCheckoutQuery)
	case upd.Message != nil && upd.Message.SuccessfulPayment != nil:
		b.handlePayment(ctx, upd.Message)
	case upd.Message != nil:
		b.handleMessage(ctx, upd.Message)
	case upd.CallbackQuery != nil:
		b.handleCallback(ctx, upd.CallbackQuery)
	default:
		log.Debug().Int("update_id", upd.UpdateID).Msg("ignoring update")
	}
}

func (b *Bot) handlePrecheck(ctx context.Context, q *tgbotapi.PreCheckoutQuery) {
	query := domain.PrecheckQuery{ID: q.ID, Payload: q.InvoicePayload, From: identity(q.From, 0)}
	if err := b.payments.ApprovePrecheck(ctx, query); err != nil {
		log.Error().Err(err).Str("query_id", q.ID).Msg("failed to answer pre-checkout query")
	}
}

func (b *Bot) handlePayment(ctx context.Context, msg *tgbotapi.Message) {
	p := msg.SuccessfulPayment
	payment := domain.PaymentConfirmation{
		Payload:     p.InvoicePayload,
		Currency:    p.Currency,
		TotalAmount: int64(p.TotalAmount),
		Payer:       identity(msg.From, chatID(msg)),
	}
	if err := b.payments.OnPaymentConfirmed(ctx, payment); err != nil {
		log.Error().Err(err).Str("booking_id", p.InvoicePayload).Msg("failed to deliver payment notifications")
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chat := chatID(msg)
	if !msg.IsCommand() || msg.Command() != "start" {
		b.send(tgbotapi.NewMessage(chat, textHint))
		return
	}

	key := messageKey(msg)
	reply, err := b.conversation.Handle(ctx, key, identity(msg.From, chat), conversation.StartCommand{})
	if err != nil {
		log.Error().Err(err).Stringer("session", key).Msg("start failed")
		b.send(tgbotapi.NewMessage(chat, textFailure))
		return
	}
	b.render(chat, 0, reply)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chat, messageID := callbackChat(cb)

	event, err := ParseCallback(cb.Data)
	if errors.Is(err, errNoop) {
		b.answer(tgbotapi.NewCallback(cb.ID, ""))
		return
	}
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", chat).Msg("rejected callback")
		b.answer(tgbotapi.NewCallback(cb.ID, textUnsupported))
		return
	}

	key := callbackKey(cb)
	reply, err := b.conversation.Handle(ctx, key, identity(cb.From, chat), event)
	if err != nil {
		log.Error().Err(err).Stringer("session", key).Str("event", fmt.Sprintf("%T", event)).Msg("callback failed")
		b.answer(tgbotapi.NewCallbackWithAlert(cb.ID, textFailure))
		return
	}

	if reply.Kind == conversation.ReplyAlert {
		b.answer(tgbotapi.NewCallbackWithAlert(cb.ID, reply.Text))
		return
	}
	b.answer(tgbotapi.NewCallback(cb.ID, ""))
	b.render(chat, messageID, reply)
}

// render shows reply in chat. A non-zero messageID edits that message in
// place; otherwise a new message is sent.
func (b *Bot) render(chat int64, messageID int, reply conversation.Reply) {
	switch reply.Kind {
	case conversation.ReplyRoomMenu:
		b.sendOrEdit(chat, messageID, reply.Text, roomKeyboard(b.conversation.Rooms()))
	case conversation.ReplyCalendar:
		if reply.Text == "" && messageID != 0 {
			b.send(tgbotapi.NewEditMessageReplyMarkup(chat, messageID, calendarKeyboard(reply.Month)))
			return
		}
		b.sendOrEdit(chat, messageID, reply.Text, calendarKeyboard(reply.Month))
	case conversation.ReplySummary:
		b.sendOrEdit(chat, messageID, reply.Text, confirmKeyboard(reply.BookingID))
	case conversation.ReplyText, conversation.ReplyAlert:
		msg := tgbotapi.NewMessage(chat, reply.Text)
		msg.ParseMode = tgbotapi.ModeHTML
		b.send(msg)
	case conversation.ReplyNone:
	}
}

func (b *Bot) sendOrEdit(chat int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) {
	if messageID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chat, messageID, text, markup)
		edit.ParseMode = tgbotapi.ModeHTML
		b.send(edit)
		return
	}
	msg := tgbotapi.NewMessage(chat, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	b.send(msg)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		log.Warn().Err(err).Msg("failed to send message")
	}
}

func (b *Bot) answer(c tgbotapi.CallbackConfig) {
	if _, err := b.api.Request(c); err != nil {
		log.Warn().Err(err).Str("callback_id", c.CallbackQueryID).Msg("failed to answer callback")
	}
}

func identity(u *tgbotapi.User, chat int64) domain.UserIdentity {
	if u == nil {
		return domain.UserIdentity{ChatID: chat}
	}
	return domain.UserIdentity{ID: u.ID, Username: u.UserName, ChatID: chat}
}

func chatID(msg *tgbotapi.Message) int64 {
	if msg.Chat != nil {
		return msg.Chat.ID
	}
	if msg.From != nil {
		return msg.From.ID
	}
	return 0
}

func callbackChat(cb *tgbotapi.CallbackQuery) (int64, int) {
	if cb.Message != nil {
		return chatID(cb.Message), cb.Message.MessageID
	}
	if cb.From != nil {
		return cb.From.ID, 0
	}
	return 0, 0
}

func userID(u *tgbotapi.User, fallback int64) int64 {
	if u == nil {
		return fallback
	}
	return u.ID
}

func messageKey(msg *tgbotapi.Message) session.Key {
	chat := chatID(msg)
	return session.Key{Chat: chat, User: userID(msg.From, chat)}
}

func callbackKey(cb *tgbotapi.CallbackQuery) session.Key {
	chat, _ := callbackChat(cb)
	return session.Key{Chat: chat, User: userID(cb.From, chat)}
}

// updateKey is the conversation an update belongs to. Members of a group chat
// get separate keys.
func updateKey(upd tgbotapi.Update) session.Key {
	switch {
	case upd.Message != nil:
		return messageKey(upd.Message)
	case upd.CallbackQuery != nil:
		return callbackKey(upd.CallbackQuery)
	case upd.PreCheckoutQuery != nil && upd.PreCheckoutQuery.From != nil:
		id := upd.PreCheckoutQuery.From.ID
		return session.Key{Chat: id, User: id}
	}
	return session.Key{}
}

func shardOf(key session.Key, shards int) int {
	n := (key.Chat*31 + key.User) % int64(shards)
	if n < 0 {
		n = -n
	}
	return int(n)
}
