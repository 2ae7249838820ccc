package telegram

import (
	"context"

	"github.com/Domenick1991/hotelbot/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPI is the part of *tgbotapi.BotAPI the bot uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Messenger sends outbound messages, invoices and pre-checkout answers.
type Messenger struct {
	api BotAPI
}

func NewMessenger(api BotAPI) *Messenger {
	return &Messenger{api: api}
}

func (m *Messenger) SendText(_ context.Context, chatID int64, text string) error {
	_, err := m.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (m *Messenger) SendInvoice(_ context.Context, invoice domain.Invoice) error {
	cfg := tgbotapi.NewInvoice(
		invoice.ChatID,
		invoice.Title,
		invoice.Description,
		invoice.Payload,
		invoice.ProviderToken,
		"",
		invoice.Currency,
		[]tgbotapi.LabeledPrice{{Label: invoice.Label, Amount: int(invoice.Amount)}},
	)
	// A nil slice is sent as null, which the Bot API rejects.
	cfg.SuggestedTipAmounts = []int{}

	_, err := m.api.Send(cfg)
	return err
}

func (m *Messenger) AnswerPrecheck(_ context.Context, queryID string, ok bool, errorMessage string) error {
	_, err := m.api.Request(tgbotapi.PreCheckoutConfig{
		PreCheckoutQueryID: queryID,
		OK:                 ok,
		ErrorMessage:       errorMessage,
	})
	return err
}
