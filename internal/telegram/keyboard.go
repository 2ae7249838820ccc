package telegram

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/hotelbot/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var weekdays = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

func roomKeyboard(categories []domain.RoomCategory) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(categories))
	for _, c := range categories {
		label := fmt.Sprintf("%s - %s/night", c.Name, domain.FormatPrice(c.NightlyPrice))
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, roomCallback(c.Type)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func confirmKeyboard(bookingID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Confirm & Pay", payCallback(bookingID))),
	)
}

// calendarKeyboard renders one month, weeks starting on Monday. Every
// button that is not a day or an arrow carries the no-op callback.
func calendarKeyboard(month time.Time) tgbotapi.InlineKeyboardMarkup {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	noop := func(text string) tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardButtonData(text, callbackNoop)
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(noop(first.Format("January 2006"))),
	}

	header := make([]tgbotapi.InlineKeyboardButton, 0, len(weekdays))
	for _, d := range weekdays {
		header = append(header, noop(d))
	}
	rows = append(rows, header)

	offset := (int(first.Weekday()) + 6) % 7
	daysInMonth := first.AddDate(0, 1, -1).Day()

	week := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for i := 0; i < offset; i++ {
		week = append(week, noop(" "))
	}
	for d := 1; d <= daysInMonth; d++ {
		day := first.AddDate(0, 0, d-1)
		week = append(week, tgbotapi.NewInlineKeyboardButtonData(strconv.Itoa(d), dayCallback(day)))
		if len(week) == 7 {
			rows = append(rows, week)
			week = make([]tgbotapi.InlineKeyboardButton, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, noop(" "))
		}
		rows = append(rows, week)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("<<", navCallback(first.AddDate(0, -1, 0))),
		noop(" "),
		tgbotapi.NewInlineKeyboardButtonData(">>", navCallback(first.AddDate(0, 1, 0))),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
