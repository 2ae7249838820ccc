package conversation

import "time"

// Event is something the user did. The set is closed: only the types in
// this file implement it.
type Event interface {
	event()
}

type StartCommand struct{}

type RoomSelected struct {
	Room string
}

type DateSelected struct {
	Date time.Time
}

// CalendarNavigated moves the date picker to another month without
// selecting anything.
type CalendarNavigated struct {
	Year  int
	Month time.Month
}

type ConfirmPressed struct {
	BookingID string
}

func (StartCommand) event()      {}
func (RoomSelected) event()      {}
func (DateSelected) event()      {}
func (CalendarNavigated) event() {}
func (ConfirmPressed) event()    {}

type ReplyKind int

const (
	ReplyNone ReplyKind = iota
	ReplyRoomMenu
	ReplyCalendar
	ReplySummary
	ReplyAlert
	ReplyText
)

func (k ReplyKind) String() string {
	switch k {
	case ReplyRoomMenu:
		return "room_menu"
	case ReplyCalendar:
		return "calendar"
	case ReplySummary:
		return "summary"
	case ReplyAlert:
		return "alert"
	case ReplyText:
		return "text"
	default:
		return "none"
	}
}

// Reply tells the transport what to show. Text is HTML; an empty Text on a
// calendar reply means the current message text stays.
type Reply struct {
	Kind ReplyKind
	Text string
	// Month is the first day of the month a calendar should display.
	Month     time.Time
	BookingID string
}
