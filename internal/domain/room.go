package domain

import "fmt"

type RoomType string

const (
	RoomSingle RoomType = "single"
	RoomDouble RoomType = "double"
	RoomSuite  RoomType = "suite"
)

// Currency is the only currency invoices are issued in.
const Currency = "USD"

type RoomCategory struct {
	Type         RoomType
	Name         string
	NightlyPrice int64
}

// PriceTable maps room types to their nightly price. It is built once at
// startup and never mutated afterwards, so it is safe for concurrent reads.
type PriceTable struct {
	order  []RoomType
	byType map[RoomType]RoomCategory
}

func NewPriceTable(categories ...RoomCategory) *PriceTable {
	t := &PriceTable{byType: make(map[RoomType]RoomCategory, len(categories))}
	for _, c := range categories {
		if _, dup := t.byType[c.Type]; dup {
			continue
		}
		t.order = append(t.order, c.Type)
		t.byType[c.Type] = c
	}
	return t
}

func DefaultPriceTable() *PriceTable {
	return NewPriceTable(
		RoomCategory{Type: RoomSingle, Name: "Single Room", NightlyPrice: 7900},
		RoomCategory{Type: RoomDouble, Name: "Double Room", NightlyPrice: 12900},
		RoomCategory{Type: RoomSuite, Name: "Luxury Suite", NightlyPrice: 29900},
	)
}

func (t *PriceTable) Lookup(room RoomType) (RoomCategory, bool) {
	c, ok := t.byType[room]
	return c, ok
}

// Resolve is Lookup for callers that treat a missing room as an error.
func (t *PriceTable) Resolve(room RoomType) (RoomCategory, error) {
	c, ok := t.byType[room]
	if !ok {
		return RoomCategory{}, fmt.Errorf("%w: %q", ErrUnknownRoom, room)
	}
	return c, nil
}

// Categories returns the categories in menu order.
func (t *PriceTable) Categories() []RoomCategory {
	out := make([]RoomCategory, 0, len(t.order))
	for _, r := range t.order {
		out = append(out, t.byType[r])
	}
	return out
}

// FormatPrice renders minor units as dollars, e.g. 38700 -> "$387.00".
func FormatPrice(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s$%d.%02d", sign, minor/100, minor%100)
}
