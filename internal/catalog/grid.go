package catalog

import (
	"fmt"
	"time"
)

// DateLayout is the canonical calendar date format.
const DateLayout = "2006-01-02"

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock accepts strict HH:MM.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(b []byte) error {
	v, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// On returns the instant this clock time falls on for the given date in loc.
func (c Clock) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, int(c)/60, int(c)%60, 0, 0, loc)
}

// SlotGrid is the set of bookable start times within a business day.
type SlotGrid struct {
	Interval int // minutes
	Opening  Clock
	Closing  Clock
}

func NewSlotGrid(intervalMinutes int, opening, closing string) (SlotGrid, error) {
	if intervalMinutes <= 0 {
		return SlotGrid{}, fmt.Errorf("slot interval must be > 0")
	}
	open, err := ParseClock(opening)
	if err != nil {
		return SlotGrid{}, fmt.Errorf("opening: %w", err)
	}
	closeAt, err := ParseClock(closing)
	if err != nil {
		return SlotGrid{}, fmt.Errorf("closing: %w", err)
	}
	if closeAt <= open {
		return SlotGrid{}, fmt.Errorf("closing %s must be after opening %s", closeAt, open)
	}
	return SlotGrid{Interval: intervalMinutes, Opening: open, Closing: closeAt}, nil
}

// Contains reports whether c is a slot start on the grid.
func (g SlotGrid) Contains(c Clock) bool {
	if c < g.Opening || c >= g.Closing {
		return false
	}
	return int(c-g.Opening)%g.Interval == 0
}

// Slots lists every start time of the day in order.
func (g SlotGrid) Slots() []Clock {
	var out []Clock
	for c := g.Opening; c < g.Closing; c += Clock(g.Interval) {
		out = append(out, c)
	}
	return out
}
