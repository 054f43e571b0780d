package appointment

import (
	"time"

	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	// MinGap is the minimum distance between two bookings of the same doctor.
	MinGap = time.Hour
)

var dailySlots = []string{
	"10:00", "11:00", "12:00",
	"13:00", "14:00", "15:00",
	"16:00",
}

// AllSlots returns a fresh copy of the bookable start times of a day.
func AllSlots() []string {
	out := make([]string, len(dailySlots))
	copy(out, dailySlots)
	return out
}

// Availability is what the booking page renders for a doctor and day.
type Availability struct {
	AvailableSlots []string `json:"availableSlots"`
	AllSlots       []string `json:"allSlots"`
}

// AvailableSlots keeps the slots at least MinGap away from every existing time.
func AvailableSlots(existing []string) []string {
	out := make([]string, 0, len(dailySlots))
	for _, slot := range dailySlots {
		if !Conflicts(slot, existing) {
			out = append(out, slot)
		}
	}
	return out
}

// Conflicts reports whether candidate is strictly closer than MinGap to any
// existing time. Times are compared on the same reference day; entries that do
// not parse never conflict.
func Conflicts(candidate string, existing []string) bool {
	c, err := time.Parse(ClockLayout, candidate)
	if err != nil {
		return false
	}

	for _, e := range existing {
		t, err := time.Parse(ClockLayout, e)
		if err != nil {
			continue
		}
		diff := c.Sub(t)
		if diff < 0 {
			diff = -diff
		}
		if diff < MinGap {
			return true
		}
	}
	return false
}

func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, httperr.ErrValidation("invalid_date", "Date must be in YYYY-MM-DD format")
	}
	return d, nil
}

func ParseClock(s string) (time.Time, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return time.Time{}, httperr.ErrValidation("invalid_time", "Time must be in HH:MM format")
	}
	return t, nil
}
