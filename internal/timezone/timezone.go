// Package timezone is the clinic's wall clock. Appointment dates and times are
// stored without a zone and always read in the clinic's.
package timezone

import (
	"fmt"
	"time"
)

const DefaultTimezone = "Asia/Kathmandu"

const wallLayout = "2006-01-02 15:04"

type Clinic struct {
	loc *time.Location
	now func() time.Time
}

// Load resolves name. An empty or unknown name still returns a usable clinic
// on DefaultTimezone (UTC when even that is missing), together with an error
// saying so.
func Load(name string) (*Clinic, error) {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return &Clinic{loc: loc, now: time.Now}, nil
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		loc = time.UTC
	}
	return &Clinic{loc: loc, now: time.Now}, fmt.Errorf("unknown timezone %q, using %s", name, loc)
}

// Fixed builds a clinic on loc whose clock is now.
func Fixed(loc *time.Location, now func() time.Time) *Clinic {
	return &Clinic{loc: loc, now: now}
}

func (c *Clinic) Location() *time.Location {
	return c.loc
}

func (c *Clinic) Now() time.Time {
	return c.now().In(c.loc)
}

// At reads a stored date ("2006-01-02") and clock ("15:04") in the clinic's zone.
func (c *Clinic) At(date, clock string) (time.Time, error) {
	return time.ParseInLocation(wallLayout, date+" "+clock, c.loc)
}

// Passed reports whether date and clock are already behind the clinic's clock.
func (c *Clinic) Passed(date, clock string) (bool, error) {
	start, err := c.At(date, clock)
	if err != nil {
		return false, err
	}
	return start.Before(c.Now()), nil
}
