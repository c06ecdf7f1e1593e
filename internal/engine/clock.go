package engine

import (
	"time"

	"wantly/internal/models"
)

// dayKeyLayout is the canonical day-key format shared by budget resets and
// history bucketing.
const dayKeyLayout = "2006-01-02"

// ClockSource abstracts time for the engine so tests can pin "today" and the
// day-boundary timezone policy stays in one place.
type ClockSource interface {
	Now() time.Time
	// DayKey returns the calendar-day key for t in the clock's location.
	DayKey(t time.Time) models.DayKey
	// Today is shorthand for DayKey(Now()).
	Today() models.DayKey
}

// SystemClock is the production ClockSource. The location decides where the
// day boundary falls: device-local by default, UTC when configured.
type SystemClock struct {
	loc *time.Location
}

// NewSystemClock returns a clock cutting days in the given location.
// A nil location falls back to time.Local.
func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = time.Local
	}
	return &SystemClock{loc: loc}
}

func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *SystemClock) DayKey(t time.Time) models.DayKey {
	return t.In(c.loc).Format(dayKeyLayout)
}

func (c *SystemClock) Today() models.DayKey {
	return c.DayKey(time.Now())
}
