package clock

import (
	"time"

	"shareit/shared/timezone"
)

// Clock supplies the current instant used for temporal classification of
// bookings. Injected so services can be tested against a pinned "now".
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return timezone.Now()
}

func New() Clock {
	return systemClock{}
}

type fixedClock struct {
	instant time.Time
}

func (c fixedClock) Now() time.Time {
	return c.instant
}

// Fixed returns a Clock pinned to the given instant.
func Fixed(instant time.Time) Clock {
	return fixedClock{instant: instant}
}
