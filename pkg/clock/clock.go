package clock

import (
	"time"
)

// Clock is an interface around time.Now(). It allows the current time
// to be mocked in unit tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (c systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock is a Clock that returns the current time of the host
// system.
var SystemClock Clock = systemClock{}
