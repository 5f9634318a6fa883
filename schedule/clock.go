package schedule

import "time"

// Clock abstracts wall-clock access so job timing can be tested
// deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by time.Now in UTC.
func SystemClock() Clock { return systemClock{} }
