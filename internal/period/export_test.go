package period

import "time"

// SetNow overrides the clock for tests and returns a restore func.
func SetNow(f func() time.Time) func() {
	prev := now
	now = f

	return func() { now = prev }
}
