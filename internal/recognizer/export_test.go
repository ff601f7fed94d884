package recognizer

import "time"

// ParseResponse exposes parseResponse for tests.
var ParseResponse = parseResponse

// ExtractJSON exposes extractJSON for tests.
var ExtractJSON = extractJSON

// SetNow overrides the clock for tests and returns a restore func.
func SetNow(f func() time.Time) func() {
	prev := now
	now = f

	return func() { now = prev }
}
