package download

import (
	"math"
	"time"
)

// Backoff returns the pause before retry number attempt: the cooldown
// doubled for every retry already made, capped at max.
//
// With the default 750ms cooldown and 8s cap the progression is 750ms,
// 1.5s, 3s, 6s, 8s, 8s, ...
func Backoff(attempt int, cooldown, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(cooldown) * math.Pow(2, float64(attempt-1))
	if max > 0 && delay > float64(max) {
		return max
	}
	return time.Duration(delay)
}
