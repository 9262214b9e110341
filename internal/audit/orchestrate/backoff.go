package orchestrate

import "time"

// Backoff computes the wait before retrying the same strategy.
type Backoff interface {
	// Delay returns the wait after the given failed attempt (1-based).
	Delay(attemptIndex int) time.Duration
}

// LinearBackoff waits attemptIndex * Base, capped at Max. Linear rather than
// exponential: attempts per strategy are few and the escalation pressure
// lives in the strategy ordering, not the delay curve.
type LinearBackoff struct {
	Base time.Duration
	Max  time.Duration
}

func (b LinearBackoff) Delay(attemptIndex int) time.Duration {
	if attemptIndex < 1 {
		attemptIndex = 1
	}
	d := time.Duration(attemptIndex) * b.Base
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}
