package types

// BreakerState represents the circuit breaker state of a provider
type BreakerState string

const (
	// BreakerClosed is the normal operating state
	BreakerClosed BreakerState = "CLOSED"
	// BreakerOpen means the provider is failing and should be skipped
	// until the cooldown elapses
	BreakerOpen BreakerState = "OPEN"
	// BreakerHalfOpen allows a single trial call to probe recovery
	BreakerHalfOpen BreakerState = "HALF_OPEN"
)

// AllBreakerStates returns all valid breaker states
func AllBreakerStates() []BreakerState {
	return []BreakerState{
		BreakerClosed,
		BreakerOpen,
		BreakerHalfOpen,
	}
}

// IsValid checks if the breaker state is valid
func (s BreakerState) IsValid() bool {
	switch s {
	case BreakerClosed, BreakerOpen, BreakerHalfOpen:
		return true
	default:
		return false
	}
}

// Normalize returns the state, treating empty as BreakerClosed so that a
// provider with no stored record starts in the normal operating state.
func (s BreakerState) Normalize() BreakerState {
	if s == "" {
		return BreakerClosed
	}
	return s
}

// String returns the string representation of the breaker state
func (s BreakerState) String() string {
	return string(s)
}
