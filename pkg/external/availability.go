package external

import (
	"sync"
	"time"
)

// DefaultRetryCooldown is how long an unavailable scorer is left alone
// before it is probed again.
const DefaultRetryCooldown = 5 * time.Minute

// Availability remembers the last probe of the remote scorer. It is owned by
// a ScorerClient and safe for concurrent use. Concurrent re-probes are not
// suppressed; the last recorded probe wins.
type Availability struct {
	mu        sync.RWMutex
	known     bool
	available bool
	forced    bool
	lastCheck time.Time
	lastErr   string
	cooldown  time.Duration
	now       func() time.Time
}

// NewAvailability creates an availability state with the given cooldown.
func NewAvailability(cooldown time.Duration) *Availability {
	if cooldown <= 0 {
		cooldown = DefaultRetryCooldown
	}
	return &Availability{cooldown: cooldown, now: time.Now}
}

// NeedsProbe reports whether the cached state is stale: nothing probed yet,
// a re-probe was forced, or the scorer was down and the cooldown elapsed.
func (a *Availability) NeedsProbe() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	switch {
	case !a.known, a.forced:
		return true
	case a.available:
		return false
	default:
		return a.now().Sub(a.lastCheck) >= a.cooldown
	}
}

// Record stores a probe outcome.
func (a *Availability) Record(available bool, reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.known = true
	a.available = available
	a.forced = false
	a.lastCheck = a.now()
	if available {
		a.lastErr = ""
	} else {
		a.lastErr = reason
	}
}

// MarkFailed records a failed call. The scorer counts as unavailable and the
// next availability check probes immediately.
func (a *Availability) MarkFailed(reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.known = true
	a.available = false
	a.forced = true
	a.lastErr = reason
}

// Available returns the cached availability without probing.
func (a *Availability) Available() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.available
}

// AvailabilitySnapshot is a point-in-time copy of the availability state.
type AvailabilitySnapshot struct {
	Known     bool      `json:"known"`
	Available bool      `json:"available"`
	LastCheck time.Time `json:"lastCheck"`
	LastError string    `json:"lastError,omitempty"`
}

// Snapshot returns a copy of the current state.
func (a *Availability) Snapshot() AvailabilitySnapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return AvailabilitySnapshot{
		Known:     a.known,
		Available: a.available,
		LastCheck: a.lastCheck,
		LastError: a.lastErr,
	}
}
