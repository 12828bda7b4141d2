package protocol

import (
	"fmt"
	"time"

	"github.com/brandon-salgado205n/DeFi-Builder-Game/crypto"
)

// ActionClass partitions cooldown tracking. Each address has an
// independent cooldown record per class.
type ActionClass string

const (
	// ActionSubmission covers collateral and debt submissions.
	ActionSubmission ActionClass = "submission"

	// ActionDecryptionRequest covers solvency decryption requests.
	ActionDecryptionRequest ActionClass = "decryption-request"
)

// RateLimiter enforces one configurable cooldown window per address and
// action class. Check and Record are split so callers can validate the
// window before committing an operation and record only on success,
// keeping operations all-or-nothing.
//
// Not safe for concurrent use on its own; the Service serializes access.
type RateLimiter struct {
	window time.Duration
	last   map[string]time.Time
}

// NewRateLimiter creates a limiter with the given cooldown window.
func NewRateLimiter(window time.Duration) *RateLimiter {
	return &RateLimiter{
		window: window,
		last:   make(map[string]time.Time),
	}
}

// Window returns the current cooldown window.
func (l *RateLimiter) Window() time.Duration {
	return l.window
}

// SetWindow changes the cooldown window. Takes effect for all
// subsequent checks; recorded timestamps are not rewritten.
func (l *RateLimiter) SetWindow(window time.Duration) {
	l.window = window
}

// Check fails with ErrCooldownActive if the window since the last
// recorded action of this class has not elapsed. It does not record.
func (l *RateLimiter) Check(addr crypto.Address, class ActionClass, now time.Time) error {
	lastAction, ok := l.last[cooldownKey(addr, class)]
	if !ok {
		return nil
	}
	nextAllowed := lastAction.Add(l.window)
	if now.Before(nextAllowed) {
		return fmt.Errorf("%w: next %s allowed at %s",
			ErrCooldownActive, class, nextAllowed.UTC().Format(time.RFC3339))
	}
	return nil
}

// Record stores now as the last action time for (addr, class). Called
// only after the operation's state change has committed.
func (l *RateLimiter) Record(addr crypto.Address, class ActionClass, now time.Time) {
	l.last[cooldownKey(addr, class)] = now
}

// CheckAndRecord combines Check and Record for callers without a
// separate commit point.
func (l *RateLimiter) CheckAndRecord(addr crypto.Address, class ActionClass, now time.Time) error {
	if err := l.Check(addr, class, now); err != nil {
		return err
	}
	l.Record(addr, class, now)
	return nil
}

func cooldownKey(addr crypto.Address, class ActionClass) string {
	return addr.String() + "/" + string(class)
}
