package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brandon-salgado205n/DeFi-Builder-Game/crypto"
)

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(60 * time.Second)
	addr, err := crypto.NewAddressFromString("0x0101010101010101010101010101010101010101")
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)

	// First action is always allowed.
	require.NoError(t, rl.Check(addr, ActionSubmission, now))
	rl.Record(addr, ActionSubmission, now)

	// Repeat at t=0 and mid-window fails.
	require.ErrorIs(t, rl.Check(addr, ActionSubmission, now), ErrCooldownActive)
	require.ErrorIs(t, rl.Check(addr, ActionSubmission, now.Add(30*time.Second)), ErrCooldownActive)

	// Exact boundary is allowed again.
	require.NoError(t, rl.Check(addr, ActionSubmission, now.Add(60*time.Second)))
	require.NoError(t, rl.Check(addr, ActionSubmission, now.Add(61*time.Second)))
}

func TestRateLimiterClassesIndependent(t *testing.T) {
	rl := NewRateLimiter(60 * time.Second)
	addr, err := crypto.NewAddressFromString("0x0202020202020202020202020202020202020202")
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	rl.Record(addr, ActionSubmission, now)

	// A submission cooldown does not block a decryption request.
	require.NoError(t, rl.Check(addr, ActionDecryptionRequest, now))
}

func TestRateLimiterAddressesIndependent(t *testing.T) {
	rl := NewRateLimiter(60 * time.Second)
	a, err := crypto.NewAddressFromString("0x0101010101010101010101010101010101010101")
	require.NoError(t, err)
	b, err := crypto.NewAddressFromString("0x0202020202020202020202020202020202020202")
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	rl.Record(a, ActionSubmission, now)
	require.NoError(t, rl.Check(b, ActionSubmission, now))
}

func TestRateLimiterSetWindow(t *testing.T) {
	rl := NewRateLimiter(60 * time.Second)
	addr, err := crypto.NewAddressFromString("0x0303030303030303030303030303030303030303")
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	rl.Record(addr, ActionSubmission, now)

	// Shrinking the window applies to already-recorded actions.
	rl.SetWindow(10 * time.Second)
	require.NoError(t, rl.Check(addr, ActionSubmission, now.Add(10*time.Second)))

	// A zero window disables the cooldown entirely.
	rl.SetWindow(0)
	rl.Record(addr, ActionSubmission, now)
	require.NoError(t, rl.Check(addr, ActionSubmission, now))
}
