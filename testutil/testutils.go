// Package testutil provides fixtures for exercising the ledger core:
// deterministic addresses, a manually advanced clock, and a fully wired
// service backed by the in-memory cipher engine and local oracle.
package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brandon-salgado205n/DeFi-Builder-Game/crypto"
	"github.com/brandon-salgado205n/DeFi-Builder-Game/protocol"
)

// FakeClock is a Clock whose time only moves when a test advances it.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock starting at the given instant.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the clock's current instant.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Address returns a deterministic test address whose last byte is n.
func Address(n byte) crypto.Address {
	raw := make([]byte, crypto.AddressSize)
	raw[crypto.AddressSize-1] = n
	return crypto.NewAddressFromBytes(raw)
}

// Fixture is a fully wired ledger service with its fakes exposed.
type Fixture struct {
	Service *protocol.Service
	Engine  *protocol.InMemoryCipherEngine
	Oracle  *protocol.LocalOracle
	Owner   crypto.Address
	Clock   *FakeClock
}

// Option customizes a fixture.
type Option func(*protocol.LedgerConfig)

// WithCooldown sets the initial cooldown window.
func WithCooldown(d time.Duration) Option {
	return func(cfg *protocol.LedgerConfig) {
		cfg.Cooldown = d
	}
}

// NewFixture builds a ledger service with deterministic identity and
// owner, an in-memory engine, and a local oracle.
func NewFixture(t *testing.T, opts ...Option) *Fixture {
	t.Helper()

	cfg := protocol.DefaultLedgerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	engine := protocol.NewInMemoryCipherEngine()
	oracle, err := protocol.NewLocalOracle(engine)
	require.NoError(t, err)

	owner := Address(1)
	clock := NewFakeClock(time.Unix(1_700_000_000, 0))

	svc, err := protocol.NewService(cfg,
		crypto.DeriveIdentity([]byte("test ledger")), owner,
		engine, oracle, protocol.NewOracleAttestor(oracle.PublicKey()), clock)
	require.NoError(t, err)

	return &Fixture{
		Service: svc,
		Engine:  engine,
		Oracle:  oracle,
		Owner:   owner,
		Clock:   clock,
	}
}

// EncryptUint mints a ciphertext on the fixture engine, failing the
// test on error.
func (f *Fixture) EncryptUint(t *testing.T, v uint64) crypto.Handle {
	t.Helper()
	h, err := f.Engine.EncryptUint(v)
	require.NoError(t, err)
	return h
}

// AddProvider registers addr as a provider via the owner.
func (f *Fixture) AddProvider(t *testing.T, addr crypto.Address) {
	t.Helper()
	require.NoError(t, f.Service.AddProvider(f.Owner, addr))
}

// OpenBatch opens a batch via the owner and returns its id.
func (f *Fixture) OpenBatch(t *testing.T) uint64 {
	t.Helper()
	id, err := f.Service.OpenBatch(f.Owner)
	require.NoError(t, err)
	return id
}
