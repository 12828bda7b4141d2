package protocol_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brandon-salgado205n/DeFi-Builder-Game/crypto"
	"github.com/brandon-salgado205n/DeFi-Builder-Game/protocol"
	"github.com/brandon-salgado205n/DeFi-Builder-Game/testutil"
)

// submitAll pushes one collateral and one debt value for addr, advancing
// the clock past the cooldown between the two submissions.
func submitAll(t *testing.T, f *testutil.Fixture, addr crypto.Address, batch uint64, collateral, debt uint64) {
	t.Helper()
	require.NoError(t, f.Service.SubmitCollateral(addr, batch, f.EncryptUint(t, collateral)))
	f.Clock.Advance(f.Service.CooldownWindow() + time.Second)
	require.NoError(t, f.Service.SubmitDebt(addr, batch, f.EncryptUint(t, debt)))
	f.Clock.Advance(f.Service.CooldownWindow() + time.Second)
}

func revealTotals(t *testing.T, f *testutil.Fixture, batch uint64) (collateral, debt uint64) {
	t.Helper()
	b, err := f.Service.BatchInfo(batch)
	require.NoError(t, err)
	c, err := f.Engine.RevealUint(b.Collateral)
	require.NoError(t, err)
	d, err := f.Engine.RevealUint(b.Debt)
	require.NoError(t, err)
	return c.Uint64(), d.Uint64()
}

func TestSubmissionAccumulatesTotals(t *testing.T) {
	f := testutil.NewFixture(t)
	alice := testutil.Address(2)
	bob := testutil.Address(3)
	f.AddProvider(t, alice)
	f.AddProvider(t, bob)
	batch := f.OpenBatch(t)

	submitAll(t, f, alice, batch, 70, 20)
	submitAll(t, f, bob, batch, 30, 40)

	coll, debt := revealTotals(t, f, batch)
	require.Equal(t, uint64(100), coll)
	require.Equal(t, uint64(60), debt)
}

func TestSubmissionOrderIndependent(t *testing.T) {
	values := []uint64{70, 30, 5}

	run := func(order []int) (uint64, uint64) {
		f := testutil.NewFixture(t, testutil.WithCooldown(0))
		batch := f.OpenBatch(t)
		providers := make([]crypto.Address, len(values))
		for i := range values {
			providers[i] = testutil.Address(byte(10 + i))
			f.AddProvider(t, providers[i])
		}
		for _, i := range order {
			require.NoError(t, f.Service.SubmitCollateral(providers[i], batch, f.EncryptUint(t, values[i])))
		}
		return revealTotals(t, f, batch)
	}

	c1, _ := run([]int{0, 1, 2})
	c2, _ := run([]int{2, 0, 1})
	require.Equal(t, c1, c2)
	require.Equal(t, uint64(105), c1)
}

func TestResubmissionOverwritesHandleButAccumulatesTotal(t *testing.T) {
	f := testutil.NewFixture(t, testutil.WithCooldown(0))
	alice := testutil.Address(2)
	f.AddProvider(t, alice)
	batch := f.OpenBatch(t)

	first := f.EncryptUint(t, 10)
	second := f.EncryptUint(t, 25)
	require.NoError(t, f.Service.SubmitCollateral(alice, batch, first))
	require.NoError(t, f.Service.SubmitCollateral(alice, batch, second))

	sub, ok := f.Service.SubmissionFor(batch, alice)
	require.True(t, ok)
	require.True(t, sub.Collateral.Equal(second), "stored handle is the latest submission")

	coll, _ := revealTotals(t, f, batch)
	require.Equal(t, uint64(35), coll, "running total keeps both contributions")
}

func TestSubmitRequiresProvider(t *testing.T) {
	f := testutil.NewFixture(t)
	batch := f.OpenBatch(t)

	err := f.Service.SubmitCollateral(testutil.Address(9), batch, f.EncryptUint(t, 1))
	require.ErrorIs(t, err, protocol.ErrNotProvider)
}

func TestSubmitRequiresOpenBatch(t *testing.T) {
	f := testutil.NewFixture(t, testutil.WithCooldown(0))
	alice := testutil.Address(2)
	f.AddProvider(t, alice)

	// No batch opened yet.
	err := f.Service.SubmitCollateral(alice, 1, f.EncryptUint(t, 1))
	require.ErrorIs(t, err, protocol.ErrUnknownBatch)

	batch := f.OpenBatch(t)
	_, err = f.Service.CloseBatch(f.Owner)
	require.NoError(t, err)

	err = f.Service.SubmitCollateral(alice, batch, f.EncryptUint(t, 1))
	require.ErrorIs(t, err, protocol.ErrBatchNotOpen)
}

func TestSubmitRejectsUninitializedCiphertext(t *testing.T) {
	f := testutil.NewFixture(t)
	alice := testutil.Address(2)
	f.AddProvider(t, alice)
	batch := f.OpenBatch(t)

	unknown := make(crypto.Handle, crypto.HandleSize)
	unknown[0] = 0xff
	err := f.Service.SubmitCollateral(alice, batch, unknown)
	require.ErrorIs(t, err, protocol.ErrUninitializedCiphertext)

	err = f.Service.SubmitDebt(alice, batch, nil)
	require.ErrorIs(t, err, protocol.ErrUninitializedCiphertext)
}

func TestSubmissionCooldown(t *testing.T) {
	f := testutil.NewFixture(t, testutil.WithCooldown(60*time.Second))
	alice := testutil.Address(2)
	f.AddProvider(t, alice)
	batch := f.OpenBatch(t)

	require.NoError(t, f.Service.SubmitCollateral(alice, batch, f.EncryptUint(t, 10)))

	// Immediate retry and a retry mid-window both fail; debt shares the
	// submission class with collateral.
	err := f.Service.SubmitCollateral(alice, batch, f.EncryptUint(t, 10))
	require.ErrorIs(t, err, protocol.ErrCooldownActive)
	f.Clock.Advance(30 * time.Second)
	err = f.Service.SubmitDebt(alice, batch, f.EncryptUint(t, 5))
	require.ErrorIs(t, err, protocol.ErrCooldownActive)

	f.Clock.Advance(31 * time.Second)
	require.NoError(t, f.Service.SubmitDebt(alice, batch, f.EncryptUint(t, 5)))
}

func TestFailedSubmissionLeavesNoCooldown(t *testing.T) {
	f := testutil.NewFixture(t, testutil.WithCooldown(60*time.Second))
	alice := testutil.Address(2)
	f.AddProvider(t, alice)
	batch := f.OpenBatch(t)

	// Fails late in the guard chain, after the rate-limit check.
	err := f.Service.SubmitCollateral(alice, batch, nil)
	require.ErrorIs(t, err, protocol.ErrUninitializedCiphertext)

	// The failed attempt must not have started a cooldown.
	require.NoError(t, f.Service.SubmitCollateral(alice, batch, f.EncryptUint(t, 10)))
}

func TestSetCooldown(t *testing.T) {
	f := testutil.NewFixture(t)
	alice := testutil.Address(2)
	f.AddProvider(t, alice)
	batch := f.OpenBatch(t)

	err := f.Service.SetCooldown(alice, time.Second)
	require.ErrorIs(t, err, protocol.ErrNotOwner)

	require.NoError(t, f.Service.SetCooldown(f.Owner, 10*time.Second))
	require.Equal(t, 10*time.Second, f.Service.CooldownWindow())

	require.NoError(t, f.Service.SubmitCollateral(alice, batch, f.EncryptUint(t, 1)))
	f.Clock.Advance(10 * time.Second)
	require.NoError(t, f.Service.SubmitCollateral(alice, batch, f.EncryptUint(t, 1)))
}

func TestPauseBlocksOperations(t *testing.T) {
	f := testutil.NewFixture(t, testutil.WithCooldown(0))
	alice := testutil.Address(2)
	f.AddProvider(t, alice)
	batch := f.OpenBatch(t)
	require.NoError(t, f.Service.SubmitCollateral(alice, batch, f.EncryptUint(t, 42)))

	require.NoError(t, f.Service.Pause(f.Owner))

	err := f.Service.SubmitCollateral(alice, batch, f.EncryptUint(t, 1))
	require.ErrorIs(t, err, protocol.ErrPaused)
	err = f.Service.SubmitDebt(alice, batch, f.EncryptUint(t, 1))
	require.ErrorIs(t, err, protocol.ErrPaused)
	err = f.Service.CalculateSolvency(alice, batch)
	require.ErrorIs(t, err, protocol.ErrPaused)
	_, err = f.Service.RequestSolvencyDecryption(alice, batch)
	require.ErrorIs(t, err, protocol.ErrPaused)
	_, err = f.Service.CloseBatch(f.Owner)
	require.ErrorIs(t, err, protocol.ErrPaused)
	_, err = f.Service.OpenBatch(f.Owner)
	require.ErrorIs(t, err, protocol.ErrPaused)

	// Configuration stays available while paused.
	require.NoError(t, f.Service.SetCooldown(f.Owner, time.Minute))
	require.NoError(t, f.Service.AddProvider(f.Owner, testutil.Address(3)))

	// Unpausing restores operation with totals intact.
	require.NoError(t, f.Service.Unpause(f.Owner))
	require.NoError(t, f.Service.SetCooldown(f.Owner, 0))
	require.NoError(t, f.Service.SubmitCollateral(alice, batch, f.EncryptUint(t, 8)))
	coll, _ := revealTotals(t, f, batch)
	require.Equal(t, uint64(50), coll)
}

// failingCompareEngine delegates to the in-memory engine but rejects
// every comparison, standing in for an encryption backend outage.
type failingCompareEngine struct {
	*protocol.InMemoryCipherEngine
}

func (e failingCompareEngine) GreaterOrEqual(a, b crypto.Handle) (crypto.Handle, error) {
	return nil, errors.New("compare backend unavailable")
}

func TestCloseBatchLeavesBatchOpenWhenCompareFails(t *testing.T) {
	engine := protocol.NewInMemoryCipherEngine()
	oracle, err := protocol.NewLocalOracle(engine)
	require.NoError(t, err)

	owner := testutil.Address(1)
	svc, err := protocol.NewService(protocol.DefaultLedgerConfig(),
		crypto.DeriveIdentity([]byte("test ledger")), owner,
		failingCompareEngine{engine}, oracle,
		protocol.NewOracleAttestor(oracle.PublicKey()),
		testutil.NewFakeClock(time.Unix(1_700_000_000, 0)))
	require.NoError(t, err)

	opened, err := svc.OpenBatch(owner)
	require.NoError(t, err)

	_, err = svc.CloseBatch(owner)
	require.Error(t, err)

	// The failed close must not half-apply: the batch stays open and no
	// closure event is recorded.
	id, open := svc.OpenBatchID()
	require.True(t, open)
	require.Equal(t, opened, id)
	for _, ev := range svc.Events() {
		require.NotEqual(t, protocol.EventBatchClosed, ev.Kind)
	}
}
