package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brandon-salgado205n/DeFi-Builder-Game/protocol"
	"github.com/brandon-salgado205n/DeFi-Builder-Game/testutil"
)

func revealSolvency(t *testing.T, f *testutil.Fixture, batch uint64) bool {
	t.Helper()
	b, err := f.Service.BatchInfo(batch)
	require.NoError(t, err)
	solvent, err := f.Engine.RevealBool(b.Solvency)
	require.NoError(t, err)
	return solvent
}

func TestCalculateSolvencySolvent(t *testing.T) {
	f := testutil.NewFixture(t, testutil.WithCooldown(0))
	alice := testutil.Address(2)
	f.AddProvider(t, alice)
	batch := f.OpenBatch(t)

	require.NoError(t, f.Service.SubmitCollateral(alice, batch, f.EncryptUint(t, 100)))
	require.NoError(t, f.Service.SubmitDebt(alice, batch, f.EncryptUint(t, 80)))

	require.NoError(t, f.Service.CalculateSolvency(alice, batch))
	require.True(t, revealSolvency(t, f, batch))
}

func TestCalculateSolvencyInsolvent(t *testing.T) {
	f := testutil.NewFixture(t, testutil.WithCooldown(0))
	alice := testutil.Address(2)
	f.AddProvider(t, alice)
	batch := f.OpenBatch(t)

	require.NoError(t, f.Service.SubmitCollateral(alice, batch, f.EncryptUint(t, 50)))
	require.NoError(t, f.Service.SubmitDebt(alice, batch, f.EncryptUint(t, 80)))

	require.NoError(t, f.Service.CalculateSolvency(alice, batch))
	require.False(t, revealSolvency(t, f, batch))
}

func TestCalculateSolvencyEqualTotalsIsSolvent(t *testing.T) {
	f := testutil.NewFixture(t, testutil.WithCooldown(0))
	alice := testutil.Address(2)
	f.AddProvider(t, alice)
	batch := f.OpenBatch(t)

	require.NoError(t, f.Service.SubmitCollateral(alice, batch, f.EncryptUint(t, 80)))
	require.NoError(t, f.Service.SubmitDebt(alice, batch, f.EncryptUint(t, 80)))

	require.NoError(t, f.Service.CalculateSolvency(alice, batch))
	require.True(t, revealSolvency(t, f, batch))
}

func TestCalculateSolvencyRecomputes(t *testing.T) {
	f := testutil.NewFixture(t, testutil.WithCooldown(0))
	alice := testutil.Address(2)
	f.AddProvider(t, alice)
	batch := f.OpenBatch(t)

	require.NoError(t, f.Service.SubmitCollateral(alice, batch, f.EncryptUint(t, 100)))
	require.NoError(t, f.Service.SubmitDebt(alice, batch, f.EncryptUint(t, 80)))
	require.NoError(t, f.Service.CalculateSolvency(alice, batch))
	require.True(t, revealSolvency(t, f, batch))

	// More debt flips the flag on the next calculation.
	require.NoError(t, f.Service.SubmitDebt(alice, batch, f.EncryptUint(t, 30)))
	require.NoError(t, f.Service.CalculateSolvency(alice, batch))
	require.False(t, revealSolvency(t, f, batch))
}

func TestCloseBatchSnapshotsSolvency(t *testing.T) {
	f := testutil.NewFixture(t, testutil.WithCooldown(0))
	alice := testutil.Address(2)
	f.AddProvider(t, alice)
	batch := f.OpenBatch(t)

	require.NoError(t, f.Service.SubmitCollateral(alice, batch, f.EncryptUint(t, 100)))
	require.NoError(t, f.Service.SubmitDebt(alice, batch, f.EncryptUint(t, 80)))

	_, err := f.Service.CloseBatch(f.Owner)
	require.NoError(t, err)
	require.True(t, revealSolvency(t, f, batch), "closing computes the final flag")

	// The flag remains computable after closure.
	require.NoError(t, f.Service.CalculateSolvency(alice, batch))
	require.True(t, revealSolvency(t, f, batch))
}

func TestCalculateSolvencyGuards(t *testing.T) {
	f := testutil.NewFixture(t)
	batch := f.OpenBatch(t)

	err := f.Service.CalculateSolvency(testutil.Address(9), batch)
	require.ErrorIs(t, err, protocol.ErrNotProvider)

	err = f.Service.CalculateSolvency(f.Owner, batch+1)
	require.ErrorIs(t, err, protocol.ErrUnknownBatch)
}
