package protocol

import (
	"fmt"

	"github.com/brandon-salgado205n/DeFi-Builder-Game/crypto"
)

// Batch is one collection window. Totals are running homomorphic sums
// over every accepted submission; Solvency is a snapshot of the last
// comparison of the two totals, not a live view.
type Batch struct {
	ID   uint64
	Open bool

	// Collateral and Debt are the running encrypted totals.
	Collateral crypto.Handle
	Debt       crypto.Handle

	// Solvency is the encrypted boolean Collateral >= Debt as of the
	// last recomputation.
	Solvency crypto.Handle
}

// BatchManager implements the epoch state machine: batch identifiers
// are dense and strictly increasing starting at 1, at most one batch is
// open at any instant, batch 0 never exists, and batches are never
// deleted once created.
//
// Not safe for concurrent use on its own; the Service serializes access.
type BatchManager struct {
	current uint64
	openID  uint64 // 0 when no batch is open
	batches map[uint64]*Batch
}

// NewBatchManager creates an empty manager with no batch open.
func NewBatchManager() *BatchManager {
	return &BatchManager{
		batches: make(map[uint64]*Batch),
	}
}

// CurrentID returns the highest batch identifier ever assigned, 0 if
// none.
func (m *BatchManager) CurrentID() uint64 {
	return m.current
}

// OpenID returns the identifier of the open batch, if any.
func (m *BatchManager) OpenID() (uint64, bool) {
	return m.openID, m.openID != 0
}

// Get returns the batch with the given id. Ids outside [1, CurrentID]
// fail with ErrUnknownBatch.
func (m *BatchManager) Get(id uint64) (*Batch, error) {
	if id == 0 || id > m.current {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBatch, id)
	}
	return m.batches[id], nil
}

// OpenBatch opens the next batch, initializing its totals to the
// engine's encrypted zero and its flag to encrypted false. Fails if a
// batch is already open.
func (m *BatchManager) OpenBatch(engine CipherEngine) (*Batch, error) {
	if m.openID != 0 {
		return nil, fmt.Errorf("%w: batch %d", ErrBatchAlreadyOpen, m.openID)
	}

	collateral, err := engine.EncryptedZero()
	if err != nil {
		return nil, fmt.Errorf("initializing collateral total: %w", err)
	}
	debt, err := engine.EncryptedZero()
	if err != nil {
		return nil, fmt.Errorf("initializing debt total: %w", err)
	}
	flag, err := engine.EncryptedFalse()
	if err != nil {
		return nil, fmt.Errorf("initializing solvency flag: %w", err)
	}

	m.current++
	b := &Batch{
		ID:         m.current,
		Open:       true,
		Collateral: collateral,
		Debt:       debt,
		Solvency:   flag,
	}
	m.batches[b.ID] = b
	m.openID = b.ID
	return b, nil
}

// CloseBatch marks the open batch closed and returns it. Fails if no
// batch is open. There is no way to reopen a closed batch.
func (m *BatchManager) CloseBatch() (*Batch, error) {
	if m.openID == 0 {
		return nil, ErrNoOpenBatch
	}
	b := m.batches[m.openID]
	b.Open = false
	m.openID = 0
	return b, nil
}
