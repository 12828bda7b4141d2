package protocol

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/brandon-salgado205n/DeFi-Builder-Game/crypto"
)

// ParticipantSubmission holds the most recent encrypted values a
// participant submitted into a batch. Resubmission within the same
// batch overwrites these handles; the batch's running totals accumulate
// every accepted submission regardless.
type ParticipantSubmission struct {
	Collateral crypto.Handle
	Debt       crypto.Handle
}

// DecryptionRequest is the pending context of an asynchronous
// decryption. It transitions Processed false -> true exactly once and
// is never deleted.
type DecryptionRequest struct {
	ID          RequestID
	BatchID     uint64
	Fingerprint crypto.Fingerprint
	Processed   bool
}

type submissionKey struct {
	batch uint64
	addr  string
}

// Service is the confidential solvency ledger. It owns all mutable
// state and serializes every mutating operation under a single mutex,
// giving the global total order the protocol assumes. The only
// temporal decoupling is between RequestSolvencyDecryption and
// FulfillDecryption, which the fingerprint binding resolves.
type Service struct {
	cfg      *LedgerConfig
	identity crypto.Address

	engine   CipherEngine
	channel  DecryptionChannel
	verifier ProofVerifier
	clock    Clock

	mu          sync.Mutex
	access      *AccessControl
	limiter     *RateLimiter
	batches     *BatchManager
	submissions map[submissionKey]*ParticipantSubmission
	requests    map[RequestID]*DecryptionRequest
	audit       *AuditLog
}

// NewService creates a ledger service. The owner starts as the sole
// provider. A nil cfg uses defaults; a nil clock uses the system clock.
func NewService(cfg *LedgerConfig, identity, owner crypto.Address,
	engine CipherEngine, channel DecryptionChannel, verifier ProofVerifier,
	clock Clock) (*Service, error) {

	if engine == nil {
		return nil, errors.New("cipher engine is required")
	}
	if channel == nil {
		return nil, errors.New("decryption channel is required")
	}
	if verifier == nil {
		return nil, errors.New("proof verifier is required")
	}
	if !identity.Valid() {
		return nil, errors.New("invalid ledger identity")
	}
	if !owner.Valid() {
		return nil, errors.New("invalid owner address")
	}
	if cfg == nil {
		cfg = DefaultLedgerConfig()
	}
	if clock == nil {
		clock = SystemClock{}
	}

	return &Service{
		cfg:         cfg,
		identity:    identity,
		engine:      engine,
		channel:     channel,
		verifier:    verifier,
		clock:       clock,
		access:      NewAccessControl(owner),
		limiter:     NewRateLimiter(cfg.Cooldown),
		batches:     NewBatchManager(),
		submissions: make(map[submissionKey]*ParticipantSubmission),
		requests:    make(map[RequestID]*DecryptionRequest),
		audit:       NewAuditLog(),
	}, nil
}

// Identity returns the ledger identity bound into state fingerprints.
func (s *Service) Identity() crypto.Address {
	return s.identity
}

// TransferOwnership installs a new owner. Owner-only. The new owner
// joins the provider set.
func (s *Service) TransferOwnership(actor, newOwner crypto.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.access.requireOwner(actor); err != nil {
		return err
	}
	if !newOwner.Valid() {
		return errors.New("invalid new owner address")
	}

	s.access.TransferOwnership(newOwner)
	s.record(Event{
		Kind:    EventOwnershipTransferred,
		Actor:   actor.String(),
		Address: newOwner.String(),
	})
	return nil
}

// AddProvider adds addr to the provider set. Owner-only, idempotent:
// adding an existing provider changes nothing and emits no event.
func (s *Service) AddProvider(actor, addr crypto.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.access.requireOwner(actor); err != nil {
		return err
	}
	if !addr.Valid() {
		return errors.New("invalid provider address")
	}

	if s.access.AddProvider(addr) {
		s.record(Event{
			Kind:    EventProviderAdded,
			Actor:   actor.String(),
			Address: addr.String(),
		})
	}
	return nil
}

// RemoveProvider removes addr from the provider set. Owner-only,
// idempotent; removing the owner is a silent no-op.
func (s *Service) RemoveProvider(actor, addr crypto.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.access.requireOwner(actor); err != nil {
		return err
	}

	if s.access.RemoveProvider(addr) {
		s.record(Event{
			Kind:    EventProviderRemoved,
			Actor:   actor.String(),
			Address: addr.String(),
		})
	}
	return nil
}

// SetCooldown changes the cooldown window for all action classes.
// Owner-only; takes effect immediately for subsequent checks.
func (s *Service) SetCooldown(actor crypto.Address, window time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.access.requireOwner(actor); err != nil {
		return err
	}
	if window < 0 {
		return errors.New("cooldown must not be negative")
	}

	s.limiter.SetWindow(window)
	s.record(Event{
		Kind:            EventCooldownChanged,
		Actor:           actor.String(),
		CooldownSeconds: int64(window / time.Second),
	})
	return nil
}

// Pause engages the global emergency stop. Owner-only; fails if
// already paused.
func (s *Service) Pause(actor crypto.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.access.requireOwner(actor); err != nil {
		return err
	}
	if err := s.access.Pause(); err != nil {
		return err
	}

	s.record(Event{Kind: EventPaused, Actor: actor.String()})
	return nil
}

// Unpause clears the pause flag unconditionally. Owner-only. Stored
// totals and flags are untouched.
func (s *Service) Unpause(actor crypto.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.access.requireOwner(actor); err != nil {
		return err
	}

	s.access.Unpause()
	s.record(Event{Kind: EventUnpaused, Actor: actor.String()})
	return nil
}

// OpenBatch opens the next collection window. Owner-only, blocked while
// paused, and fails if a batch is already open.
func (s *Service) OpenBatch(actor crypto.Address) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.access.requireOwner(actor); err != nil {
		return 0, err
	}
	if err := s.access.requireActive(); err != nil {
		return 0, err
	}

	b, err := s.batches.OpenBatch(s.engine)
	if err != nil {
		return 0, err
	}

	s.record(Event{
		Kind:    EventBatchOpened,
		Actor:   actor.String(),
		BatchID: b.ID,
	})
	return b.ID, nil
}

// CloseBatch closes the open batch, recomputing its solvency flag from
// the final totals before the closure event. Owner-only, blocked while
// paused.
func (s *Service) CloseBatch(actor crypto.Address) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.access.requireOwner(actor); err != nil {
		return 0, err
	}
	if err := s.access.requireActive(); err != nil {
		return 0, err
	}

	id, ok := s.batches.OpenID()
	if !ok {
		return 0, ErrNoOpenBatch
	}
	b, err := s.batches.Get(id)
	if err != nil {
		return 0, err
	}
	// Recompute before closing so a compare failure leaves the batch
	// open and unchanged.
	if err := s.computeSolvencyLocked(actor, b); err != nil {
		return 0, err
	}
	if _, err := s.batches.CloseBatch(); err != nil {
		return 0, err
	}

	s.record(Event{
		Kind:    EventBatchClosed,
		Actor:   actor.String(),
		BatchID: b.ID,
	})
	return b.ID, nil
}

// SubmitCollateral stores the participant's encrypted collateral for
// the batch and folds it into the running collateral total.
func (s *Service) SubmitCollateral(actor crypto.Address, batchID uint64, ct crypto.Handle) error {
	return s.submit(actor, batchID, ct, true)
}

// SubmitDebt stores the participant's encrypted debt for the batch and
// folds it into the running debt total.
func (s *Service) SubmitDebt(actor crypto.Address, batchID uint64, ct crypto.Handle) error {
	return s.submit(actor, batchID, ct, false)
}

// submit runs the full guard chain (authorization, pause, rate limit,
// lifecycle, ciphertext integrity) before mutating anything, so a
// failed submission leaves no trace, including no cooldown record.
func (s *Service) submit(actor crypto.Address, batchID uint64, ct crypto.Handle, collateral bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.access.requireProvider(actor); err != nil {
		return err
	}
	if err := s.access.requireActive(); err != nil {
		return err
	}
	now := s.clock.Now()
	if err := s.limiter.Check(actor, ActionSubmission, now); err != nil {
		return err
	}

	b, err := s.batches.Get(batchID)
	if err != nil {
		return err
	}
	if !b.Open {
		return fmt.Errorf("%w: batch %d", ErrBatchNotOpen, batchID)
	}

	if !ct.Valid() || !s.engine.IsInitialized(ct) {
		return ErrUninitializedCiphertext
	}

	kind := EventDebtSubmitted
	total := b.Debt
	if collateral {
		kind = EventCollateralSubmitted
		total = b.Collateral
	}
	newTotal, err := s.engine.Add(total, ct)
	if err != nil {
		return fmt.Errorf("updating running total: %w", err)
	}

	// Commit point: everything below must succeed together.
	key := submissionKey{batch: batchID, addr: actor.String()}
	sub, ok := s.submissions[key]
	if !ok {
		sub = &ParticipantSubmission{}
		s.submissions[key] = sub
	}
	if collateral {
		sub.Collateral = ct
		b.Collateral = newTotal
	} else {
		sub.Debt = ct
		b.Debt = newTotal
	}
	s.limiter.Record(actor, ActionSubmission, now)
	s.record(Event{
		Kind:    kind,
		Actor:   actor.String(),
		BatchID: batchID,
		Handle:  ct.String(),
	})
	return nil
}

// CalculateSolvency recomputes the batch's solvency flag from the
// current running totals. Provider-only, blocked while paused. Valid
// for open and closed batches; each call overwrites the snapshot.
func (s *Service) CalculateSolvency(actor crypto.Address, batchID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.access.requireProvider(actor); err != nil {
		return err
	}
	if err := s.access.requireActive(); err != nil {
		return err
	}

	b, err := s.batches.Get(batchID)
	if err != nil {
		return err
	}
	return s.computeSolvencyLocked(actor, b)
}

func (s *Service) computeSolvencyLocked(actor crypto.Address, b *Batch) error {
	flag, err := s.engine.GreaterOrEqual(b.Collateral, b.Debt)
	if err != nil {
		return fmt.Errorf("comparing totals: %w", err)
	}
	b.Solvency = flag
	s.record(Event{
		Kind:    EventSolvencyComputed,
		Actor:   actor.String(),
		BatchID: b.ID,
		Handle:  flag.String(),
	})
	return nil
}

// RequestSolvencyDecryption asks the oracle to reveal the batch's
// solvency flag. The request is bound to a fingerprint of the exact
// flag ciphertext existing right now; fulfillment against a mutated
// flag will be rejected as stale.
func (s *Service) RequestSolvencyDecryption(actor crypto.Address, batchID uint64) (RequestID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.access.requireProvider(actor); err != nil {
		return "", err
	}
	if err := s.access.requireActive(); err != nil {
		return "", err
	}
	now := s.clock.Now()
	if err := s.limiter.Check(actor, ActionDecryptionRequest, now); err != nil {
		return "", err
	}

	b, err := s.batches.Get(batchID)
	if err != nil {
		return "", err
	}
	if !b.Solvency.Valid() || !s.engine.IsInitialized(b.Solvency) {
		return "", ErrUninitializedCiphertext
	}

	handles := []crypto.Handle{b.Solvency}
	fingerprint := crypto.StateFingerprint(s.identity, handles)

	id, err := s.channel.RequestDecryption(handles)
	if err != nil {
		return "", fmt.Errorf("submitting decryption request: %w", err)
	}

	s.requests[id] = &DecryptionRequest{
		ID:          id,
		BatchID:     batchID,
		Fingerprint: fingerprint,
	}
	s.limiter.Record(actor, ActionDecryptionRequest, now)
	s.record(Event{
		Kind:        EventDecryptionRequested,
		Actor:       actor.String(),
		BatchID:     batchID,
		RequestID:   string(id),
		Fingerprint: fingerprint.String(),
	})
	return id, nil
}

// FulfillDecryption is the oracle callback surface. Checks run in
// order: replay guard, state binding, proof verification, payload
// decoding; only then is the request finalized, exactly once. It is
// not gated on pause, roles, or cooldowns.
func (s *Service) FulfillDecryption(id RequestID, cleartext, proof []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownRequest, id)
	}
	if req.Processed {
		return false, fmt.Errorf("%w: %s", ErrRequestProcessed, id)
	}

	// Batches are never deleted, so the stored id always resolves.
	b, err := s.batches.Get(req.BatchID)
	if err != nil {
		return false, err
	}
	current := crypto.StateFingerprint(s.identity, []crypto.Handle{b.Solvency})
	if !current.Equal(req.Fingerprint) {
		return false, fmt.Errorf("%w: request %s", ErrStateMismatch, id)
	}

	if err := s.verifier.VerifyProof(id, b.Solvency, cleartext, proof); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}

	solvent, err := DecodeRevealedBool(cleartext)
	if err != nil {
		return false, err
	}

	req.Processed = true
	s.record(Event{
		Kind:      EventDecryptionCompleted,
		BatchID:   req.BatchID,
		RequestID: string(id),
		Solvent:   &solvent,
	})
	return solvent, nil
}

// record stamps and appends an audit event.
func (s *Service) record(e Event) {
	e.Time = s.clock.Now()
	s.audit.Append(e)
}
