package protocol

import (
	"context"
	"fmt"
	"time"

	"github.com/brandon-salgado205n/DeFi-Builder-Game/crypto"
)

// Read-only accessors. Pure reads are never gated on pause.

// Owner returns the current owner address.
func (s *Service) Owner() crypto.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access.Owner()
}

// IsProvider reports whether addr is a permissioned provider.
func (s *Service) IsProvider(addr crypto.Address) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access.IsProvider(addr)
}

// Paused reports the global pause flag.
func (s *Service) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access.Paused()
}

// CooldownWindow returns the currently configured cooldown window.
func (s *Service) CooldownWindow() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limiter.Window()
}

// CurrentBatchID returns the highest batch id assigned so far, 0 if no
// batch has ever been opened.
func (s *Service) CurrentBatchID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batches.CurrentID()
}

// OpenBatchID returns the id of the open batch, if any.
func (s *Service) OpenBatchID() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batches.OpenID()
}

// BatchInfo returns a copy of the batch record for id.
func (s *Service) BatchInfo(id uint64) (Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.batches.Get(id)
	if err != nil {
		return Batch{}, err
	}
	return *b, nil
}

// SubmissionFor returns the stored encrypted submission of a
// participant in a batch, if any.
func (s *Service) SubmissionFor(batchID uint64, addr crypto.Address) (ParticipantSubmission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.submissions[submissionKey{batch: batchID, addr: addr.String()}]
	if !ok {
		return ParticipantSubmission{}, false
	}
	return *sub, true
}

// RequestInfo returns a copy of the decryption request record for id.
func (s *Service) RequestInfo(id RequestID) (DecryptionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return DecryptionRequest{}, fmt.Errorf("%w: %s", ErrUnknownRequest, id)
	}
	return *req, nil
}

// Events returns a snapshot of the audit stream.
func (s *Service) Events() []Event {
	return s.audit.Events()
}

// Subscribe returns a channel receiving every audit event appended
// after the call, until ctx is done.
func (s *Service) Subscribe(ctx context.Context) <-chan Event {
	return s.audit.Subscribe(ctx)
}
