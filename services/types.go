package services

import (
	"time"

	"github.com/brandon-salgado205n/DeFi-Builder-Game/protocol"
)

// AdminRequest covers owner operations that target another address.
type AdminRequest struct {
	Caller  string `json:"caller"`
	Address string `json:"address,omitempty"`
}

// CooldownRequest changes the per-address action cooldown.
type CooldownRequest struct {
	Caller          string `json:"caller"`
	CooldownSeconds int64  `json:"cooldown_seconds"`
}

// BatchLifecycleRequest opens or closes a collection window.
type BatchLifecycleRequest struct {
	Caller string `json:"caller"`
}

// BatchLifecycleResponse reports the affected batch.
type BatchLifecycleResponse struct {
	BatchID uint64 `json:"batch_id"`
}

// SubmissionRequest carries one encrypted value into a batch. The
// ciphertext field is a hex-encoded handle, not plaintext.
type SubmissionRequest struct {
	Caller     string `json:"caller"`
	Ciphertext string `json:"ciphertext"`
}

// SolvencyRequest triggers a homomorphic solvency computation.
type SolvencyRequest struct {
	Caller string `json:"caller"`
}

// DecryptionRequestResponse returns the id of a pending oracle request.
type DecryptionRequestResponse struct {
	RequestID string `json:"request_id"`
}

// OracleCallbackRequest is the fulfillment payload posted back by the
// decryption oracle.
type OracleCallbackRequest struct {
	RequestID string `json:"request_id"`
	Cleartext string `json:"cleartext"`
	Proof     string `json:"proof"`
}

// OracleCallbackResponse reports the revealed solvency verdict.
type OracleCallbackResponse struct {
	Solvent bool `json:"solvent"`
}

// BatchView is the public read model of a batch. Totals and the flag
// are exposed only as handles.
type BatchView struct {
	ID         uint64 `json:"id"`
	Open       bool   `json:"open"`
	Collateral string `json:"collateral"`
	Debt       string `json:"debt"`
	Solvency   string `json:"solvency"`
}

// LedgerStatusView summarizes batch progression and pause state.
type LedgerStatusView struct {
	Identity       string `json:"identity"`
	Owner          string `json:"owner"`
	Paused         bool   `json:"paused"`
	CurrentBatchID uint64 `json:"current_batch_id"`
	OpenBatchID    uint64 `json:"open_batch_id,omitempty"`
	HasOpenBatch   bool   `json:"has_open_batch"`
	CooldownSec    int64  `json:"cooldown_seconds"`
}

// RequestView is the public read model of a decryption request.
type RequestView struct {
	ID          string `json:"id"`
	BatchID     uint64 `json:"batch_id"`
	Fingerprint string `json:"fingerprint"`
	Processed   bool   `json:"processed"`
}

// EventsResponse wraps an audit log snapshot.
type EventsResponse struct {
	Events []protocol.Event `json:"events"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// EncryptRequest mints a demo ciphertext from a plaintext value.
type EncryptRequest struct {
	Value uint64 `json:"value"`
}

// EncryptResponse returns the minted handle.
type EncryptResponse struct {
	Ciphertext string `json:"ciphertext"`
}

func newBatchView(b protocol.Batch) BatchView {
	return BatchView{
		ID:         b.ID,
		Open:       b.Open,
		Collateral: b.Collateral.String(),
		Debt:       b.Debt.String(),
		Solvency:   b.Solvency.String(),
	}
}

func newRequestView(r protocol.DecryptionRequest) RequestView {
	return RequestView{
		ID:          string(r.ID),
		BatchID:     r.BatchID,
		Fingerprint: r.Fingerprint.String(),
		Processed:   r.Processed,
	}
}

func cooldownSeconds(d time.Duration) int64 {
	return int64(d / time.Second)
}
