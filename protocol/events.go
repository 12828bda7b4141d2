package protocol

import "time"

// EventKind tags an audit event with the state transition it records.
type EventKind string

const (
	EventOwnershipTransferred EventKind = "ownership-transferred"
	EventProviderAdded        EventKind = "provider-added"
	EventProviderRemoved      EventKind = "provider-removed"
	EventCooldownChanged      EventKind = "cooldown-changed"
	EventPaused               EventKind = "paused"
	EventUnpaused             EventKind = "unpaused"
	EventBatchOpened          EventKind = "batch-opened"
	EventBatchClosed          EventKind = "batch-closed"
	EventCollateralSubmitted  EventKind = "collateral-submitted"
	EventDebtSubmitted        EventKind = "debt-submitted"
	EventSolvencyComputed     EventKind = "solvency-computed"
	EventDecryptionRequested  EventKind = "decryption-requested"
	EventDecryptionCompleted  EventKind = "decryption-completed"
)

// Event is one record of the append-only audit stream. Fields beyond
// Seq/Time/Kind are populated per kind; ciphertext fields carry public
// handle identifiers, never plaintexts.
type Event struct {
	Seq  uint64    `json:"seq"`
	Time time.Time `json:"time"`
	Kind EventKind `json:"kind"`

	// Actor is the address that performed the transition, when one
	// exists (the decryption completion has no provider actor).
	Actor string `json:"actor,omitempty"`

	// Address is the subject of ownership and provider transitions.
	Address string `json:"address,omitempty"`

	BatchID uint64 `json:"batch_id,omitempty"`

	// Handle is the public identifier of the ciphertext involved.
	Handle string `json:"handle,omitempty"`

	RequestID   string `json:"request_id,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`

	CooldownSeconds int64 `json:"cooldown_seconds,omitempty"`

	// Solvent carries the revealed boolean of a completed decryption.
	Solvent *bool `json:"solvent,omitempty"`
}
