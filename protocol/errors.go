package protocol

import "errors"

// Named failure kinds. Every rejected operation returns (possibly
// wrapped) one of these sentinels so callers can branch on cause:
// wait out a cooldown, re-authenticate, or treat the failure as
// permanent.
var (
	// Authorization failures.
	ErrNotOwner    = errors.New("caller is not the owner")
	ErrNotProvider = errors.New("caller is not a provider")

	// Lifecycle failures.
	ErrPaused           = errors.New("ledger is paused")
	ErrAlreadyPaused    = errors.New("ledger is already paused")
	ErrBatchAlreadyOpen = errors.New("a batch is already open")
	ErrNoOpenBatch      = errors.New("no batch is open")
	ErrBatchNotOpen     = errors.New("batch is not open")

	// Rate-limit failures.
	ErrCooldownActive = errors.New("cooldown window has not elapsed")

	// Integrity failures. Never retryable with the same inputs.
	ErrRequestProcessed        = errors.New("decryption request already processed")
	ErrStateMismatch           = errors.New("ciphertext state changed since request")
	ErrInvalidProof            = errors.New("decryption proof verification failed")
	ErrMalformedCleartext      = errors.New("malformed cleartext payload")
	ErrUninitializedCiphertext = errors.New("ciphertext handle missing or uninitialized")

	// Unknown-entity failures.
	ErrUnknownBatch   = errors.New("unknown batch id")
	ErrUnknownRequest = errors.New("unknown decryption request")
)

// Kind classifies a failure so transport layers can map causes to
// status codes without inspecting individual sentinels.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuthorization
	KindLifecycle
	KindRateLimit
	KindIntegrity
	KindNotFound
)

// KindOf returns the failure kind of err, unwrapping as needed.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrNotOwner), errors.Is(err, ErrNotProvider):
		return KindAuthorization
	case errors.Is(err, ErrPaused), errors.Is(err, ErrAlreadyPaused),
		errors.Is(err, ErrBatchAlreadyOpen), errors.Is(err, ErrNoOpenBatch),
		errors.Is(err, ErrBatchNotOpen):
		return KindLifecycle
	case errors.Is(err, ErrCooldownActive):
		return KindRateLimit
	case errors.Is(err, ErrRequestProcessed), errors.Is(err, ErrStateMismatch),
		errors.Is(err, ErrInvalidProof), errors.Is(err, ErrMalformedCleartext),
		errors.Is(err, ErrUninitializedCiphertext):
		return KindIntegrity
	case errors.Is(err, ErrUnknownBatch), errors.Is(err, ErrUnknownRequest):
		return KindNotFound
	default:
		return KindUnknown
	}
}
