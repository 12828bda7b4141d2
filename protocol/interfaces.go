package protocol

import (
	"time"

	"github.com/brandon-salgado205n/DeFi-Builder-Game/crypto"
)

// CipherEngine is the external encrypted-arithmetic capability. The
// ledger never decomposes or inspects ciphertexts; it only stores
// handles and asks the engine to combine them.
//
// Privacy: the engine sees ciphertexts, never plaintexts of honest
// participants; the ledger sees neither.
type CipherEngine interface {
	// EncryptedZero returns a handle to a fresh encryption of the
	// unsigned integer zero, used to initialize batch running totals.
	EncryptedZero() (crypto.Handle, error)

	// EncryptedFalse returns a handle to a fresh encryption of the
	// boolean false, used to initialize a batch's solvency flag.
	EncryptedFalse() (crypto.Handle, error)

	// Add homomorphically adds two encrypted unsigned integers and
	// returns the handle of the sum.
	Add(a, b crypto.Handle) (crypto.Handle, error)

	// GreaterOrEqual homomorphically compares two encrypted unsigned
	// integers and returns the handle of the encrypted boolean a >= b.
	GreaterOrEqual(a, b crypto.Handle) (crypto.Handle, error)

	// IsInitialized reports whether the handle refers to a well-formed
	// ciphertext known to the engine.
	IsInitialized(h crypto.Handle) bool
}

// RequestID is the opaque correlation token assigned by the decryption
// channel. A request id is consumed at most once.
type RequestID string

// DecryptionChannel delivers decryption requests to the external oracle
// service. The oracle fulfills asynchronously through
// Service.FulfillDecryption at an unspecified later point; arbitrary
// other operations may execute in between.
type DecryptionChannel interface {
	// RequestDecryption submits the ordered handle list to be revealed
	// and returns a fresh request id correlated to the future callback.
	RequestDecryption(handles []crypto.Handle) (RequestID, error)
}

// ProofVerifier checks that a cleartext/proof pair is a valid
// attestation for the exact ciphertext handle a request was bound to.
type ProofVerifier interface {
	VerifyProof(id RequestID, handle crypto.Handle, cleartext, proof []byte) error
}

// Clock abstracts time so cooldown behavior is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock used outside tests.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
