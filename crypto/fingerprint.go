package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var errInvalidFingerprintSize = errors.New("invalid fingerprint size")

// FingerprintSize is the length in bytes of a state fingerprint.
const FingerprintSize = sha256.Size

// Fingerprint binds a decryption request to the exact ciphertext
// handles it targeted. It is recomputed at fulfillment time to detect
// that a flag was recomputed or otherwise mutated while the request was
// in flight. Fingerprints are hashes and safe to publish.
type Fingerprint [FingerprintSize]byte

// StateFingerprint hashes the ordered handle list together with the
// ledger's own identity. The identity term prevents a response produced
// for one ledger instance from being accepted by another.
func StateFingerprint(identity Address, handles []Handle) Fingerprint {
	h := sha256.New()
	for _, handle := range handles {
		h.Write(handle.Bytes())
	}
	h.Write(identity.Bytes())

	var fp Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp
}

// NewFingerprintFromString parses a hex-encoded fingerprint.
func NewFingerprintFromString(data string) (Fingerprint, error) {
	var fp Fingerprint
	raw, err := hex.DecodeString(data)
	if err != nil {
		return fp, err
	}
	if len(raw) != FingerprintSize {
		return fp, errInvalidFingerprintSize
	}
	copy(fp[:], raw)
	return fp, nil
}

// Equal compares two fingerprints for equality.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f == other
}

// String returns a hex-encoded string representation of the fingerprint.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}
