package crypto

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// AddressSize is the length in bytes of a participant address.
const AddressSize = 20

// HandleSize is the length in bytes of a ciphertext handle. Handles are
// the fixed-width public identifiers of confidential values; the
// plaintext behind a handle is never visible to this module.
const HandleSize = 32

// Address identifies a participant (owner, provider, or the ledger
// itself). Addresses are opaque 20-byte identifiers; how they relate to
// wallets or signing keys is outside this module.
type Address []byte

// NewAddressFromBytes creates an Address from a byte slice.
// The input is copied to ensure immutability.
func NewAddressFromBytes(data []byte) Address {
	a := make([]byte, len(data))
	copy(a, data)
	return Address(a)
}

// NewAddressFromString creates an Address from a hex-encoded string.
// A leading "0x" prefix is accepted.
func NewAddressFromString(data string) (Address, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(data, "0x"))
	if err != nil {
		return nil, err
	}
	if len(raw) != AddressSize {
		return nil, errors.New("invalid address size")
	}
	return Address(raw), nil
}

// Bytes returns the address as a byte slice.
func (a Address) Bytes() []byte {
	return a
}

// Equal compares two addresses for equality.
func (a Address) Equal(other Address) bool {
	return bytes.Equal(a, other)
}

// Valid reports whether the address has the expected width.
func (a Address) Valid() bool {
	return len(a) == AddressSize
}

// String returns a hex-encoded string representation of the address.
// This is useful for logging and for using the address as a map key.
func (a Address) String() string {
	return hex.EncodeToString(a)
}

// DeriveIdentity deterministically derives a ledger identity address
// from seed material. Used when a deployment does not configure an
// explicit identity for fingerprint binding.
func DeriveIdentity(seed []byte) Address {
	sum := sha256.Sum256(seed)
	return NewAddressFromBytes(sum[:AddressSize])
}

// Handle is the public identifier of a confidential value held by the
// encrypted-arithmetic engine. The ledger only ever stores and compares
// handles; homomorphic operations on the underlying ciphertexts are
// delegated to the engine.
type Handle []byte

// NewHandleFromBytes creates a Handle from a byte slice.
// The input is copied to ensure immutability.
func NewHandleFromBytes(data []byte) Handle {
	h := make([]byte, len(data))
	copy(h, data)
	return Handle(h)
}

// NewHandleFromString creates a Handle from a hex-encoded string.
// A leading "0x" prefix is accepted.
func NewHandleFromString(data string) (Handle, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(data, "0x"))
	if err != nil {
		return nil, err
	}
	if len(raw) != HandleSize {
		return nil, errors.New("invalid handle size")
	}
	return Handle(raw), nil
}

// Bytes returns the handle as a byte slice.
func (h Handle) Bytes() []byte {
	return h
}

// Equal compares two handles for equality.
func (h Handle) Equal(other Handle) bool {
	return bytes.Equal(h, other)
}

// Valid reports whether the handle has the fixed identifier width.
func (h Handle) Valid() bool {
	return len(h) == HandleSize
}

// String returns a hex-encoded string representation of the handle.
// Emitting a handle is safe: it identifies a ciphertext, it does not
// reveal the plaintext.
func (h Handle) String() string {
	return hex.EncodeToString(h)
}

// PublicKey is an Ed25519 verification key. Used to verify decryption
// attestations from the oracle service.
type PublicKey []byte

// NewPublicKeyFromBytes creates a PublicKey from a byte slice.
// The input is copied to ensure immutability.
func NewPublicKeyFromBytes(data []byte) PublicKey {
	pk := make([]byte, len(data))
	copy(pk, data)
	return PublicKey(pk)
}

// NewPublicKeyFromString creates a PublicKey from a hex-encoded string.
func NewPublicKeyFromString(data string) (PublicKey, error) {
	raw, err := hex.DecodeString(data)
	if err != nil {
		return PublicKey{}, err
	}
	return NewPublicKeyFromBytes(raw), nil
}

// Bytes returns the public key as a byte slice.
func (pk PublicKey) Bytes() []byte {
	return pk
}

// String returns a hex-encoded string representation of the public key.
func (pk PublicKey) String() string {
	return hex.EncodeToString(pk)
}

// PrivateKey is an Ed25519 signing key. In this module only the oracle
// stub holds one, to sign its decryption attestations.
type PrivateKey []byte

// Bytes returns the private key as a byte slice. Exposes sensitive key
// material; handle with care.
func (sk PrivateKey) Bytes() []byte {
	return sk
}

// PublicKey derives the verification key for this private key.
func (sk PrivateKey) PublicKey() (PublicKey, error) {
	if len(sk) < ed25519.PrivateKeySize {
		return nil, errors.New("invalid private key size")
	}
	return PublicKey(sk[32:]), nil
}

// GenerateKeyPair generates a new Ed25519 key pair.
func GenerateKeyPair() (PublicKey, PrivateKey, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return PublicKey(publicKey), PrivateKey(privateKey), nil
}

// Signature is an Ed25519 signature over attestation data.
type Signature []byte

// NewSignature creates a Signature from a byte slice.
// The input is copied to ensure immutability.
func NewSignature(data []byte) Signature {
	sig := make([]byte, len(data))
	copy(sig, data)
	return Signature(sig)
}

// Bytes returns the signature as a byte slice.
func (s Signature) Bytes() []byte {
	return []byte(s)
}

// Verify checks that this signature is valid for the given data and key.
func (s Signature) Verify(publicKey PublicKey, data []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), data, s)
}

// String returns a hex-encoded string representation of the signature.
func (s Signature) String() string {
	return hex.EncodeToString(s.Bytes())
}

// Sign signs data with the given private key using Ed25519.
func Sign(privateKey PrivateKey, data []byte) (Signature, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, errors.New("invalid private key size")
	}
	return Signature(ed25519.Sign(ed25519.PrivateKey(privateKey), data)), nil
}
