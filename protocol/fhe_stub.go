package protocol

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/brandon-salgado205n/DeFi-Builder-Game/crypto"
)

type cipherKind int

const (
	cipherUint cipherKind = iota
	cipherBool
)

type cipherValue struct {
	kind cipherKind
	num  *big.Int
	flag bool
}

// InMemoryCipherEngine implements CipherEngine for tests and demos.
// It simulates a confidential-computation backend by performing
// plaintext arithmetic behind opaque random handles; it provides no
// actual confidentiality guarantees.
type InMemoryCipherEngine struct {
	mu     sync.Mutex
	values map[string]cipherValue
}

// NewInMemoryCipherEngine creates an engine with no ciphertexts.
func NewInMemoryCipherEngine() *InMemoryCipherEngine {
	return &InMemoryCipherEngine{
		values: make(map[string]cipherValue),
	}
}

func (e *InMemoryCipherEngine) newHandle(v cipherValue) (crypto.Handle, error) {
	raw := make([]byte, crypto.HandleSize)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return nil, fmt.Errorf("generating handle: %w", err)
	}
	h := crypto.NewHandleFromBytes(raw)
	e.values[h.String()] = v
	return h, nil
}

// EncryptUint creates a fresh ciphertext of an unsigned integer. This
// stands in for client-side encryption performed by participants.
func (e *InMemoryCipherEngine) EncryptUint(v uint64) (crypto.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.newHandle(cipherValue{kind: cipherUint, num: new(big.Int).SetUint64(v)})
}

// EncryptedZero returns a fresh encryption of zero.
func (e *InMemoryCipherEngine) EncryptedZero() (crypto.Handle, error) {
	return e.EncryptUint(0)
}

// EncryptedFalse returns a fresh encryption of the boolean false.
func (e *InMemoryCipherEngine) EncryptedFalse() (crypto.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.newHandle(cipherValue{kind: cipherBool})
}

func (e *InMemoryCipherEngine) lookupUint(h crypto.Handle) (*big.Int, error) {
	v, ok := e.values[h.String()]
	if !ok {
		return nil, errors.New("unknown ciphertext handle")
	}
	if v.kind != cipherUint {
		return nil, errors.New("ciphertext is not an unsigned integer")
	}
	return v.num, nil
}

// Add homomorphically adds two encrypted unsigned integers.
func (e *InMemoryCipherEngine) Add(a, b crypto.Handle) (crypto.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	x, err := e.lookupUint(a)
	if err != nil {
		return nil, err
	}
	y, err := e.lookupUint(b)
	if err != nil {
		return nil, err
	}
	return e.newHandle(cipherValue{kind: cipherUint, num: new(big.Int).Add(x, y)})
}

// GreaterOrEqual homomorphically compares two encrypted unsigned
// integers, producing an encrypted boolean.
func (e *InMemoryCipherEngine) GreaterOrEqual(a, b crypto.Handle) (crypto.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	x, err := e.lookupUint(a)
	if err != nil {
		return nil, err
	}
	y, err := e.lookupUint(b)
	if err != nil {
		return nil, err
	}
	return e.newHandle(cipherValue{kind: cipherBool, flag: x.Cmp(y) >= 0})
}

// IsInitialized reports whether the handle refers to a ciphertext this
// engine created.
func (e *InMemoryCipherEngine) IsInitialized(h crypto.Handle) bool {
	if !h.Valid() {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.values[h.String()]
	return ok
}

// RevealBool decrypts an encrypted boolean. Only the oracle side of a
// deployment may do this; it exists here for the LocalOracle and for
// test assertions.
func (e *InMemoryCipherEngine) RevealBool(h crypto.Handle) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, ok := e.values[h.String()]
	if !ok {
		return false, errors.New("unknown ciphertext handle")
	}
	if v.kind != cipherBool {
		return false, errors.New("ciphertext is not a boolean")
	}
	return v.flag, nil
}

// RevealUint decrypts an encrypted unsigned integer, for test
// assertions on running totals.
func (e *InMemoryCipherEngine) RevealUint(h crypto.Handle) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, err := e.lookupUint(h)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(v), nil
}
