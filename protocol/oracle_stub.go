package protocol

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/brandon-salgado205n/DeFi-Builder-Game/crypto"
)

// LocalOracle implements DecryptionChannel in-process for tests and
// demos. It snapshots the handle list of each request, and on demand
// produces the (cleartext, proof) pair a real decryption service would
// deliver out of band: the cleartext encoding of the revealed boolean
// and an Ed25519 attestation over (request id, handle, cleartext).
type LocalOracle struct {
	mu         sync.Mutex
	engine     *InMemoryCipherEngine
	signingKey crypto.PrivateKey
	publicKey  crypto.PublicKey
	pending    map[RequestID][]crypto.Handle
	notify     chan RequestID
}

// NewLocalOracle creates an oracle bound to the given engine, with a
// fresh attestation key pair.
func NewLocalOracle(engine *InMemoryCipherEngine) (*LocalOracle, error) {
	if engine == nil {
		return nil, errors.New("cipher engine is required")
	}
	pub, priv, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generating oracle key: %w", err)
	}
	return &LocalOracle{
		engine:     engine,
		signingKey: priv,
		publicKey:  pub,
		pending:    make(map[RequestID][]crypto.Handle),
		notify:     make(chan RequestID, 16),
	}, nil
}

// PublicKey returns the oracle's attestation verification key.
func (o *LocalOracle) PublicKey() crypto.PublicKey {
	return o.publicKey
}

// RequestDecryption assigns a fresh request id and snapshots the
// ordered handle list for later fulfillment.
func (o *LocalOracle) RequestDecryption(handles []crypto.Handle) (RequestID, error) {
	if len(handles) == 0 {
		return "", errors.New("no handles to decrypt")
	}

	raw := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", fmt.Errorf("generating request id: %w", err)
	}
	id := RequestID(hex.EncodeToString(raw))

	o.mu.Lock()
	o.pending[id] = slices.Clone(handles)
	o.mu.Unlock()

	select {
	case o.notify <- id:
	default:
		// Skip if nobody is draining notifications
	}
	return id, nil
}

// Notifications returns a channel carrying the ids of newly created
// requests, for demo loops that auto-fulfill.
func (o *LocalOracle) Notifications() <-chan RequestID {
	return o.notify
}

// Respond produces the cleartext and proof for a pending request,
// decrypting the handle that was snapshotted at request time.
func (o *LocalOracle) Respond(id RequestID) (cleartext, proof []byte, err error) {
	o.mu.Lock()
	handles, ok := o.pending[id]
	o.mu.Unlock()
	if !ok {
		return nil, nil, fmt.Errorf("no pending request %s", id)
	}
	return o.respondFor(id, handles[0])
}

// RespondForHandle produces a response attesting to an arbitrary
// current handle instead of the snapshotted one. Tests use this to
// show that even a proof valid for a mutated ciphertext is rejected by
// the ledger's state-binding check.
func (o *LocalOracle) RespondForHandle(id RequestID, h crypto.Handle) (cleartext, proof []byte, err error) {
	return o.respondFor(id, h)
}

func (o *LocalOracle) respondFor(id RequestID, h crypto.Handle) ([]byte, []byte, error) {
	solvent, err := o.engine.RevealBool(h)
	if err != nil {
		return nil, nil, fmt.Errorf("decrypting %s: %w", h, err)
	}
	cleartext := EncodeRevealedBool(solvent)

	sig, err := crypto.Sign(o.signingKey, attestationDigest(id, h, cleartext))
	if err != nil {
		return nil, nil, fmt.Errorf("signing attestation: %w", err)
	}
	return cleartext, sig.Bytes(), nil
}

// attestationDigest is the message an oracle signs: it binds the
// request id, the exact ciphertext handle, and the revealed cleartext.
func attestationDigest(id RequestID, handle crypto.Handle, cleartext []byte) []byte {
	h := sha256.New()
	h.Write([]byte(id))
	h.Write(handle.Bytes())
	h.Write(cleartext)
	return h.Sum(nil)
}

// OracleAttestor implements ProofVerifier against a known oracle
// verification key.
type OracleAttestor struct {
	oracleKey crypto.PublicKey
}

// NewOracleAttestor creates a verifier trusting the given oracle key.
func NewOracleAttestor(oracleKey crypto.PublicKey) *OracleAttestor {
	return &OracleAttestor{oracleKey: oracleKey}
}

// VerifyProof checks the oracle's signature over the request id, the
// handle the ledger currently holds, and the delivered cleartext.
func (a *OracleAttestor) VerifyProof(id RequestID, handle crypto.Handle, cleartext, proof []byte) error {
	sig := crypto.NewSignature(proof)
	if !sig.Verify(a.oracleKey, attestationDigest(id, handle, cleartext)) {
		return errors.New("attestation signature not valid")
	}
	return nil
}
