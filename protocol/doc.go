// Package protocol implements the core of the confidential solvency
// ledger: permissioned participants submit encrypted collateral and
// debt values into time-boxed batches, the ledger aggregates them
// homomorphically without ever seeing a plaintext, and the only bit
// that can leave the system is "is the aggregate solvent", revealed
// through a verifiable asynchronous decryption protocol.
//
// # Components
//
// The Service type is the single coordinating component. It owns all
// mutable state and serializes every mutating operation, composing:
//
//   - AccessControl: owner identity, provider set, pause flag
//   - RateLimiter: per-address, per-action-class cooldown records
//   - BatchManager: the open/closed epoch state machine with dense,
//     strictly increasing batch identifiers
//   - per-batch encrypted submissions and running encrypted totals
//   - the decryption request/fulfillment protocol
//   - AuditLog: an append-only stream of every state transition
//
// # Guard chain
//
// Every provider operation is validated in a fixed order before any
// state changes: authorization, pause state, rate limit, lifecycle.
// An operation either fully commits its state change and emits its
// audit event, or makes no change at all and returns one of the named
// failure kinds from errors.go.
//
// # External capabilities
//
// The encrypted-arithmetic engine, the decryption channel, and the
// proof verifier are interfaces. Production deployments wire a real
// confidential-computation backend; InMemoryCipherEngine and
// LocalOracle implement the same interfaces with plaintext arithmetic
// behind random handles, keeping the core fully testable in-process.
//
// # Request/fulfillment gap
//
// A decryption request snapshots a fingerprint of the exact ciphertext
// handles it targets. Arbitrary operations may execute before the
// oracle calls back; rather than locking state for the duration, the
// fulfillment path recomputes the fingerprint and rejects the response
// as stale if the underlying flag has changed. A request that never
// receives a valid callback stays pending forever; each one is O(1)
// state and there is no cancellation.
package protocol
