// Package services exposes the ledger core over HTTP: an admin and
// provider API, the oracle callback surface, read-only views of batches
// and requests, and an audit-event recorder with optional PostgreSQL
// persistence.
//
// Callers authenticate by address. The transport deliberately carries
// only opaque ciphertext handles; plaintext never crosses this layer
// except inside attested oracle callbacks.
package services
