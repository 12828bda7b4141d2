// Package crypto provides the identity and binding primitives of the
// confidential solvency ledger.
//
// The package deliberately contains no homomorphic arithmetic: encrypted
// values are represented only by fixed-width Handle identifiers, and all
// operations on the underlying ciphertexts are delegated to an external
// engine behind the protocol package's CipherEngine interface.
//
// Provided here:
//
//   - Address: opaque 20-byte participant and ledger identities
//   - Handle: fixed-width public identifiers of confidential values
//   - Fingerprint: SHA-256 state hashes binding a decryption request to
//     the exact ciphertext handles it targeted
//   - Ed25519 signatures for verifying decryption attestations issued
//     by the oracle service
package crypto
