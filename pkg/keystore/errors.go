package keystore

import "errors"

// Store-level errors. Crypto-path failures (encrypt/decrypt, signature
// checks) are reported as twinerr.Code values instead, per spec §4.5.
var (
	// ErrKeyNotFound is returned when a twincode has no stored key.
	ErrKeyNotFound = errors.New("keystore: key not found")

	// ErrKeyExists reports a twincode whose existing row has a
	// different kind. InsertKey does not return it: it keeps an
	// existing row whatever its kind.
	ErrKeyExists = errors.New("keystore: key exists with a different kind")

	// ErrNoPrivateKey is returned when an operation needs a local
	// private key but only a peer's public key is on file.
	ErrNoPrivateKey = errors.New("keystore: no private key for twincode")

	// ErrInvalidOption is returned when a secret rotation option's
	// precondition is not met.
	ErrInvalidOption = errors.New("keystore: invalid secret rotation option")

	// ErrRelationNotFound is returned when no (local, peer) relation
	// row exists yet.
	ErrRelationNotFound = errors.New("keystore: relation not found")
)
