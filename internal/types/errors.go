package types

import "errors"

// Error taxonomy shared by the parsers and services. Errors returned by this module wrap
// one of these sentinels so that callers can classify them with errors.Is.
var (
	// ErrIO reports a failure to open, read, write or seek a file or stream.
	ErrIO = errors.New("i/o error")

	// ErrFormat reports a structurally invalid container or checkpoint store.
	ErrFormat = errors.New("format error")

	// ErrInternal reports an arithmetic overflow, a tripped safety limit or a broken invariant.
	ErrInternal = errors.New("internal error")

	// ErrCryptoProvider reports a failure of an underlying cryptographic primitive.
	// A wrong password is never reported this way.
	ErrCryptoProvider = errors.New("crypto provider error")

	// ErrCheckpointConflict reports a checkpoint store that belongs to another database.
	ErrCheckpointConflict = errors.New("checkpoint store belongs to another database")

	// ErrInvalidSeed reports a starting password the enumerator cannot walk.
	ErrInvalidSeed = errors.New("invalid starting password")
)
