package interfaces

import (
	"context"
	"crypto/cipher"

	"github.com/google/uuid"

	"github.com/panda73111/mod0keecrack/internal/types"
)

// CryptoProvider supplies the primitives the key derivation and verification pipeline is built on
type CryptoProvider interface {
	// Sum256 hashes the concatenation of parts into a 256-bit digest
	Sum256(parts ...[]byte) [types.KeySize]byte

	// NewTransformCipher returns the block cipher used for the key transformation rounds
	NewTransformCipher(key []byte) (cipher.Block, error)

	// DecryptPrefix decrypts src with the payload cipher identified by id
	DecryptPrefix(id uuid.UUID, key, iv, src []byte) ([]byte, error)

	// BlockSize returns the block size of the payload cipher identified by id, or 0 for stream ciphers
	BlockSize(id uuid.UUID) (int, error)

	// IVSize returns the IV length the payload cipher identified by id expects
	IVSize(id uuid.UUID) (int, error)
}

// KeyDeriver turns a password and optional key file digest into a master key
type KeyDeriver interface {
	DeriveMasterKey(ctx context.Context, password []byte, keyFileHash *[types.KeySize]byte) ([types.KeySize]byte, error)
}

// KeyVerifier tests a master key against the known plaintext of a container
type KeyVerifier interface {
	Verify(masterKey [types.KeySize]byte) bool
}

// CheckpointStore persists search progress
type CheckpointStore interface {
	// Save merges rec into the store, replacing any record with the same key
	Save(rec types.CheckpointRecord) error

	// Load returns the current password saved for (databasePath, startingPassword)
	Load(databasePath, startingPassword string) (string, bool, error)

	// Records lists every record in the store
	Records() ([]types.CheckpointRecord, error)
}

// ResultSink receives the recovered password
type ResultSink interface {
	WritePassword(password string) error
}
