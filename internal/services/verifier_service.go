package services

import (
	"crypto/subtle"
	"fmt"

	"github.com/google/uuid"

	"github.com/panda73111/mod0keecrack/internal/interfaces"
	"github.com/panda73111/mod0keecrack/internal/types"
)

// VerifierService checks candidate master keys against the stream start bytes of one database
type VerifierService struct {
	provider   interfaces.CryptoProvider
	cipherID   uuid.UUID
	iv         []byte
	ciphertext []byte
	expected   []byte
}

var _ interfaces.KeyVerifier = (*VerifierService)(nil)

// NewVerifierService checks that db can be verified at all and captures what Verify needs
func NewVerifierService(db *types.Database, provider interfaces.CryptoProvider) (*VerifierService, error) {
	if err := db.Validate(); err != nil {
		return nil, err
	}

	cipherID, err := db.Entries.CipherUUID()
	if err != nil {
		return nil, fmt.Errorf("%w: malformed cipher identifier: %v", types.ErrFormat, err)
	}
	blockSize, err := provider.BlockSize(cipherID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrFormat, err)
	}
	ivSize, err := provider.IVSize(cipherID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrFormat, err)
	}

	iv := db.Entries.Bytes(types.HeaderIDEncryptionIV)
	if len(iv) != ivSize {
		return nil, fmt.Errorf("%w: %s expects a %d byte IV, header has %d", types.ErrFormat, types.CipherName(cipherID), ivSize, len(iv))
	}

	expected := db.Entries.Bytes(types.HeaderIDStreamStartBytes)
	if blockSize > 0 && len(expected)%blockSize != 0 {
		return nil, fmt.Errorf("%w: stream start bytes length %d is not a multiple of the %d byte block", types.ErrFormat, len(expected), blockSize)
	}
	if int64(len(expected)) > int64(len(db.Payload.Data)) {
		return nil, fmt.Errorf("%w: payload is %d bytes, shorter than the %d stream start bytes", types.ErrFormat, len(db.Payload.Data), len(expected))
	}

	return &VerifierService{
		provider:   provider,
		cipherID:   cipherID,
		iv:         iv,
		ciphertext: db.Payload.Data[:len(expected)],
		expected:   expected,
	}, nil
}

// CipherID returns the payload cipher the verifier decrypts with
func (v *VerifierService) CipherID() uuid.UUID {
	return v.cipherID
}

// Verify reports whether masterKey decrypts the payload prefix to the stream start bytes.
// Any failure of the crypto provider counts as a mismatch.
func (v *VerifierService) Verify(masterKey [types.KeySize]byte) bool {
	plain, err := v.provider.DecryptPrefix(v.cipherID, masterKey[:], v.iv, v.ciphertext)
	if err != nil {
		return false
	}
	defer zeroBytes(plain)
	return subtle.ConstantTimeCompare(plain, v.expected) == 1
}
