package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/twofish"

	"github.com/panda73111/mod0keecrack/internal/interfaces"
	"github.com/panda73111/mod0keecrack/internal/types"
)

// CryptoService is the portable CryptoProvider: SHA-256, AES-256 for the key
// transformation and AES/Twofish in CBC mode or ChaCha20 for the payload.
type CryptoService struct{}

var _ interfaces.CryptoProvider = (*CryptoService)(nil)

// NewCryptoService creates a new crypto service
func NewCryptoService() *CryptoService {
	return &CryptoService{}
}

// Sum256 hashes the concatenation of parts
func (cs *CryptoService) Sum256(parts ...[]byte) [types.KeySize]byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out [types.KeySize]byte
	h.Sum(out[:0])
	return out
}

// NewTransformCipher returns AES-256 keyed with the transform seed
func (cs *CryptoService) NewTransformCipher(key []byte) (cipher.Block, error) {
	if len(key) != types.KeySize {
		return nil, fmt.Errorf("%w: transform seed must be %d bytes, got %d", types.ErrCryptoProvider, types.KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create AES cipher: %v", types.ErrCryptoProvider, err)
	}
	return block, nil
}

// BlockSize returns the block size of the payload cipher, 0 for stream ciphers
func (cs *CryptoService) BlockSize(id uuid.UUID) (int, error) {
	switch id {
	case types.CipherAES256:
		return aes.BlockSize, nil
	case types.CipherTwofish:
		return twofish.BlockSize, nil
	case types.CipherChaCha20:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: unsupported payload cipher %s", types.ErrCryptoProvider, id)
	}
}

// IVSize returns the IV length the payload cipher expects
func (cs *CryptoService) IVSize(id uuid.UUID) (int, error) {
	switch id {
	case types.CipherAES256:
		return aes.BlockSize, nil
	case types.CipherTwofish:
		return twofish.BlockSize, nil
	case types.CipherChaCha20:
		return chacha20.NonceSize, nil
	default:
		return 0, fmt.Errorf("%w: unsupported payload cipher %s", types.ErrCryptoProvider, id)
	}
}

// DecryptPrefix decrypts src, which must be a whole number of blocks for block ciphers
func (cs *CryptoService) DecryptPrefix(id uuid.UUID, key, iv, src []byte) ([]byte, error) {
	return cs.crypt(id, key, iv, src, false)
}

// EncryptPrefix is the inverse of DecryptPrefix
func (cs *CryptoService) EncryptPrefix(id uuid.UUID, key, iv, src []byte) ([]byte, error) {
	return cs.crypt(id, key, iv, src, true)
}

func (cs *CryptoService) crypt(id uuid.UUID, key, iv, src []byte, encrypt bool) ([]byte, error) {
	if id == types.CipherChaCha20 {
		stream, err := chacha20.NewUnauthenticatedCipher(key, iv)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to create ChaCha20 cipher: %v", types.ErrCryptoProvider, err)
		}
		dst := make([]byte, len(src))
		stream.XORKeyStream(dst, src)
		return dst, nil
	}

	block, err := cs.newPayloadBlock(id, key)
	if err != nil {
		return nil, err
	}
	if len(iv) != block.BlockSize() {
		return nil, fmt.Errorf("%w: IV must be %d bytes, got %d", types.ErrCryptoProvider, block.BlockSize(), len(iv))
	}
	if len(src)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("%w: input is not a multiple of the block size", types.ErrCryptoProvider)
	}

	dst := make([]byte, len(src))
	if encrypt {
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(dst, src)
	} else {
		cipher.NewCBCDecrypter(block, iv).CryptBlocks(dst, src)
	}
	return dst, nil
}

func (cs *CryptoService) newPayloadBlock(id uuid.UUID, key []byte) (cipher.Block, error) {
	var (
		block cipher.Block
		err   error
	)
	switch id {
	case types.CipherAES256:
		block, err = aes.NewCipher(key)
	case types.CipherTwofish:
		block, err = twofish.NewCipher(key)
	default:
		return nil, fmt.Errorf("%w: unsupported payload cipher %s", types.ErrCryptoProvider, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create %s cipher: %v", types.ErrCryptoProvider, types.CipherName(id), err)
	}
	return block, nil
}
