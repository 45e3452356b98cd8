package services

import (
	"context"
	"crypto/cipher"
	"fmt"
	"math"
	"runtime"

	"github.com/panda73111/mod0keecrack/internal/interfaces"
	"github.com/panda73111/mod0keecrack/internal/types"
)

// DefaultMaxTransformRounds bounds the round count taken from an untrusted header.
// KeePass calibrates to about one second per unlock, which stays well below this.
const DefaultMaxTransformRounds uint64 = 60_000_000

// transformPollMask sets how often the transformation loop checks for cancellation
const transformPollMask = 1<<16 - 1

// DerivationOptions tunes the key derivation service
type DerivationOptions struct {
	// MaxTransformRounds rejects headers asking for more rounds. Zero means DefaultMaxTransformRounds.
	MaxTransformRounds uint64
}

// KeyDerivationService derives master keys for one database. The header is immutable,
// so the transform cipher and the seeds are prepared once and shared by every attempt.
type KeyDerivationService struct {
	provider   interfaces.CryptoProvider
	transform  cipher.Block
	masterSeed []byte
	rounds     uint64
}

var _ interfaces.KeyDeriver = (*KeyDerivationService)(nil)

// NewKeyDerivationService prepares derivation for db
func NewKeyDerivationService(db *types.Database, provider interfaces.CryptoProvider, opts DerivationOptions) (*KeyDerivationService, error) {
	if err := db.Validate(); err != nil {
		return nil, err
	}

	limit := opts.MaxTransformRounds
	if limit == 0 {
		limit = DefaultMaxTransformRounds
	}
	rounds := db.Entries.TransformRounds()
	if rounds > limit {
		return nil, fmt.Errorf("%w: header asks for %d transform rounds, limit is %d", types.ErrInternal, rounds, limit)
	}

	transform, err := provider.NewTransformCipher(db.Entries.Bytes(types.HeaderIDTransformSeed))
	if err != nil {
		return nil, err
	}
	if types.KeySize%transform.BlockSize() != 0 {
		return nil, fmt.Errorf("%w: transform cipher block size %d does not divide the key size", types.ErrCryptoProvider, transform.BlockSize())
	}

	return &KeyDerivationService{
		provider:   provider,
		transform:  transform,
		masterSeed: db.Entries.Bytes(types.HeaderIDMasterSeed),
		rounds:     rounds,
	}, nil
}

// Rounds returns the number of transformation rounds applied per attempt
func (s *KeyDerivationService) Rounds() uint64 {
	return s.rounds
}

// DeriveMasterKey turns password, and the key file digest if one is given, into the master key.
// It returns ctx.Err() if ctx is cancelled while the transformation rounds run.
func (s *KeyDerivationService) DeriveMasterKey(ctx context.Context, password []byte, keyFileHash *[types.KeySize]byte) ([types.KeySize]byte, error) {
	var masterKey [types.KeySize]byte

	passwordHash := s.provider.Sum256(password)
	defer zeroBytes(passwordHash[:])

	var transformKey [types.KeySize]byte
	if keyFileHash == nil {
		transformKey = s.provider.Sum256(passwordHash[:])
	} else {
		transformKey = s.provider.Sum256(passwordHash[:], keyFileHash[:])
	}
	defer zeroBytes(transformKey[:])

	if err := s.transformKey(ctx, &transformKey); err != nil {
		return masterKey, err
	}
	transformKey = s.provider.Sum256(transformKey[:])

	inputLen, ok := addLengths(len(s.masterSeed), len(transformKey))
	if !ok {
		return masterKey, fmt.Errorf("%w: master key input length overflows", types.ErrInternal)
	}
	input := make([]byte, 0, inputLen)
	input = append(input, s.masterSeed...)
	input = append(input, transformKey[:]...)
	defer zeroBytes(input)

	masterKey = s.provider.Sum256(input)
	return masterKey, nil
}

// transformKey encrypts key in place, block by block, once per round
func (s *KeyDerivationService) transformKey(ctx context.Context, key *[types.KeySize]byte) error {
	bs := s.transform.BlockSize()
	for i := uint64(0); i < s.rounds; i++ {
		if i&transformPollMask == transformPollMask {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for off := 0; off < types.KeySize; off += bs {
			s.transform.Encrypt(key[off:off+bs], key[off:off+bs])
		}
	}
	return nil
}

// addLengths adds two non-negative lengths, reporting overflow
func addLengths(a, b int) (int, bool) {
	if a < 0 || b < 0 || a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}

// zeroBytes overwrites key material once it is no longer needed
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
