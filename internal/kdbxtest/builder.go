// Package kdbxtest builds small containers with a known password for tests.
package kdbxtest

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/twofish"

	"github.com/panda73111/mod0keecrack/internal/parsers/kdbx"
	"github.com/panda73111/mod0keecrack/internal/types"
)

// Options describes the container to build. Zero values select small, fast defaults.
type Options struct {
	Password    string
	KeyFileHash *[types.KeySize]byte
	Rounds      uint64
	Cipher      uuid.UUID

	MasterSeed       []byte
	TransformSeed    []byte
	IV               []byte
	StreamStartBytes []byte

	// Comment adds the optional comment entry when set
	Comment []byte

	// TrailingPayload is appended to the encrypted stream start bytes
	TrailingPayload int
}

func (o *Options) setDefaults() {
	if o.Cipher == uuid.Nil {
		o.Cipher = types.CipherAES256
	}
	if o.MasterSeed == nil {
		o.MasterSeed = pattern(0x10, 32)
	}
	if o.TransformSeed == nil {
		o.TransformSeed = pattern(0x40, 32)
	}
	if o.IV == nil {
		if o.Cipher == types.CipherChaCha20 {
			o.IV = pattern(0x70, chacha20.NonceSize)
		} else {
			o.IV = pattern(0x70, aes.BlockSize)
		}
	}
	if o.StreamStartBytes == nil {
		o.StreamStartBytes = pattern(0xA0, 32)
	}
}

type entrySpec struct {
	id   types.HeaderID
	data []byte
}

// Fixture is a built container
type Fixture struct {
	Database  *types.Database
	Bytes     []byte
	MasterKey [types.KeySize]byte
}

// Build creates a container that opens with opts.Password
func Build(opts Options) (*Fixture, error) {
	opts.setDefaults()

	masterKey, err := MasterKey(opts.Password, opts.KeyFileHash, opts.TransformSeed, opts.MasterSeed, opts.Rounds)
	if err != nil {
		return nil, err
	}

	plain := append(append([]byte(nil), opts.StreamStartBytes...), pattern(0xC0, opts.TrailingPayload)...)
	payload, err := encrypt(opts.Cipher, masterKey[:], opts.IV, plain)
	if err != nil {
		return nil, err
	}

	db := &types.Database{
		Preamble: types.FilePreamble{
			Magic:        types.KdbxMagic,
			Identifier:   types.KdbxIdentifier,
			MinorVersion: 1,
			MajorVersion: 3,
		},
		Entries: types.HeaderEntries{},
		Payload: types.EncryptedPayload{Data: payload, Length: int64(len(payload))},
	}

	cipherID := opts.Cipher
	build := []entrySpec{
		{types.HeaderIDCipherID, cipherID[:]},
		{types.HeaderIDCompressionFlags, le32(types.CompressionGzip)},
		{types.HeaderIDMasterSeed, opts.MasterSeed},
		{types.HeaderIDTransformSeed, opts.TransformSeed},
		{types.HeaderIDTransformRounds, le64(opts.Rounds)},
		{types.HeaderIDEncryptionIV, opts.IV},
		{types.HeaderIDProtectedStreamKey, pattern(0xE0, 32)},
		{types.HeaderIDStreamStartBytes, opts.StreamStartBytes},
		{types.HeaderIDInnerRandomStreamID, le32(types.InnerStreamSalsa20)},
		{types.HeaderIDEnd, []byte("\r\n\r\n")},
	}
	if opts.Comment != nil {
		build = append(build, entrySpec{types.HeaderIDComment, opts.Comment})
	}
	for _, b := range build {
		entry, err := kdbx.NewEntry(b.id, b.data)
		if err != nil {
			return nil, err
		}
		db.Entries[b.id] = entry
	}

	var buf bytes.Buffer
	if err := kdbx.WriteDatabase(&buf, db); err != nil {
		return nil, err
	}
	db.Payload.Offset = int64(buf.Len() - len(payload))

	return &Fixture{Database: db, Bytes: buf.Bytes(), MasterKey: masterKey}, nil
}

// MustBuild is Build for tests that cannot proceed without the fixture
func MustBuild(opts Options) *Fixture {
	f, err := Build(opts)
	if err != nil {
		panic(fmt.Sprintf("kdbxtest: %v", err))
	}
	return f
}

// MasterKey computes the master key the straightforward way, one primitive at a time
func MasterKey(password string, keyFileHash *[types.KeySize]byte, transformSeed, masterSeed []byte, rounds uint64) ([types.KeySize]byte, error) {
	passwordHash := sha256.Sum256([]byte(password))
	composite := passwordHash[:]
	if keyFileHash != nil {
		composite = append(composite, keyFileHash[:]...)
	}
	key := sha256.Sum256(composite)

	block, err := aes.NewCipher(transformSeed)
	if err != nil {
		return [types.KeySize]byte{}, err
	}
	for i := uint64(0); i < rounds; i++ {
		block.Encrypt(key[:16], key[:16])
		block.Encrypt(key[16:], key[16:])
	}
	transformed := sha256.Sum256(key[:])

	return sha256.Sum256(append(append([]byte(nil), masterSeed...), transformed[:]...)), nil
}

func encrypt(id uuid.UUID, key, iv, plain []byte) ([]byte, error) {
	out := make([]byte, len(plain))
	if id == types.CipherChaCha20 {
		stream, err := chacha20.NewUnauthenticatedCipher(key, iv)
		if err != nil {
			return nil, err
		}
		stream.XORKeyStream(out, plain)
		return out, nil
	}

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
		return nil, fmt.Errorf("unsupported cipher %s", id)
	}
	if err != nil {
		return nil, err
	}
	if len(plain)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("plaintext of %d bytes is not block aligned", len(plain))
	}
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, plain)
	return out, nil
}

func pattern(start byte, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = start + byte(i)
	}
	return b
}

func le32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	for i := range b {
		b[i] = byte(v >> (8 * i))
	}
	return b
}
