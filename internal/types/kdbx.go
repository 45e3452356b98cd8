package types

import (
	"fmt"

	"github.com/google/uuid"
)

// KeePass 2.x container format (KDBX 2 and 3.x).
// The outer header is little-endian throughout: a fixed 12-byte preamble followed by
// a sequence of tagged header entries terminated by HeaderIDEnd. Everything after the
// terminator entry is the encrypted payload.

// File signatures
const (
	// KdbxMagic is the first signature of every KeePass container.
	KdbxMagic uint32 = 0x9AA2D903

	// KdbxIdentifier is the second signature of a KeePass 2.x (KDBX) container.
	KdbxIdentifier uint32 = 0xB54BFB67

	// KdbIdentifier is the second signature of a legacy KeePass 1.x (KDB) container.
	KdbIdentifier uint32 = 0xB54BFB66

	// KdbxPreBetaIdentifier is the second signature used by KeePass 2.x pre-release builds.
	KdbxPreBetaIdentifier uint32 = 0xB54BFB65

	// KdbxMaxMajorVersion is the highest major file version using the AES-KDF header layout.
	// Version 4 moved the key derivation parameters into a variant dictionary.
	KdbxMaxMajorVersion uint16 = 3
)

// Sizes
const (
	// PreambleSize is the size in bytes of the fixed file preamble.
	PreambleSize = 12

	// EntryPrefixSize is the size of an entry's id byte plus its 16-bit length.
	EntryPrefixSize = 3

	// KeySize is the size of every derived key and digest in the pipeline.
	KeySize = 32

	// CheckpointSlotSize is the fixed width of every string slot in a checkpoint store.
	CheckpointSlotSize = 255
)

// FilePreamble is the fixed-size header at offset 0 of a container.
type FilePreamble struct {
	Magic        uint32
	Identifier   uint32
	MinorVersion uint16
	MajorVersion uint16
}

// IsKdbx reports whether both signatures identify a KeePass 2.x container.
func (p FilePreamble) IsKdbx() bool {
	return p.Magic == KdbxMagic && p.Identifier == KdbxIdentifier
}

// Version returns the file version as "major.minor".
func (p FilePreamble) Version() string {
	return fmt.Sprintf("%d.%d", p.MajorVersion, p.MinorVersion)
}

// HeaderID identifies a header entry.
type HeaderID uint8

// Header entry identifiers
const (
	HeaderIDEnd                 HeaderID = 0
	HeaderIDComment             HeaderID = 1
	HeaderIDCipherID            HeaderID = 2
	HeaderIDCompressionFlags    HeaderID = 3
	HeaderIDMasterSeed          HeaderID = 4
	HeaderIDTransformSeed       HeaderID = 5
	HeaderIDTransformRounds     HeaderID = 6
	HeaderIDEncryptionIV        HeaderID = 7
	HeaderIDProtectedStreamKey  HeaderID = 8
	HeaderIDStreamStartBytes    HeaderID = 9
	HeaderIDInnerRandomStreamID HeaderID = 10

	// HeaderIDCount is the number of known identifiers.
	HeaderIDCount = 11
)

var headerIDNames = [HeaderIDCount]string{
	"END",
	"COMMENT",
	"CIPHERID",
	"COMPRESSIONFLAGS",
	"MASTERSEED",
	"TRANSFORMSEED",
	"TRANSFORMROUNDS",
	"ENCRYPTIONIV",
	"PROTECTEDSTREAMKEY",
	"STREAMSTARTBYTES",
	"INNERRANDOMSTREAMID",
}

// Known reports whether id belongs to the fixed enumeration.
func (id HeaderID) Known() bool {
	return int(id) < HeaderIDCount
}

func (id HeaderID) String() string {
	if !id.Known() {
		return fmt.Sprintf("UNKNOWN(%d)", uint8(id))
	}
	return headerIDNames[id]
}

// ValueKind tags the decoded view of a header entry.
type ValueKind uint8

const (
	// ValueBytes is an opaque byte payload.
	ValueBytes ValueKind = iota
	// ValueUint32 is a little-endian 32-bit integer.
	ValueUint32
	// ValueUint64 is a little-endian 64-bit integer.
	ValueUint64
)

func (k ValueKind) String() string {
	switch k {
	case ValueUint32:
		return "uint32"
	case ValueUint64:
		return "uint64"
	default:
		return "bytes"
	}
}

// Width returns the payload length an integer view requires, or 0 for byte payloads.
func (k ValueKind) Width() int {
	switch k {
	case ValueUint32:
		return 4
	case ValueUint64:
		return 8
	default:
		return 0
	}
}

// ValueKindOf returns the view an identifier is decoded into.
func ValueKindOf(id HeaderID) ValueKind {
	switch id {
	case HeaderIDCompressionFlags, HeaderIDInnerRandomStreamID:
		return ValueUint32
	case HeaderIDTransformRounds:
		return ValueUint64
	default:
		return ValueBytes
	}
}

// HeaderValue is the tagged decoded view of an entry payload.
type HeaderValue struct {
	Kind ValueKind
	U32  uint32
	U64  uint64
}

// HeaderEntry is one tagged field of the outer header.
type HeaderEntry struct {
	ID     HeaderID
	Length uint16
	Data   []byte
	Value  HeaderValue
}

// HeaderEntries holds at most one entry per identifier.
type HeaderEntries map[HeaderID]*HeaderEntry

// Get returns the entry for id, or nil.
func (h HeaderEntries) Get(id HeaderID) *HeaderEntry {
	return h[id]
}

// Bytes returns the raw payload for id, or nil if the entry is absent.
func (h HeaderEntries) Bytes(id HeaderID) []byte {
	if e := h[id]; e != nil {
		return e.Data
	}
	return nil
}

// TransformRounds returns the decoded 64-bit round count.
func (h HeaderEntries) TransformRounds() uint64 {
	if e := h[HeaderIDTransformRounds]; e != nil {
		return e.Value.U64
	}
	return 0
}

// CompressionFlags returns the decoded 32-bit compression algorithm.
func (h HeaderEntries) CompressionFlags() uint32 {
	if e := h[HeaderIDCompressionFlags]; e != nil {
		return e.Value.U32
	}
	return 0
}

// InnerRandomStreamID returns the decoded 32-bit inner stream identifier.
func (h HeaderEntries) InnerRandomStreamID() uint32 {
	if e := h[HeaderIDInnerRandomStreamID]; e != nil {
		return e.Value.U32
	}
	return 0
}

// CipherUUID returns the payload cipher identifier. A missing entry yields
// CipherAES256, the only cipher KeePass writes by default.
func (h HeaderEntries) CipherUUID() (uuid.UUID, error) {
	data := h.Bytes(HeaderIDCipherID)
	if len(data) == 0 {
		return CipherAES256, nil
	}
	return uuid.FromBytes(data)
}

// EncryptedPayload is the ciphertext following the header.
type EncryptedPayload struct {
	Offset int64
	Length int64
	Data   []byte
}

// Database is a parsed container.
type Database struct {
	Path     string
	Preamble FilePreamble
	Entries  HeaderEntries
	Payload  EncryptedPayload
}

// RequiredHeaderIDs are the entries key derivation and verification depend on.
var RequiredHeaderIDs = []HeaderID{
	HeaderIDMasterSeed,
	HeaderIDTransformSeed,
	HeaderIDTransformRounds,
	HeaderIDEncryptionIV,
	HeaderIDStreamStartBytes,
}

// Validate checks that every required entry is present and non-empty.
func (db *Database) Validate() error {
	for _, id := range RequiredHeaderIDs {
		if len(db.Entries.Bytes(id)) == 0 {
			return fmt.Errorf("%w: missing required header entry %s", ErrFormat, id)
		}
	}
	return nil
}

// CompressionAlgorithm values for HeaderIDCompressionFlags
const (
	CompressionNone uint32 = 0
	CompressionGzip uint32 = 1
)

// InnerRandomStream values for HeaderIDInnerRandomStreamID
const (
	InnerStreamNone     uint32 = 0
	InnerStreamArcFour  uint32 = 1
	InnerStreamSalsa20  uint32 = 2
	InnerStreamChaCha20 uint32 = 3
)

// Payload cipher identifiers
var (
	CipherAES256   = uuid.MustParse("31c1f2e6-bf71-4350-be58-05216afc5aff")
	CipherTwofish  = uuid.MustParse("ad68f29f-576f-4bb9-a36a-d47af965346c")
	CipherChaCha20 = uuid.MustParse("d6038a2b-8b6f-4cb5-a524-339a31dbb59a")
)

// CipherName returns a display name for a cipher identifier.
func CipherName(id uuid.UUID) string {
	switch id {
	case CipherAES256:
		return "AES-256-CBC"
	case CipherTwofish:
		return "Twofish-CBC"
	case CipherChaCha20:
		return "ChaCha20"
	default:
		return "unknown (" + id.String() + ")"
	}
}
