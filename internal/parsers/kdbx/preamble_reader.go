package kdbx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/panda73111/mod0keecrack/internal/types"
)

// ReadPreamble reads the fixed 12-byte file preamble from r
func ReadPreamble(r io.Reader) (types.FilePreamble, error) {
	var buf [types.PreambleSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return types.FilePreamble{}, readError("file preamble", err)
	}
	return parsePreamble(buf[:], binary.LittleEndian), nil
}

// parsePreamble decodes a preamble from a buffer of at least PreambleSize bytes
func parsePreamble(data []byte, endian binary.ByteOrder) types.FilePreamble {
	offset := 0
	p := types.FilePreamble{}

	p.Magic = endian.Uint32(data[offset : offset+4])
	offset += 4
	p.Identifier = endian.Uint32(data[offset : offset+4])
	offset += 4
	p.MinorVersion = endian.Uint16(data[offset : offset+2])
	offset += 2
	p.MajorVersion = endian.Uint16(data[offset : offset+2])

	return p
}

// checkSignature rejects anything that is not a KDBX container this tool can attack
func checkSignature(p types.FilePreamble) error {
	if p.Magic != types.KdbxMagic {
		return fmt.Errorf("%w: bad file magic 0x%08x", types.ErrFormat, p.Magic)
	}
	switch p.Identifier {
	case types.KdbxIdentifier:
	case types.KdbIdentifier:
		return fmt.Errorf("%w: KeePass 1.x (KDB) containers are not supported", types.ErrFormat)
	case types.KdbxPreBetaIdentifier:
		return fmt.Errorf("%w: KeePass 2.x pre-release containers are not supported", types.ErrFormat)
	default:
		return fmt.Errorf("%w: unknown file identifier 0x%08x", types.ErrFormat, p.Identifier)
	}
	if p.MajorVersion > types.KdbxMaxMajorVersion {
		return fmt.Errorf("%w: file version %s uses a header layout that is not supported", types.ErrFormat, p.Version())
	}
	return nil
}

// readError classifies a short read as a format error and anything else as an I/O error
func readError(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated %s", types.ErrFormat, what)
	}
	return fmt.Errorf("%w: failed to read %s: %v", types.ErrIO, what, err)
}
