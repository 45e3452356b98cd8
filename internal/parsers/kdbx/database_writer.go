package kdbx

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/panda73111/mod0keecrack/internal/types"
)

// NewEntry builds a header entry holding data, with its typed view decoded
func NewEntry(id types.HeaderID, data []byte) (*types.HeaderEntry, error) {
	if len(data) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: header entry %s is %d bytes, limit is %d", types.ErrFormat, id, len(data), math.MaxUint16)
	}
	value, err := decodeHeaderValue(id, data, binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	return &types.HeaderEntry{
		ID:     id,
		Length: uint16(len(data)),
		Data:   append([]byte(nil), data...),
		Value:  value,
	}, nil
}

// NewUint32Entry builds a 32-bit integer entry
func NewUint32Entry(id types.HeaderID, v uint32) (*types.HeaderEntry, error) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return NewEntry(id, buf[:])
}

// NewUint64Entry builds a 64-bit integer entry
func NewUint64Entry(id types.HeaderID, v uint64) (*types.HeaderEntry, error) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return NewEntry(id, buf[:])
}

// WriteDatabase encodes db in container format. Entries are written in ascending
// identifier order and the terminator entry is always written last.
func WriteDatabase(w io.Writer, db *types.Database) error {
	endian := binary.LittleEndian

	var preamble [types.PreambleSize]byte
	endian.PutUint32(preamble[0:4], db.Preamble.Magic)
	endian.PutUint32(preamble[4:8], db.Preamble.Identifier)
	endian.PutUint16(preamble[8:10], db.Preamble.MinorVersion)
	endian.PutUint16(preamble[10:12], db.Preamble.MajorVersion)
	if _, err := w.Write(preamble[:]); err != nil {
		return fmt.Errorf("%w: failed to write preamble: %v", types.ErrIO, err)
	}

	ids := make([]int, 0, len(db.Entries))
	for id := range db.Entries {
		if id != types.HeaderIDEnd {
			ids = append(ids, int(id))
		}
	}
	sort.Ints(ids)
	ids = append(ids, int(types.HeaderIDEnd))

	for _, id := range ids {
		entry := db.Entries[types.HeaderID(id)]
		var data []byte
		if entry != nil {
			data = entry.Data
		}
		if err := writeEntry(w, types.HeaderID(id), data, endian); err != nil {
			return err
		}
	}

	if _, err := w.Write(db.Payload.Data); err != nil {
		return fmt.Errorf("%w: failed to write payload: %v", types.ErrIO, err)
	}
	return nil
}

func writeEntry(w io.Writer, id types.HeaderID, data []byte, endian binary.ByteOrder) error {
	if len(data) > math.MaxUint16 {
		return fmt.Errorf("%w: header entry %s is too long", types.ErrFormat, id)
	}
	prefix := make([]byte, types.EntryPrefixSize)
	prefix[0] = byte(id)
	endian.PutUint16(prefix[1:3], uint16(len(data)))
	if _, err := w.Write(prefix); err != nil {
		return fmt.Errorf("%w: failed to write header entry %s: %v", types.ErrIO, id, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: failed to write header entry %s: %v", types.ErrIO, id, err)
	}
	return nil
}
