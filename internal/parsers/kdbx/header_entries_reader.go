package kdbx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/grailbio/base/log"

	"github.com/panda73111/mod0keecrack/internal/types"
)

// ReadHeaderEntries reads tagged header entries from r until the terminator entry.
//
// Each entry is encoded as [1 byte id][2 byte little-endian length][length bytes of data].
// In strict mode an identifier outside the known range is a format error; otherwise it is
// treated as an implicit terminator and the payload is taken to start right after it.
func ReadHeaderEntries(r io.Reader, strict bool) (types.HeaderEntries, error) {
	entries := make(types.HeaderEntries, types.HeaderIDCount)
	endian := binary.LittleEndian

	for {
		var idBuf [1]byte
		if _, err := io.ReadFull(r, idBuf[:]); err != nil {
			if errors.Is(err, io.EOF) && !strict {
				log.Printf("header ended without a terminator entry after %d entries", len(entries))
				return entries, nil
			}
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: header is not terminated", types.ErrFormat)
			}
			return nil, readError("header entry id", err)
		}

		id := types.HeaderID(idBuf[0])
		if !id.Known() {
			if strict {
				return nil, fmt.Errorf("%w: unknown header entry id %d", types.ErrFormat, idBuf[0])
			}
			log.Printf("unknown header entry id %d, treating it as end of header", idBuf[0])
			return entries, nil
		}

		if _, dup := entries[id]; dup {
			return nil, fmt.Errorf("%w: duplicate header entry %s", types.ErrFormat, id)
		}

		var lenBuf [2]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return nil, readError(fmt.Sprintf("length of header entry %s", id), err)
		}
		length := endian.Uint16(lenBuf[:])

		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, readError(fmt.Sprintf("data of header entry %s", id), err)
		}

		value, err := decodeHeaderValue(id, data, endian)
		if err != nil {
			return nil, err
		}

		entries[id] = &types.HeaderEntry{
			ID:     id,
			Length: length,
			Data:   data,
			Value:  value,
		}

		if id == types.HeaderIDEnd {
			return entries, nil
		}
	}
}

// decodeHeaderValue produces the typed view of an entry payload
func decodeHeaderValue(id types.HeaderID, data []byte, endian binary.ByteOrder) (types.HeaderValue, error) {
	kind := types.ValueKindOf(id)
	v := types.HeaderValue{Kind: kind}

	if w := kind.Width(); w != 0 && len(data) != w {
		return v, fmt.Errorf("%w: header entry %s must be %d bytes, got %d", types.ErrFormat, id, w, len(data))
	}

	switch kind {
	case types.ValueUint32:
		v.U32 = endian.Uint32(data)
	case types.ValueUint64:
		v.U64 = endian.Uint64(data)
	}
	return v, nil
}
