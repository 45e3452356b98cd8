package kdbx

import (
	"fmt"
	"io"

	"github.com/panda73111/mod0keecrack/internal/types"
)

// ReadPayload captures the current stream position as the start of the ciphertext
// and reads everything up to the end of the stream.
func ReadPayload(r io.ReadSeeker) (types.EncryptedPayload, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return types.EncryptedPayload{}, fmt.Errorf("%w: failed to determine payload offset: %v", types.ErrIO, err)
	}

	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return types.EncryptedPayload{}, fmt.Errorf("%w: failed to seek to end of file: %v", types.ErrIO, err)
	}

	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return types.EncryptedPayload{}, fmt.Errorf("%w: failed to seek back to payload: %v", types.ErrIO, err)
	}

	length := end - start
	if length < 0 {
		return types.EncryptedPayload{}, fmt.Errorf("%w: payload offset %d is past end of file %d", types.ErrIO, start, end)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return types.EncryptedPayload{}, fmt.Errorf("%w: failed to read payload: %v", types.ErrIO, err)
	}

	return types.EncryptedPayload{
		Offset: start,
		Length: length,
		Data:   data,
	}, nil
}
