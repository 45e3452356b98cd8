package inspect

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/afero"

	"github.com/panda73111/mod0keecrack/internal/parsers/kdbx"
	"github.com/panda73111/mod0keecrack/internal/services"
	"github.com/panda73111/mod0keecrack/internal/types"
	"github.com/panda73111/mod0keecrack/pkg/app"
)

// Validate validates an inspection request
func (r *Request) Validate() error {
	if r.DatabasePath == "" {
		return app.NewError(app.ErrCodeInvalidInput, "database path is required", nil)
	}
	return nil
}

// Handle processes an inspection request
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	db, err := kdbx.LoadDatabase(ctx.Fs, req.DatabasePath, kdbx.ReadOptions{Strict: req.StrictHeaders})
	if err != nil {
		return nil, app.WrapError("failed to load database", err)
	}

	cipherID, err := db.Entries.CipherUUID()
	if err != nil {
		return nil, app.NewError(app.ErrCodeDatabaseFormat, "malformed cipher identifier", err)
	}

	response := &Response{
		Path:              req.DatabasePath,
		Magic:             fmt.Sprintf("0x%08X", db.Preamble.Magic),
		Identifier:        fmt.Sprintf("0x%08X", db.Preamble.Identifier),
		Version:           db.Preamble.Version(),
		Cipher:            types.CipherName(cipherID),
		CipherID:          cipherID.String(),
		Compression:       compressionName(db.Entries.CompressionFlags()),
		TransformRounds:   db.Entries.TransformRounds(),
		InnerRandomStream: innerStreamName(db.Entries.InnerRandomStreamID()),
		PayloadOffset:     db.Payload.Offset,
		PayloadLength:     db.Payload.Length,
	}

	ids := make([]int, 0, len(db.Entries))
	for id := range db.Entries {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		response.Entries = append(response.Entries, entryInfo(db.Entries[types.HeaderID(id)]))
	}

	keyFile := services.KeyFilePath(req.DatabasePath, req.KeyFileExtension)
	if ok, err := afero.Exists(ctx.Fs, keyFile); err == nil && ok {
		response.KeyFile = keyFile
	}

	ctx.Log(fmt.Sprintf("Inspected %s: %d header entries", req.DatabasePath, len(response.Entries)))
	return response, nil
}

func entryInfo(entry *types.HeaderEntry) EntryInfo {
	info := EntryInfo{
		ID:     uint8(entry.ID),
		Name:   entry.ID.String(),
		Length: entry.Length,
		Kind:   entry.Value.Kind.String(),
	}
	switch entry.Value.Kind {
	case types.ValueUint32:
		info.Value = strconv.FormatUint(uint64(entry.Value.U32), 10)
	case types.ValueUint64:
		info.Value = strconv.FormatUint(entry.Value.U64, 10)
	default:
		info.Value = hex.EncodeToString(entry.Data)
	}
	return info
}

func compressionName(flags uint32) string {
	switch flags {
	case types.CompressionNone:
		return "none"
	case types.CompressionGzip:
		return "gzip"
	default:
		return fmt.Sprintf("unknown (%d)", flags)
	}
}

func innerStreamName(id uint32) string {
	switch id {
	case types.InnerStreamNone:
		return "none"
	case types.InnerStreamArcFour:
		return "arcfour"
	case types.InnerStreamSalsa20:
		return "salsa20"
	case types.InnerStreamChaCha20:
		return "chacha20"
	default:
		return fmt.Sprintf("unknown (%d)", id)
	}
}
