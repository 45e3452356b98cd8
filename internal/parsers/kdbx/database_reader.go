package kdbx

import (
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/panda73111/mod0keecrack/internal/types"
)

// ReadOptions controls how tolerant the header parser is
type ReadOptions struct {
	// Strict rejects unknown header entry identifiers instead of treating them as the end of the header
	Strict bool
}

// DefaultReadOptions returns the recommended options
func DefaultReadOptions() ReadOptions {
	return ReadOptions{Strict: true}
}

// ReadDatabase parses a complete container from r. No partial result is returned on error.
func ReadDatabase(r io.ReadSeeker, opts ReadOptions) (*types.Database, error) {
	preamble, err := ReadPreamble(r)
	if err != nil {
		return nil, err
	}
	if err := checkSignature(preamble); err != nil {
		return nil, err
	}

	entries, err := ReadHeaderEntries(r, opts.Strict)
	if err != nil {
		return nil, err
	}

	payload, err := ReadPayload(r)
	if err != nil {
		return nil, err
	}

	db := &types.Database{
		Preamble: preamble,
		Entries:  entries,
		Payload:  payload,
	}
	if err := db.Validate(); err != nil {
		return nil, err
	}
	return db, nil
}

// LoadDatabase opens path on fs and parses it
func LoadDatabase(fs afero.Fs, path string, opts ReadOptions) (_ *types.Database, err error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", types.ErrIO, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: failed to close database: %v", types.ErrIO, cerr)
		}
	}()

	db, err := ReadDatabase(f, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	db.Path = path
	return db, nil
}
