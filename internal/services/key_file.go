package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/panda73111/mod0keecrack/internal/interfaces"
	"github.com/panda73111/mod0keecrack/internal/types"
)

// DefaultKeyFileExtension replaces the database extension when looking for a key file
const DefaultKeyFileExtension = ".key"

// KeyFilePath returns the conventional key file location for dbPath: the same path
// with its last extension replaced by ext, or ext appended if there is none.
func KeyFilePath(dbPath, ext string) string {
	if ext == "" {
		ext = DefaultKeyFileExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(dbPath, filepath.Ext(dbPath)) + ext
}

// HashKeyFile returns the SHA-256 digest of the file at path.
// A missing file is not an error: it yields a nil digest.
func HashKeyFile(fs afero.Fs, path string, provider interfaces.CryptoProvider) (*[types.KeySize]byte, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to read key file %s: %v", types.ErrIO, path, err)
	}
	defer zeroBytes(data)

	digest := provider.Sum256(data)
	return &digest, nil
}
