package services

import (
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/panda73111/mod0keecrack/internal/interfaces"
	"github.com/panda73111/mod0keecrack/internal/types"
)

// DefaultResultFile receives the recovered password when no other file is configured
const DefaultResultFile = "password.txt"

// FileResultSink writes the recovered password to a file
type FileResultSink struct {
	fs   afero.Fs
	path string
}

var _ interfaces.ResultSink = (*FileResultSink)(nil)

// NewFileResultSink creates a sink writing to path on fs
func NewFileResultSink(fs afero.Fs, path string) *FileResultSink {
	if path == "" {
		path = DefaultResultFile
	}
	return &FileResultSink{fs: fs, path: path}
}

// Path returns the file the password is written to
func (rs *FileResultSink) Path() string {
	return rs.path
}

// WritePassword stores password followed by a newline, readable by the owner only
func (rs *FileResultSink) WritePassword(password string) error {
	tmp := rs.path + ".tmp"
	if err := afero.WriteFile(rs.fs, tmp, []byte(password+"\n"), 0o600); err != nil {
		rs.fs.Remove(tmp)
		return fmt.Errorf("%w: failed to write %s: %v", types.ErrIO, tmp, err)
	}
	if err := rs.fs.Rename(tmp, rs.path); err != nil {
		rs.fs.Remove(tmp)
		return fmt.Errorf("%w: failed to replace %s: %v", types.ErrIO, rs.path, err)
	}
	return nil
}

// ReadPassword returns the password written earlier, without the trailing newline
func (rs *FileResultSink) ReadPassword() (string, error) {
	data, err := afero.ReadFile(rs.fs, rs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: no recovered password at %s", types.ErrIO, rs.path)
		}
		return "", fmt.Errorf("%w: failed to read %s: %v", types.ErrIO, rs.path, err)
	}
	n := len(data)
	if n > 0 && data[n-1] == '\n' {
		n--
	}
	return string(data[:n]), nil
}
