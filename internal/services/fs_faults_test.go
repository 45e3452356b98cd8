package services

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/afero"
)

var errInjected = errors.New("injected device error")

// brokenFs fails every open
type brokenFs struct {
	afero.Fs
}

func (brokenFs) Open(name string) (afero.File, error) {
	return nil, &os.PathError{Op: "open", Path: name, Err: errInjected}
}

func (brokenFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	return nil, &os.PathError{Op: "open", Path: name, Err: errInjected}
}

// renameFailFs fails every rename
type renameFailFs struct {
	afero.Fs
}

func (renameFailFs) Rename(oldname, newname string) error {
	return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: errInjected}
}

// shortWriteFs hands out files whose writes fail once the temporary file is opened
type shortWriteFs struct {
	afero.Fs
}

func (fs shortWriteFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f, err := fs.Fs.OpenFile(name, flag, perm)
	if err != nil || !strings.HasSuffix(name, ".tmp") {
		return f, err
	}
	return failingWriteFile{f}, nil
}

type failingWriteFile struct {
	afero.File
}

func (f failingWriteFile) Write(p []byte) (int, error) {
	// half of the data reaches the file before the failure
	n, _ := f.File.Write(p[:len(p)/2])
	return n, errInjected
}
