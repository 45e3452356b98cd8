package services

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/spf13/afero"

	"github.com/panda73111/mod0keecrack/internal/interfaces"
	"github.com/panda73111/mod0keecrack/internal/types"
)

// DefaultCheckpointFile is the store name used when none is configured
const DefaultCheckpointFile = "checkpoints.dat"

// CheckpointStore keeps search progress in a file of fixed-size slots. Slot 0 holds
// the database path, followed by (starting password, current password) pairs.
// Every slot is CheckpointSlotSize bytes, left-aligned and NUL-padded.
type CheckpointStore struct {
	fs   afero.Fs
	path string
}

var _ interfaces.CheckpointStore = (*CheckpointStore)(nil)

// NewCheckpointStore creates a store backed by path on fs
func NewCheckpointStore(fs afero.Fs, path string) *CheckpointStore {
	if path == "" {
		path = DefaultCheckpointFile
	}
	return &CheckpointStore{fs: fs, path: path}
}

// Path returns the store location
func (s *CheckpointStore) Path() string {
	return s.path
}

// checkpointFile is the decoded content of a store
type checkpointFile struct {
	databasePath string
	pairs        [][2]string
}

// Save merges rec into the store and replaces the file atomically. A database path
// longer than a slot is stored truncated; passwords must fit.
func (s *CheckpointStore) Save(rec types.CheckpointRecord) error {
	for _, v := range []string{rec.StartingPassword, rec.CurrentPassword} {
		if len(v) > types.CheckpointSlotSize {
			return fmt.Errorf("%w: checkpoint value of %d bytes exceeds the %d byte slot", types.ErrFormat, len(v), types.CheckpointSlotSize)
		}
	}
	databasePath := slotValue(rec.DatabasePath)

	file, exists, err := s.read()
	if err != nil {
		return err
	}
	if !exists {
		file = &checkpointFile{databasePath: databasePath}
	}
	if file.databasePath != databasePath {
		return fmt.Errorf("%w: %s holds progress for %s", types.ErrCheckpointConflict, s.path, file.databasePath)
	}

	replaced := false
	for i := range file.pairs {
		if file.pairs[i][0] == rec.StartingPassword {
			file.pairs[i][1] = rec.CurrentPassword
			replaced = true
			break
		}
	}
	if !replaced {
		file.pairs = append(file.pairs, [2]string{rec.StartingPassword, rec.CurrentPassword})
	}

	if err := s.write(encodeCheckpointFile(file)); err != nil {
		return err
	}
	log.Debug.Printf("checkpoint saved to %s: %q -> %q", s.path, rec.StartingPassword, rec.CurrentPassword)
	return nil
}

// Load returns the current password recorded for the search of databasePath that started at startingPassword
func (s *CheckpointStore) Load(databasePath, startingPassword string) (string, bool, error) {
	file, exists, err := s.read()
	if err != nil || !exists {
		return "", false, err
	}
	if file.databasePath != slotValue(databasePath) {
		log.Debug.Printf("checkpoint store %s belongs to %s, ignoring it for %s", s.path, file.databasePath, databasePath)
		return "", false, nil
	}
	for _, pair := range file.pairs {
		if pair[0] == startingPassword {
			return pair[1], true, nil
		}
	}
	return "", false, nil
}

// CheckOwner fails with ErrCheckpointConflict when the store already holds progress
// for a database other than databasePath. A missing store belongs to nobody.
func (s *CheckpointStore) CheckOwner(databasePath string) error {
	file, exists, err := s.read()
	if err != nil || !exists {
		return err
	}
	if file.databasePath != slotValue(databasePath) {
		return fmt.Errorf("%w: %s holds progress for %s", types.ErrCheckpointConflict, s.path, file.databasePath)
	}
	return nil
}

// Records lists every record in the store, in file order
func (s *CheckpointStore) Records() ([]types.CheckpointRecord, error) {
	file, exists, err := s.read()
	if err != nil || !exists {
		return nil, err
	}
	records := make([]types.CheckpointRecord, 0, len(file.pairs))
	for _, pair := range file.pairs {
		records = append(records, types.CheckpointRecord{
			DatabasePath:     file.databasePath,
			StartingPassword: pair[0],
			CurrentPassword:  pair[1],
		})
	}
	return records, nil
}

func (s *CheckpointStore) read() (*checkpointFile, bool, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: failed to read checkpoint store %s: %v", types.ErrIO, s.path, err)
	}
	file, err := parseCheckpointFile(data)
	if err != nil {
		return nil, false, fmt.Errorf("checkpoint store %s: %w", s.path, err)
	}
	return file, true, nil
}

// write replaces the store through a temporary sibling so a failed write never
// leaves a truncated store behind
func (s *CheckpointStore) write(data []byte) (err error) {
	tmp := s.path + ".tmp"
	f, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", types.ErrIO, tmp, err)
	}
	defer func() {
		if err != nil {
			if rerr := s.fs.Remove(tmp); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
				log.Error.Printf("failed to remove %s: %v", tmp, rerr)
			}
		}
	}()

	if _, err = f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("%w: failed to write %s: %v", types.ErrIO, tmp, err)
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("%w: failed to sync %s: %v", types.ErrIO, tmp, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("%w: failed to close %s: %v", types.ErrIO, tmp, err)
	}
	if err = s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: failed to replace %s: %v", types.ErrIO, s.path, err)
	}
	return nil
}

func parseCheckpointFile(data []byte) (*checkpointFile, error) {
	if len(data) == 0 || len(data)%types.CheckpointSlotSize != 0 {
		return nil, fmt.Errorf("%w: size %d is not a whole number of %d byte slots", types.ErrFormat, len(data), types.CheckpointSlotSize)
	}
	slots := len(data) / types.CheckpointSlotSize
	if (slots-1)%2 != 0 {
		return nil, fmt.Errorf("%w: %d slots do not form (starting, current) pairs", types.ErrFormat, slots)
	}

	file := &checkpointFile{databasePath: decodeSlot(data[:types.CheckpointSlotSize])}
	for offset := types.CheckpointSlotSize; offset < len(data); offset += 2 * types.CheckpointSlotSize {
		start := decodeSlot(data[offset : offset+types.CheckpointSlotSize])
		current := decodeSlot(data[offset+types.CheckpointSlotSize : offset+2*types.CheckpointSlotSize])
		file.pairs = append(file.pairs, [2]string{start, current})
	}
	return file, nil
}

func encodeCheckpointFile(file *checkpointFile) []byte {
	data := make([]byte, 0, (1+2*len(file.pairs))*types.CheckpointSlotSize)
	data = appendSlot(data, file.databasePath)
	for _, pair := range file.pairs {
		data = appendSlot(data, pair[0])
		data = appendSlot(data, pair[1])
	}
	return data
}

// slotValue is value as it reads back from a slot
func slotValue(value string) string {
	if i := strings.IndexByte(value, 0); i >= 0 {
		value = value[:i]
	}
	if len(value) > types.CheckpointSlotSize {
		value = value[:types.CheckpointSlotSize]
	}
	return value
}

func appendSlot(dst []byte, value string) []byte {
	var slot [types.CheckpointSlotSize]byte
	copy(slot[:], value)
	return append(dst, slot[:]...)
}

func decodeSlot(slot []byte) string {
	if i := bytes.IndexByte(slot, 0); i >= 0 {
		slot = slot[:i]
	}
	return string(slot)
}
