package services

import (
	"fmt"

	"github.com/grailbio/base/log"

	"github.com/panda73111/mod0keecrack/internal/interfaces"
	"github.com/panda73111/mod0keecrack/internal/types"
)

// SearchContext is the state of one search over the candidates of a single length
type SearchContext struct {
	DatabasePath     string
	StartingPassword string
	KeyFileHash      *[types.KeySize]byte

	// LastAttempted is the most recent candidate tested, empty until the first attempt
	// of a fresh search. A resumed search starts with the checkpointed value.
	LastAttempted string
	Resumed       bool

	// Attempts counts candidates tested during this run
	Attempts uint64
}

// NewSearchContext starts a fresh search of databasePath at startingPassword
func NewSearchContext(databasePath, startingPassword string, keyFileHash *[types.KeySize]byte) (*SearchContext, error) {
	if err := ValidateSeed(startingPassword); err != nil {
		return nil, err
	}
	return &SearchContext{
		DatabasePath:     databasePath,
		StartingPassword: startingPassword,
		KeyFileHash:      keyFileHash,
	}, nil
}

// Resume restores progress from store. A record that does not fit the starting
// password is ignored and the search starts fresh.
func (sc *SearchContext) Resume(store interfaces.CheckpointStore) (bool, error) {
	current, ok, err := store.Load(sc.DatabasePath, sc.StartingPassword)
	if err != nil {
		return false, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if !ok {
		return false, nil
	}
	if len(current) != len(sc.StartingPassword) || ValidateSeed(current) != nil {
		log.Printf("ignoring checkpoint %q for %q: not a candidate of the same length", current, sc.StartingPassword)
		return false, nil
	}
	sc.LastAttempted = current
	sc.Resumed = true
	return true, nil
}

// FirstCandidate returns where the search continues: the starting password itself
// for a fresh search, otherwise the successor of the last attempted candidate.
func (sc *SearchContext) FirstCandidate() (string, bool) {
	if sc.LastAttempted == "" {
		return sc.StartingPassword, false
	}
	return NextCandidate(sc.LastAttempted)
}

// Record returns the checkpoint for the current progress
func (sc *SearchContext) Record() types.CheckpointRecord {
	return types.CheckpointRecord{
		DatabasePath:     sc.DatabasePath,
		StartingPassword: sc.StartingPassword,
		CurrentPassword:  sc.LastAttempted,
	}
}

// markAttempted records that candidate has been tested
func (sc *SearchContext) markAttempted(candidate string) {
	sc.LastAttempted = candidate
	sc.Attempts++
}
