package services

import (
	"fmt"
	"math/big"

	"github.com/panda73111/mod0keecrack/internal/types"
)

// Candidate alphabet: printable ASCII in code point order
const (
	MinSymbol    byte = ' '
	MaxSymbol    byte = '~'
	AlphabetSize      = int(MaxSymbol-MinSymbol) + 1
)

// MaxCandidateLength is the longest starting password a checkpoint slot can hold
const MaxCandidateLength = types.CheckpointSlotSize

// NextCandidate returns the successor of password in odometer order. The rightmost
// character advances first and wraps to MinSymbol, carrying into its left neighbour.
// A carry out of the first character means the keyspace for this length is
// exhausted, reported as ("", true). The length never changes.
func NextCandidate(password string) (string, bool) {
	buf := []byte(password)
	for i := len(buf) - 1; i >= 0; i-- {
		if buf[i] < MaxSymbol {
			buf[i]++
			return string(buf), false
		}
		buf[i] = MinSymbol
	}
	return "", true
}

// ValidateSeed checks that password can start a search
func ValidateSeed(password string) error {
	if password == "" {
		return fmt.Errorf("%w: must not be empty", types.ErrInvalidSeed)
	}
	if len(password) > MaxCandidateLength {
		return fmt.Errorf("%w: %d characters, limit is %d", types.ErrInvalidSeed, len(password), MaxCandidateLength)
	}
	for i := 0; i < len(password); i++ {
		if c := password[i]; c < MinSymbol || c > MaxSymbol {
			return fmt.Errorf("%w: byte 0x%02x at position %d is outside printable ASCII", types.ErrInvalidSeed, c, i)
		}
	}
	return nil
}

// CandidateRank returns the zero-based position of password among the candidates of its length
func CandidateRank(password string) *big.Int {
	rank := new(big.Int)
	base := big.NewInt(int64(AlphabetSize))
	digit := new(big.Int)
	for i := 0; i < len(password); i++ {
		rank.Mul(rank, base)
		rank.Add(rank, digit.SetInt64(int64(password[i]-MinSymbol)))
	}
	return rank
}

// KeyspaceSize returns the number of candidates of the given length
func KeyspaceSize(length int) *big.Int {
	return new(big.Int).Exp(big.NewInt(int64(AlphabetSize)), big.NewInt(int64(length)), nil)
}

// RemainingCandidates returns how many successors password has before exhaustion
func RemainingCandidates(password string) *big.Int {
	remaining := KeyspaceSize(len(password))
	remaining.Sub(remaining, CandidateRank(password))
	return remaining.Sub(remaining, big.NewInt(1))
}
