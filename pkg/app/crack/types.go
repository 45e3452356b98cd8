package crack

import (
	"time"
)

// Request represents a password recovery request
type Request struct {
	DatabasePath     string
	StartingPassword string

	// Key file selection. An empty KeyFilePath looks for the database path with its
	// extension replaced by KeyFileExtension; NoKeyFile skips key files entirely.
	KeyFilePath      string
	KeyFileExtension string
	NoKeyFile        bool

	// Artifacts
	CheckpointPath string
	ResultPath     string

	// Fresh ignores any saved progress for this search
	Fresh bool

	StrictHeaders      bool
	MaxTransformRounds uint64
	CheckpointInterval uint64
	ProgressInterval   time.Duration
}

// Outcome values
const (
	OutcomeFound     = "found"
	OutcomeExhausted = "exhausted"
	OutcomeCancelled = "cancelled"
)

// Response represents the result of a recovery run
type Response struct {
	Database         string        `json:"database" yaml:"database"`
	Cipher           string        `json:"cipher" yaml:"cipher"`
	TransformRounds  uint64        `json:"transform_rounds" yaml:"transform_rounds"`
	KeyFile          string        `json:"key_file,omitempty" yaml:"key_file,omitempty"`
	StartingPassword string        `json:"starting_password" yaml:"starting_password"`
	ResumedFrom      string        `json:"resumed_from,omitempty" yaml:"resumed_from,omitempty"`
	Outcome          string        `json:"outcome" yaml:"outcome"`
	Password         string        `json:"password,omitempty" yaml:"password,omitempty"`
	LastAttempted    string        `json:"last_attempted,omitempty" yaml:"last_attempted,omitempty"`
	Attempts         uint64        `json:"attempts" yaml:"attempts"`
	Elapsed          time.Duration `json:"elapsed" yaml:"elapsed"`
	CheckpointFile   string        `json:"checkpoint_file" yaml:"checkpoint_file"`
	ResultFile       string        `json:"result_file,omitempty" yaml:"result_file,omitempty"`
	Warnings         []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Found reports whether the password was recovered
func (r *Response) Found() bool {
	return r.Outcome == OutcomeFound
}

// Rate returns attempts per second over the run
func (r *Response) Rate() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Attempts) / r.Elapsed.Seconds()
}
