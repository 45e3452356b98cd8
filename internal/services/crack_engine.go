package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/grailbio/base/log"
	"golang.org/x/time/rate"

	"github.com/panda73111/mod0keecrack/internal/interfaces"
	"github.com/panda73111/mod0keecrack/internal/types"
)

// EngineState is the lifecycle position of a CrackEngine
type EngineState int

const (
	StateIdle EngineState = iota
	StateRunning
	StateFound
	StateExhausted
	StateCancelled
)

func (s EngineState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFound:
		return "found"
	case StateExhausted:
		return "exhausted"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("EngineState(%d)", int(s))
	}
}

// Terminal reports whether the state ends a run
func (s EngineState) Terminal() bool {
	return s == StateFound || s == StateExhausted || s == StateCancelled
}

// Defaults for EngineOptions
const (
	DefaultCheckpointInterval uint64 = 1000
	DefaultProgressInterval          = 2 * time.Second
)

// EngineProgress is a snapshot handed to the progress callback
type EngineProgress struct {
	Candidate string
	Attempts  uint64
	Elapsed   time.Duration
}

// Rate returns attempts per second
func (p EngineProgress) Rate() float64 {
	if p.Elapsed <= 0 {
		return 0
	}
	return float64(p.Attempts) / p.Elapsed.Seconds()
}

// EngineOptions tunes a CrackEngine
type EngineOptions struct {
	// CheckpointInterval saves progress every that many attempts. Zero disables periodic saves.
	CheckpointInterval uint64

	// ProgressInterval is the minimum time between progress callbacks. Zero disables them.
	ProgressInterval time.Duration

	// Progress is called from the search loop, at most once per ProgressInterval
	Progress func(EngineProgress)
}

// DefaultEngineOptions returns the recommended options
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		CheckpointInterval: DefaultCheckpointInterval,
		ProgressInterval:   DefaultProgressInterval,
	}
}

// CrackResult is the outcome of a run
type CrackResult struct {
	State         EngineState
	Password      string
	LastAttempted string
	Attempts      uint64
	Elapsed       time.Duration

	// CheckpointErr is set when saving the final checkpoint failed. It never changes State.
	CheckpointErr error

	// ResultErr is set when the recovered password could not be written to the result sink
	ResultErr error
}

// CrackEngine drives the search: it walks the candidates, derives and verifies a key
// for each and persists progress. An engine performs a single run.
type CrackEngine struct {
	deriver  interfaces.KeyDeriver
	verifier interfaces.KeyVerifier
	store    interfaces.CheckpointStore
	sink     interfaces.ResultSink
	opts     EngineOptions
	state    EngineState
}

// NewCrackEngine wires the search pipeline
func NewCrackEngine(deriver interfaces.KeyDeriver, verifier interfaces.KeyVerifier, store interfaces.CheckpointStore, sink interfaces.ResultSink, opts EngineOptions) *CrackEngine {
	return &CrackEngine{
		deriver:  deriver,
		verifier: verifier,
		store:    store,
		sink:     sink,
		opts:     opts,
		state:    StateIdle,
	}
}

// State returns the engine's current state
func (e *CrackEngine) State() EngineState {
	return e.state
}

// Run searches from sc until the password is found, the keyspace is exhausted or ctx is
// cancelled. Those outcomes are reported in the result. An error is returned only when
// the search had to be aborted.
func (e *CrackEngine) Run(ctx context.Context, sc *SearchContext) (*CrackResult, error) {
	if e.state != StateIdle {
		return nil, fmt.Errorf("%w: engine is %s, a run needs an idle engine", types.ErrInternal, e.state)
	}
	e.state = StateRunning

	started := time.Now()
	var limiter *rate.Limiter
	if e.opts.Progress != nil && e.opts.ProgressInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(e.opts.ProgressInterval), 1)
		// the first allowance is spent so the first report comes one interval in
		limiter.Allow()
	}

	if sc.Resumed {
		log.Printf("resuming search from checkpoint %q", sc.LastAttempted)
	} else {
		log.Printf("starting search at %q", sc.StartingPassword)
	}

	candidate, exhausted := sc.FirstCandidate()
	for {
		if exhausted {
			log.Printf("keyspace of length %d exhausted after %d attempts", len(sc.StartingPassword), sc.Attempts)
			return e.finish(StateExhausted, sc, "", started), nil
		}

		select {
		case <-ctx.Done():
			log.Printf("search cancelled after %d attempts, last candidate %q", sc.Attempts, sc.LastAttempted)
			return e.finish(StateCancelled, sc, "", started), nil
		default:
		}

		masterKey, err := e.deriver.DeriveMasterKey(ctx, []byte(candidate), sc.KeyFileHash)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				log.Printf("search cancelled during %q after %d attempts", candidate, sc.Attempts)
				return e.finish(StateCancelled, sc, "", started), nil
			}
			e.state = StateIdle
			if saveErr := e.saveCheckpoint(sc); saveErr != nil {
				log.Error.Print(saveErr)
			}
			return nil, fmt.Errorf("failed to derive key for candidate %q: %w", candidate, err)
		}

		found := e.verifier.Verify(masterKey)
		sc.markAttempted(candidate)
		if found {
			log.Printf("password found after %d attempts", sc.Attempts)
			return e.finish(StateFound, sc, candidate, started), nil
		}

		if e.opts.CheckpointInterval > 0 && sc.Attempts%e.opts.CheckpointInterval == 0 {
			if err := e.saveCheckpoint(sc); err != nil {
				log.Error.Print(err)
			}
		}

		if limiter != nil && limiter.Allow() {
			e.opts.Progress(EngineProgress{
				Candidate: candidate,
				Attempts:  sc.Attempts,
				Elapsed:   time.Since(started),
			})
		}

		candidate, exhausted = NextCandidate(candidate)
	}
}

func (e *CrackEngine) finish(state EngineState, sc *SearchContext, password string, started time.Time) *CrackResult {
	e.state = state
	result := &CrackResult{
		State:         state,
		Password:      password,
		LastAttempted: sc.LastAttempted,
		Attempts:      sc.Attempts,
		Elapsed:       time.Since(started),
	}

	if state == StateFound {
		if err := e.sink.WritePassword(password); err != nil {
			log.Error.Printf("failed to store recovered password: %v", err)
			result.ResultErr = err
		}
	}
	if err := e.saveCheckpoint(sc); err != nil {
		log.Error.Print(err)
		result.CheckpointErr = err
	}
	return result
}

// saveCheckpoint records the last attempted candidate. Nothing is written before the
// first attempt, since the starting password itself has not been tested yet.
func (e *CrackEngine) saveCheckpoint(sc *SearchContext) error {
	if sc.LastAttempted == "" {
		return nil
	}
	if err := e.store.Save(sc.Record()); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}
