package crack

import (
	"errors"
	"fmt"
	"time"

	"github.com/panda73111/mod0keecrack/internal/parsers/kdbx"
	"github.com/panda73111/mod0keecrack/internal/services"
	"github.com/panda73111/mod0keecrack/internal/types"
	"github.com/panda73111/mod0keecrack/pkg/app"
)

// Handle processes a recovery request
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	// 1. Validate request
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. Load and check the database
	db, err := kdbx.LoadDatabase(ctx.Fs, req.DatabasePath, kdbx.ReadOptions{Strict: req.StrictHeaders})
	if err != nil {
		return nil, app.WrapError("failed to load database", err)
	}
	ctx.Log(fmt.Sprintf("Loaded %s: KDBX %s, %d header entries, %d byte payload",
		req.DatabasePath, db.Preamble.Version(), len(db.Entries), db.Payload.Length))

	provider := services.NewCryptoService()

	keyFilePath, keyFileHash, err := resolveKeyFile(ctx, req, provider)
	if err != nil {
		return nil, err
	}

	deriver, err := services.NewKeyDerivationService(db, provider, services.DerivationOptions{
		MaxTransformRounds: req.MaxTransformRounds,
	})
	if err != nil {
		return nil, app.WrapError("cannot derive keys for this database", err)
	}
	verifier, err := services.NewVerifierService(db, provider)
	if err != nil {
		return nil, app.WrapError("cannot verify keys for this database", err)
	}

	// 3. Restore progress
	store := services.NewCheckpointStore(ctx.Fs, req.CheckpointPath)
	sink := services.NewFileResultSink(ctx.Fs, req.ResultPath)

	sc, err := services.NewSearchContext(req.DatabasePath, req.StartingPassword, keyFileHash)
	if err != nil {
		return nil, app.WrapError("invalid starting password", err)
	}
	if err := store.CheckOwner(req.DatabasePath); err != nil {
		if errors.Is(err, types.ErrCheckpointConflict) {
			return nil, app.NewError(app.ErrCodeCheckpoint, "checkpoint store belongs to another database, pass a different checkpoint file", err)
		}
		return nil, app.NewError(app.ErrCodeCheckpoint, "failed to read checkpoint store", err)
	}
	if !req.Fresh {
		if _, err := sc.Resume(store); err != nil {
			return nil, app.NewError(app.ErrCodeCheckpoint, "failed to read checkpoint store", err)
		}
	}

	response := &Response{
		Database:         req.DatabasePath,
		Cipher:           types.CipherName(verifier.CipherID()),
		TransformRounds:  deriver.Rounds(),
		KeyFile:          keyFilePath,
		StartingPassword: req.StartingPassword,
		CheckpointFile:   store.Path(),
	}
	if sc.Resumed {
		response.ResumedFrom = sc.LastAttempted
	}

	// 4. Search
	opts := services.EngineOptions{
		CheckpointInterval: req.CheckpointInterval,
		ProgressInterval:   req.ProgressInterval,
		Progress:           progressReporter(ctx, sc),
	}
	engine := services.NewCrackEngine(deriver, verifier, store, sink, opts)

	result, err := engine.Run(ctx, sc)
	if err != nil {
		return nil, app.WrapError("search aborted", err)
	}

	response.Outcome = result.State.String()
	response.Password = result.Password
	response.LastAttempted = result.LastAttempted
	response.Attempts = result.Attempts
	response.Elapsed = result.Elapsed
	if result.State == services.StateFound && result.ResultErr == nil {
		response.ResultFile = sink.Path()
	}
	if result.ResultErr != nil {
		response.Warnings = append(response.Warnings, fmt.Sprintf("password could not be saved: %v", result.ResultErr))
	}
	if result.CheckpointErr != nil {
		response.Warnings = append(response.Warnings, fmt.Sprintf("progress could not be saved: %v", result.CheckpointErr))
	}

	ctx.Log(fmt.Sprintf("Search %s after %d attempts in %v", response.Outcome, response.Attempts, response.Elapsed))
	return response, nil
}

// resolveKeyFile finds and hashes the key file, if any
func resolveKeyFile(ctx *app.Context, req *Request, provider *services.CryptoService) (string, *[types.KeySize]byte, error) {
	if req.NoKeyFile {
		return "", nil, nil
	}

	path := req.KeyFilePath
	explicit := path != ""
	if !explicit {
		path = services.KeyFilePath(req.DatabasePath, req.KeyFileExtension)
	}

	hash, err := services.HashKeyFile(ctx.Fs, path, provider)
	if err != nil {
		return "", nil, app.NewError(app.ErrCodeDatabaseAccess, "failed to read key file", err)
	}
	if hash == nil {
		if explicit {
			return "", nil, app.NewError(app.ErrCodeInvalidInput, fmt.Sprintf("key file %s does not exist", path), nil)
		}
		ctx.Log(fmt.Sprintf("No key file at %s, using the password alone", path))
		return "", nil, nil
	}

	ctx.Log(fmt.Sprintf("Using key file %s", path))
	return path, hash, nil
}

// progressReporter adapts engine progress to the context's progress callback
func progressReporter(ctx *app.Context, sc *services.SearchContext) func(services.EngineProgress) {
	if ctx.ProgressCallback == nil {
		return nil
	}

	var total int64
	first, exhausted := sc.FirstCandidate()
	if !exhausted {
		if remaining := services.RemainingCandidates(first); remaining.IsInt64() && remaining.Int64() < 1<<62 {
			total = remaining.Int64() + 1
		}
	}
	started := time.Now()

	return func(p services.EngineProgress) {
		ctx.Progress(app.ProgressUpdate{
			Message:     "trying",
			Current:     p.Candidate,
			Completed:   int64(p.Attempts),
			Total:       total,
			StartedAt:   started,
			ElapsedTime: p.Elapsed,
		})
	}
}
