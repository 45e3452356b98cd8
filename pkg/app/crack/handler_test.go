package crack

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panda73111/mod0keecrack/internal/kdbxtest"
	"github.com/panda73111/mod0keecrack/internal/services"
	"github.com/panda73111/mod0keecrack/internal/types"
	"github.com/panda73111/mod0keecrack/pkg/app"
)

const testDatabasePath = "/vaults/test.kdbx"

func newTestContext(t *testing.T, opts kdbxtest.Options) *app.Context {
	t.Helper()
	fixture := kdbxtest.MustBuild(opts)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, testDatabasePath, fixture.Bytes, 0o600))

	ctx := app.NewContext()
	ctx.Fs = fs
	return ctx
}

func newTestRequest(start string) *Request {
	return &Request{
		DatabasePath:       testDatabasePath,
		StartingPassword:   start,
		CheckpointPath:     "/work/checkpoints.dat",
		ResultPath:         "/work/password.txt",
		StrictHeaders:      true,
		CheckpointInterval: services.DefaultCheckpointInterval,
	}
}

func TestHandle_Found(t *testing.T) {
	ctx := newTestContext(t, kdbxtest.Options{Password: "ab", Rounds: 1})

	resp, err := Handle(ctx, newTestRequest("aa"))
	require.NoError(t, err)
	assert.True(t, resp.Found())
	assert.Equal(t, "ab", resp.Password)
	assert.Equal(t, uint64(2), resp.Attempts)
	assert.Equal(t, "AES-256-CBC", resp.Cipher)
	assert.Equal(t, uint64(1), resp.TransformRounds)
	assert.Empty(t, resp.KeyFile)
	assert.Empty(t, resp.Warnings)
	assert.Equal(t, "/work/password.txt", resp.ResultFile)

	data, err := afero.ReadFile(ctx.Fs, "/work/password.txt")
	require.NoError(t, err)
	assert.Equal(t, "ab\n", string(data))
}

func TestHandle_KeyFile(t *testing.T) {
	keyFile := []byte("<KeyFile>binary or xml, hashed as a whole</KeyFile>")
	hash := services.NewCryptoService().Sum256(keyFile)

	t.Run("auto detected", func(t *testing.T) {
		ctx := newTestContext(t, kdbxtest.Options{Password: "ac", Rounds: 3, KeyFileHash: &hash})
		require.NoError(t, afero.WriteFile(ctx.Fs, "/vaults/test.key", keyFile, 0o600))

		resp, err := Handle(ctx, newTestRequest("aa"))
		require.NoError(t, err)
		assert.True(t, resp.Found())
		assert.Equal(t, "ac", resp.Password)
		assert.Equal(t, "/vaults/test.key", resp.KeyFile)
	})

	t.Run("explicit path", func(t *testing.T) {
		ctx := newTestContext(t, kdbxtest.Options{Password: "ac", Rounds: 3, KeyFileHash: &hash})
		require.NoError(t, afero.WriteFile(ctx.Fs, "/keys/mine.bin", keyFile, 0o600))

		req := newTestRequest("aa")
		req.KeyFilePath = "/keys/mine.bin"
		resp, err := Handle(ctx, req)
		require.NoError(t, err)
		assert.True(t, resp.Found())
	})

	t.Run("explicit path missing", func(t *testing.T) {
		ctx := newTestContext(t, kdbxtest.Options{Password: "ac", Rounds: 3, KeyFileHash: &hash})

		req := newTestRequest("aa")
		req.KeyFilePath = "/keys/missing.bin"
		_, err := Handle(ctx, req)
		var ce *app.CommonError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, app.ErrCodeInvalidInput, ce.Code)
	})

	t.Run("ignored with no-key-file", func(t *testing.T) {
		ctx := newTestContext(t, kdbxtest.Options{Password: "ac", Rounds: 3})
		require.NoError(t, afero.WriteFile(ctx.Fs, "/vaults/test.key", keyFile, 0o600))

		req := newTestRequest("aa")
		req.NoKeyFile = true
		resp, err := Handle(ctx, req)
		require.NoError(t, err)
		assert.True(t, resp.Found())
		assert.Empty(t, resp.KeyFile)
	})
}

func TestHandle_ResumeAfterCancel(t *testing.T) {
	ctx := newTestContext(t, kdbxtest.Options{Password: "ad", Rounds: 1})

	store := services.NewCheckpointStore(ctx.Fs, "/work/checkpoints.dat")
	require.NoError(t, store.Save(types.CheckpointRecord{
		DatabasePath:     testDatabasePath,
		StartingPassword: "aa",
		CurrentPassword:  "ab",
	}))

	resp, err := Handle(ctx, newTestRequest("aa"))
	require.NoError(t, err)
	assert.Equal(t, "ab", resp.ResumedFrom)
	assert.True(t, resp.Found())
	assert.Equal(t, uint64(2), resp.Attempts)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	req := newTestRequest("aa")
	req.Fresh = true
	resp, err = Handle(ctx.WithContext(cancelled), req)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, resp.Outcome)
	assert.Empty(t, resp.ResumedFrom)
}

func TestHandle_LongDatabasePath(t *testing.T) {
	fixture := kdbxtest.MustBuild(kdbxtest.Options{Password: "ab", Rounds: 1})
	ctx := app.NewContext()
	ctx.Fs = afero.NewMemMapFs()
	longPath := "/vaults/" + strings.Repeat("d", 300) + ".kdbx"
	require.NoError(t, afero.WriteFile(ctx.Fs, longPath, fixture.Bytes, 0o600))

	req := newTestRequest("aa")
	req.DatabasePath = longPath
	req.CheckpointInterval = 1

	resp, err := Handle(ctx, req)
	require.NoError(t, err)
	assert.True(t, resp.Found())
	assert.Empty(t, resp.Warnings)

	current, ok, err := services.NewCheckpointStore(ctx.Fs, req.CheckpointPath).Load(longPath, "aa")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ab", current)
}

func TestHandle_Progress(t *testing.T) {
	ctx := newTestContext(t, kdbxtest.Options{Password: "unreachable", Rounds: 10})
	var updates []app.ProgressUpdate
	ctx.SetProgress(func(u app.ProgressUpdate) { updates = append(updates, u) })

	req := newTestRequest("~ ")
	req.ProgressInterval = 1
	resp, err := Handle(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, OutcomeExhausted, resp.Outcome)
	assert.Equal(t, uint64(95), resp.Attempts)

	require.NotEmpty(t, updates)
	for _, u := range updates {
		assert.Equal(t, int64(95), u.Total)
		assert.LessOrEqual(t, u.Percent(), 100)
	}
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(ctx *app.Context, req *Request)
		wantCode string
	}{
		{
			name:     "missing database",
			setup:    func(ctx *app.Context, req *Request) { req.DatabasePath = "/vaults/missing.kdbx" },
			wantCode: app.ErrCodeDatabaseAccess,
		},
		{
			name: "not a database",
			setup: func(ctx *app.Context, req *Request) {
				require.NoError(t, afero.WriteFile(ctx.Fs, testDatabasePath, []byte("plain text, not a database"), 0o600))
			},
			wantCode: app.ErrCodeDatabaseFormat,
		},
		{
			name:     "invalid seed",
			setup:    func(ctx *app.Context, req *Request) { req.StartingPassword = "tab\there" },
			wantCode: app.ErrCodeInvalidInput,
		},
		{
			name:     "round limit",
			setup:    func(ctx *app.Context, req *Request) { req.MaxTransformRounds = 1 },
			wantCode: app.ErrCodeInternal,
		},
		{
			name: "checkpoint of another database",
			setup: func(ctx *app.Context, req *Request) {
				store := services.NewCheckpointStore(ctx.Fs, req.CheckpointPath)
				require.NoError(t, store.Save(types.CheckpointRecord{DatabasePath: "/other.kdbx", StartingPassword: "aa", CurrentPassword: "ab"}))
			},
			wantCode: app.ErrCodeCheckpoint,
		},
		{
			name: "fresh search on checkpoint of another database",
			setup: func(ctx *app.Context, req *Request) {
				store := services.NewCheckpointStore(ctx.Fs, req.CheckpointPath)
				require.NoError(t, store.Save(types.CheckpointRecord{DatabasePath: "/other.kdbx", StartingPassword: "aa", CurrentPassword: "ab"}))
				req.Fresh = true
			},
			wantCode: app.ErrCodeCheckpoint,
		},
		{
			name: "corrupt checkpoint store",
			setup: func(ctx *app.Context, req *Request) {
				require.NoError(t, afero.WriteFile(ctx.Fs, req.CheckpointPath, []byte("garbage"), 0o600))
			},
			wantCode: app.ErrCodeCheckpoint,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := newTestContext(t, kdbxtest.Options{Password: "ab", Rounds: 5})
			req := newTestRequest("aa")
			tc.setup(ctx, req)

			_, err := Handle(ctx, req)
			require.Error(t, err)
			var ce *app.CommonError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tc.wantCode, ce.Code)
		})
	}
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr bool
	}{
		{"valid", func(r *Request) {}, false},
		{"no database", func(r *Request) { r.DatabasePath = "" }, true},
		{"empty seed", func(r *Request) { r.StartingPassword = "" }, true},
		{"key file and no key file", func(r *Request) { r.KeyFilePath = "k"; r.NoKeyFile = true }, true},
		{"checkpoint is result", func(r *Request) { r.ResultPath = r.CheckpointPath }, true},
		{"checkpoint is database", func(r *Request) { r.CheckpointPath = r.DatabasePath }, true},
		{"result is database", func(r *Request) { r.ResultPath = r.DatabasePath }, true},
		{"negative progress interval", func(r *Request) { r.ProgressInterval = -1 }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := newTestRequest("aa")
			tc.mutate(req)
			err := req.Validate()
			if tc.wantErr {
				var ce *app.CommonError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, app.ErrCodeInvalidInput, ce.Code)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
