package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/grailbio/base/log"
	"github.com/stretchr/testify/assert"

	"github.com/panda73111/mod0keecrack/internal/types"
)

func TestProgressUpdate(t *testing.T) {
	p := &ProgressUpdate{Completed: 50, Total: 200, ElapsedTime: 10 * time.Second}
	assert.Equal(t, 25, p.Percent())
	assert.InDelta(t, 5.0, p.Rate(), 1e-9)
	assert.Equal(t, 30*time.Second, p.ETA())

	empty := &ProgressUpdate{}
	assert.Equal(t, 0, empty.Percent())
	assert.Zero(t, empty.Rate())
	assert.Zero(t, empty.ETA())
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid seed", fmt.Errorf("x: %w", types.ErrInvalidSeed), ErrCodeInvalidInput},
		{"conflict", fmt.Errorf("x: %w", types.ErrCheckpointConflict), ErrCodeCheckpoint},
		{"format", fmt.Errorf("failed to load a: %w", types.ErrFormat), ErrCodeDatabaseFormat},
		{"io", types.ErrIO, ErrCodeDatabaseAccess},
		{"internal", types.ErrInternal, ErrCodeInternal},
		{"crypto", types.ErrCryptoProvider, ErrCodeInternal},
		{"unknown", errors.New("boom"), ErrCodeInternal},
		{"already classified", NewError(ErrCodeCheckpoint, "m", types.ErrIO), ErrCodeCheckpoint},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyError(tc.err))
		})
	}
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, WrapError("m", nil))

	err := WrapError("failed to load database", types.ErrFormat)
	var ce *CommonError
	assert.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeDatabaseFormat, ce.Code)
	assert.ErrorIs(t, err, types.ErrFormat)
	assert.Equal(t, "failed to load database: format error", err.Error())

	inner := NewError(ErrCodeInvalidInput, "bad", nil)
	assert.Same(t, inner, WrapError("outer", inner))
}

func TestContext_Logger(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		quiet   bool
		level   log.Level
		want    string
	}{
		{"default", false, false, log.Info, "[*] info\n[!] error\n"},
		{"verbose", true, false, log.Debug, "[debug] debug\n[*] info\n[!] error\n"},
		{"quiet", false, true, log.Error, "[!] error\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := NewContext()
			ctx.Verbose = tc.verbose
			ctx.Quiet = tc.quiet
			ctx.Stderr = &buf
			assert.Equal(t, tc.level, ctx.LogLevel())

			restore := ctx.InstallLogger()
			ctx.Log("debug")
			log.Print("info")
			log.Error.Print("error")
			restore()

			assert.Equal(t, tc.want, buf.String())
		})
	}
}

func TestContext_WithContext(t *testing.T) {
	base := NewContext()
	base.Verbose = true
	var got []ProgressUpdate
	base.SetProgress(func(u ProgressUpdate) { got = append(got, u) })

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	derived := base.WithContext(cancelled)

	assert.NoError(t, base.Err())
	assert.ErrorIs(t, derived.Err(), context.Canceled)
	assert.True(t, derived.Verbose)

	derived.Progress(ProgressUpdate{Message: "trying"})
	assert.Len(t, got, 1)
}
