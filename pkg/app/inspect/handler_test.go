package inspect

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panda73111/mod0keecrack/internal/kdbxtest"
	"github.com/panda73111/mod0keecrack/internal/types"
	"github.com/panda73111/mod0keecrack/pkg/app"
)

func newTestContext(t *testing.T, opts kdbxtest.Options) (*app.Context, *kdbxtest.Fixture) {
	t.Helper()
	fixture := kdbxtest.MustBuild(opts)
	ctx := app.NewContext()
	ctx.Fs = afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(ctx.Fs, "/vaults/test.kdbx", fixture.Bytes, 0o600))
	return ctx, fixture
}

func TestHandle(t *testing.T) {
	ctx, fixture := newTestContext(t, kdbxtest.Options{
		Rounds:          6000,
		Cipher:          types.CipherTwofish,
		TrailingPayload: 32,
		Comment:         []byte("created by tests"),
	})
	require.NoError(t, afero.WriteFile(ctx.Fs, "/vaults/test.key", []byte("k"), 0o600))

	resp, err := Handle(ctx, &Request{DatabasePath: "/vaults/test.kdbx", StrictHeaders: true})
	require.NoError(t, err)

	assert.Equal(t, "0x9AA2D903", resp.Magic)
	assert.Equal(t, "0xB54BFB67", resp.Identifier)
	assert.Equal(t, "3.1", resp.Version)
	assert.Equal(t, "Twofish-CBC", resp.Cipher)
	assert.Equal(t, types.CipherTwofish.String(), resp.CipherID)
	assert.Equal(t, "gzip", resp.Compression)
	assert.Equal(t, uint64(6000), resp.TransformRounds)
	assert.Equal(t, "salsa20", resp.InnerRandomStream)
	assert.Equal(t, int64(64), resp.PayloadLength)
	assert.Equal(t, int64(len(fixture.Bytes)-64), resp.PayloadOffset)
	assert.Equal(t, "/vaults/test.key", resp.KeyFile)

	require.Len(t, resp.Entries, int(types.HeaderIDCount))
	assert.Equal(t, "END", resp.Entries[0].Name)
	assert.Equal(t, "COMMENT", resp.Entries[1].Name)
	for i, entry := range resp.Entries {
		assert.Equal(t, uint8(i), entry.ID)
	}
	rounds := resp.Entries[types.HeaderIDTransformRounds]
	assert.Equal(t, "6000", rounds.Value)
	assert.Equal(t, uint16(8), rounds.Length)
	assert.Equal(t, "0d0a0d0a", resp.Entries[types.HeaderIDEnd].Value)
}

func TestHandle_Errors(t *testing.T) {
	ctx, _ := newTestContext(t, kdbxtest.Options{Rounds: 1})

	_, err := Handle(ctx, &Request{})
	var ce *app.CommonError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, app.ErrCodeInvalidInput, ce.Code)

	_, err = Handle(ctx, &Request{DatabasePath: "/vaults/missing.kdbx"})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, app.ErrCodeDatabaseAccess, ce.Code)

	require.NoError(t, afero.WriteFile(ctx.Fs, "/vaults/short.kdbx", []byte{0x03, 0xD9, 0xA2, 0x9A}, 0o600))
	_, err = Handle(ctx, &Request{DatabasePath: "/vaults/short.kdbx"})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, app.ErrCodeDatabaseFormat, ce.Code)
}

func TestFormatOutput(t *testing.T) {
	ctx, _ := newTestContext(t, kdbxtest.Options{Rounds: 1})
	resp, err := Handle(ctx, &Request{DatabasePath: "/vaults/test.kdbx", StrictHeaders: true})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, FormatOutput(&buf, resp, "table"))
	assert.Contains(t, buf.String(), "TRANSFORMROUNDS")
	assert.Contains(t, buf.String(), "AES-256-CBC")

	buf.Reset()
	require.NoError(t, FormatOutput(&buf, resp, "json"))
	var decoded Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *resp, decoded)

	buf.Reset()
	require.NoError(t, FormatOutput(&buf, resp, "yaml"))
	assert.Contains(t, buf.String(), "cipher: AES-256-CBC")

	assert.Error(t, FormatOutput(&buf, resp, "csv"))
}
