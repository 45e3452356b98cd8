package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T, files map[string]string) *viper.Viper {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, contents := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(contents), 0o644))
	}
	v := viper.New()
	v.SetFs(fs)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newTestViper(t, nil), "")
	require.NoError(t, err)

	assert.Equal(t, &Config{
		MaxTransformRounds: 60_000_000,
		StrictHeaders:      true,
		CheckpointFile:     "checkpoints.dat",
		ResultFile:         "password.txt",
		KeyFileExtension:   ".key",
		CheckpointInterval: 1000,
		ProgressInterval:   2 * time.Second,
	}, cfg)
}

func TestLoad_ConfigFile(t *testing.T) {
	v := newTestViper(t, map[string]string{
		"/etc/keecrack/keecrack.yaml": "strict_headers: false\ncheckpoint_interval: 50\nprogress_interval: 500ms\n",
	})

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.False(t, cfg.StrictHeaders)
	assert.Equal(t, uint64(50), cfg.CheckpointInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.ProgressInterval)
	assert.Equal(t, "checkpoints.dat", cfg.CheckpointFile)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	v := newTestViper(t, map[string]string{
		"/work/custom.yaml": "result_file: found.txt\nmax_transform_rounds: 1000\n",
	})

	cfg, err := Load(v, "/work/custom.yaml")
	require.NoError(t, err)
	assert.Equal(t, "found.txt", cfg.ResultFile)
	assert.Equal(t, uint64(1000), cfg.MaxTransformRounds)

	_, err = Load(newTestViper(t, nil), "/work/missing.yaml")
	assert.Error(t, err)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("KEECRACK_CHECKPOINT_FILE", "/tmp/progress.dat")
	t.Setenv("KEECRACK_STRICT_HEADERS", "false")

	cfg, err := Load(newTestViper(t, nil), "")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/progress.dat", cfg.CheckpointFile)
	assert.False(t, cfg.StrictHeaders)
}

func TestLoad_Invalid(t *testing.T) {
	v := newTestViper(t, map[string]string{
		"/etc/keecrack/keecrack.yaml": "result_file: checkpoints.dat\n",
	})
	_, err := Load(v, "")
	assert.ErrorContains(t, err, "both point to")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			MaxTransformRounds: 10,
			CheckpointFile:     "c.dat",
			ResultFile:         "p.txt",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero round limit", func(c *Config) { c.MaxTransformRounds = 0 }, "max_transform_rounds"},
		{"no checkpoint file", func(c *Config) { c.CheckpointFile = "" }, "checkpoint_file"},
		{"no result file", func(c *Config) { c.ResultFile = "" }, "result_file"},
		{"negative progress interval", func(c *Config) { c.ProgressInterval = -time.Second }, "progress_interval"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tc.wantErr)
			}
		})
	}
}
