package crack

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func createTestResponse(outcome string) *Response {
	resp := &Response{
		Database:         "/vaults/test.kdbx",
		Cipher:           "AES-256-CBC",
		TransformRounds:  6000,
		StartingPassword: "aa",
		Outcome:          outcome,
		LastAttempted:    "ab",
		Attempts:         2,
		Elapsed:          1500 * time.Millisecond,
		CheckpointFile:   "checkpoints.dat",
	}
	if outcome == OutcomeFound {
		resp.Password = "ab"
		resp.ResultFile = "password.txt"
	}
	return resp
}

func TestFormatOutput(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		response *Response
		validate func(*testing.T, string)
	}{
		{
			name:     "table found",
			format:   "table",
			response: createTestResponse(OutcomeFound),
			validate: func(t *testing.T, output string) {
				assert.Contains(t, output, "PASSWORD FOUND:")
				assert.Contains(t, output, "ab")
				assert.Contains(t, output, "Password written to:")
				assert.Contains(t, output, "password.txt")
			},
		},
		{
			name:     "table exhausted",
			format:   "table",
			response: createTestResponse(OutcomeExhausted),
			validate: func(t *testing.T, output string) {
				assert.Contains(t, output, "all 2 character candidates tried")
				assert.NotContains(t, output, "Password written to:")
			},
		},
		{
			name:     "table cancelled with warning",
			format:   "table",
			response: func() *Response {
				r := createTestResponse(OutcomeCancelled)
				r.Warnings = []string{"progress could not be saved: disk full"}
				return r
			}(),
			validate: func(t *testing.T, output string) {
				assert.Contains(t, output, "INTERRUPTED:")
				assert.Contains(t, output, "disk full")
			},
		},
		{
			name:     "json",
			format:   "json",
			response: createTestResponse(OutcomeFound),
			validate: func(t *testing.T, output string) {
				var decoded map[string]interface{}
				require.NoError(t, json.Unmarshal([]byte(output), &decoded))
				assert.Equal(t, "found", decoded["outcome"])
				assert.Equal(t, "ab", decoded["password"])
				assert.NotContains(t, decoded, "key_file")
			},
		},
		{
			name:     "yaml",
			format:   "yaml",
			response: createTestResponse(OutcomeExhausted),
			validate: func(t *testing.T, output string) {
				var decoded map[string]interface{}
				require.NoError(t, yaml.Unmarshal([]byte(output), &decoded))
				assert.Equal(t, "exhausted", decoded["outcome"])
				assert.Equal(t, 6000, decoded["transform_rounds"])
				assert.NotContains(t, decoded, "password")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, FormatOutput(&buf, tc.response, tc.format))
			tc.validate(t, buf.String())
		})
	}

	err := FormatOutput(&bytes.Buffer{}, createTestResponse(OutcomeFound), "xml")
	assert.Error(t, err)
}
