package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_Success(t *testing.T) {
	tests := []struct {
		name   string
		format string
		data   interface{}
		check  func(t *testing.T, out string)
	}{
		{
			name:   "text",
			format: "text",
			data:   "seeded track=ruby head=c1",
			check: func(t *testing.T, out string) {
				assert.Equal(t, "seeded track=ruby head=c1\n", out)
			},
		},
		{
			name:   "json",
			format: "json",
			data:   map[string]int{"exercises": 6},
			check: func(t *testing.T, out string) {
				var resp CLIResponse
				require.NoError(t, json.Unmarshal([]byte(out), &resp))
				assert.Equal(t, "ok", resp.Status)
				assert.Nil(t, resp.Error)
				assert.Equal(t, map[string]interface{}{"exercises": float64(6)}, resp.Data)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: tt.format, Writer: buf}
			require.NoError(t, formatter.Success(tt.data))
			tt.check(t, buf.String())
		})
	}
}

func TestOutputFormatter_Error(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}
	require.NoError(t, formatter.Error("E_COMMAND", "invalid configuration"))
	assert.Equal(t, "Error [E_COMMAND]: invalid configuration\n", buf.String())

	buf.Reset()
	formatter.Format = "json"
	require.NoError(t, formatter.Error("E_FAILED", "seed failed"))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_FAILED", resp.Error.Code)
	assert.Equal(t, "seed failed", resp.Error.Message)
}

func TestOutputFormatter_Respond(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Respond(CLIResponse{
		Status: "error",
		Data:   map[string]int{"failed": 1},
		Error:  &CLIError{Code: "E_SYNC_FAILED", Message: "1 exercise(s) failed to reconcile"},
		RunID:  "run-1",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\n  \"status\": \"error\"")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "run-1", resp.RunID)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_SYNC_FAILED", resp.Error.Code)
}

func TestGetExitCode(t *testing.T) {
	cause := errors.New("no such file")
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"command error", NewExitError(ExitCommandError, "bad flag"), ExitCommandError},
		{"wrapped", WrapExitError(ExitFailure, "seed failed", cause), ExitFailure},
		{"plain error", cause, ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}

	wrapped := WrapExitError(ExitCommandError, "failed to open database", cause)
	assert.Equal(t, "failed to open database: no such file", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}
