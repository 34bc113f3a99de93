package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ParseLevel(in))
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_OUTPUT", "stdout")

	cfg := FromEnv()
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
}

func TestNewFromConfigWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hierrec.log")
	logger := NewFromConfig(&Config{Level: "warn", Format: "json", Output: path})

	logger.Info().Msg("dropped")
	logger.Warn().Str("method", "bottom_up").Msg("kept")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "bottom_up", entry["method"])
	assert.Equal(t, "warn", entry["level"])
}

func TestContextLogger(t *testing.T) {
	assert.Same(t, Default(), FromContext(context.Background()))
	//nolint:staticcheck // nil context is handled
	assert.Same(t, Default(), FromContext(nil))

	var buf bytes.Buffer
	logger := New(&buf)
	ctx := WithLogger(context.Background(), &logger)
	assert.Same(t, &logger, FromContext(ctx))

	ctx = WithField(ctx, "model", "ARIMA")
	FromContext(ctx).Info().Msg("hello")
	assert.Contains(t, buf.String(), `"model":"ARIMA"`)
}

func TestSetDefault(t *testing.T) {
	original := *Default()
	t.Cleanup(func() { SetDefault(original) })

	var buf bytes.Buffer
	SetDefault(New(&buf))
	Default().Info().Msg("replaced")
	assert.Contains(t, buf.String(), "replaced")
}
