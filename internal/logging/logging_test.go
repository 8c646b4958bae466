package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/tabtext/internal/logging"
)

func TestLevel(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		verbosity int
		want      zerolog.Level
	}{
		"default warn level":               {verbosity: 0, want: zerolog.WarnLevel},
		"info level":                       {verbosity: 1, want: zerolog.InfoLevel},
		"debug level":                      {verbosity: 2, want: zerolog.DebugLevel},
		"trace level":                      {verbosity: 3, want: zerolog.TraceLevel},
		"high verbosity defaults to trace": {verbosity: 7, want: zerolog.TraceLevel},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, logging.Level(tt.verbosity))
		})
	}
}

// The remaining tests swap the global logger and run sequentially.

func TestSetupLogger(t *testing.T) {
	var out bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "state", "tabtext.log")
	closer, err := logging.SetupLogger(&out, 1, logFile)
	require.NoError(t, err)

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	logger := logging.GetLogger("test")
	logger.Info().Msg("visible")
	log.Debug().Msg("hidden")
	require.NoError(t, closer.Close())

	assert.Contains(t, out.String(), "visible")
	assert.Contains(t, out.String(), "component=test")
	assert.NotContains(t, out.String(), "hidden")

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"message":"visible"`)
	assert.Contains(t, string(content), `"component":"test"`)
}

func TestSetupLoggerWithoutFile(t *testing.T) {
	var out bytes.Buffer
	closer, err := logging.SetupLogger(&out, 0, "")
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	log.Info().Msg("quiet")
	log.Warn().Msg("loud")
	assert.NotContains(t, out.String(), "quiet")
	assert.Contains(t, out.String(), "loud")
}

func TestSetupLoggerBadFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := logging.SetupLogger(&bytes.Buffer{}, 0, filepath.Join(blocker, "sub", "x.log"))
	require.Error(t, err)
}

func TestDefaultLogFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	path, err := logging.DefaultLogFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tabtext", "tabtext.log"), path)
	assert.DirExists(t, filepath.Join(dir, "tabtext"))
}

func TestSetupLoggerStateLogFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	closer, err := logging.SetupLogger(&bytes.Buffer{}, 1, logging.StateLogFile)
	require.NoError(t, err)
	log.Info().Msg("kept")
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(filepath.Join(dir, "tabtext", "tabtext.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"message":"kept"`)
}
