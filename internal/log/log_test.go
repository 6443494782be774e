package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		"Error":   LevelError,
		"info":    LevelInfo,
		"bogus":   LevelInfo,
	}
	for in, want := range tests {
		require.Equal(t, want, ParseLevel(in), in)
	}
	require.Equal(t, "UNKNOWN", Level(9).String())
}

func TestLog_FormatAndLevels(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(func() { install(nil) })

	Info(CatRegistry, "registry reloaded", "build", "b1", "odd")
	require.Contains(t, buf.String(), "[INFO] [registry] registry reloaded build=b1 odd=<missing>\n")

	buf.Reset()
	SetMinLevel(LevelWarn)
	Debug(CatLoader, "hidden")
	Info(CatLoader, "hidden")
	Warn(CatWatcher, "debounced", "events", 3)
	ErrorErr(CatDB, "recording build", errors.New("disk full"), "build", "b2")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "[WARN] [watcher] debounced events=3\n")
	require.Contains(t, buf.String(), "[ERROR] [db] recording build build=b2 error=disk full\n")
}

func TestLog_NotInitialized(t *testing.T) {
	install(nil)
	require.NotPanics(t, func() {
		Error(CatConfig, "no logger")
		SetMinLevel(LevelError)
	})
}

func TestInit_AppendsToFileUntilClosed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	require.NoError(t, os.WriteFile(path, []byte("earlier\n"), 0o600))

	cleanup, err := Init(path)
	require.NoError(t, err)
	Info(CatConfig, "config loaded", "file", "config.yaml")
	cleanup()
	Info(CatConfig, "after close")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "earlier\n")
	require.Contains(t, string(data), "[INFO] [config] config loaded file=config.yaml")
	require.NotContains(t, string(data), "after close")
}

func TestInit_BadPath(t *testing.T) {
	_, err := Init(filepath.Join(t.TempDir(), "missing", "debug.log"))
	require.Error(t, err)
}
