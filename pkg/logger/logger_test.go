package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readLines(t *testing.T, path string) []map[string]interface{} {
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(b)), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestFileModes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	write := func(mode FileMode, msg string) {
		l, err := New(Config{Path: path, Mode: mode, Level: zap.InfoLevel})
		require.NoError(t, err)
		l.Info(msg)
		l.Debug("dropped")
		require.NoError(t, l.Sync())
	}
	write(FileModeAppend, "one")
	write(FileModeAppend, "two")
	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, "two", lines[1]["msg"])
	write(FileModeTruncate, "three")
	lines = readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, "three", lines[0]["msg"])
}

func TestNameFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	l, err := New(Config{Path: path, Name: "storage", Level: zap.DebugLevel})
	require.NoError(t, err)
	l.Named("storage").With(zap.String("mode", "read")).Info("kept")
	l.Named("parquetio").Info("dropped")
	require.NoError(t, l.Sync())
	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["msg"])
	assert.Equal(t, "read", lines[0]["mode"])
}

func TestFileModeSet(t *testing.T) {
	var m FileMode
	require.NoError(t, m.Set("rotate"))
	assert.Equal(t, FileModeRotate, m)
	require.NoError(t, m.Set(""))
	assert.Equal(t, FileModeAppend, m)
	assert.Error(t, m.Set("bogus"))
}
