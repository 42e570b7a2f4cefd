package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrim(t *testing.T) {
	const maxSize = 1000

	path := filepath.Join(t.TempDir(), "lfstage.log")
	var b strings.Builder
	b.WriteString("first line, should be trimmed away\n")
	for i := 0; i < 256; i++ {
		fmt.Fprintf(&b, "%d. some log line\n", i)
	}
	b.WriteString("the last line must survive\n")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	beforeSize := int64(len(b.String()))

	trimmed, err := Trim(path, maxSize)
	require.NoError(t, err)
	require.Greater(t, trimmed, int64(0))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.LessOrEqual(t, fi.Size(), int64(maxSize))
	require.Equal(t, trimmed, beforeSize-fi.Size())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Contains(t, lines[len(lines)-1], "the last line must survive")
	require.NotContains(t, string(data), "first line")
}

func TestTrimUnderLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lfstage.log")
	require.NoError(t, os.WriteFile(path, []byte("short\n"), 0o644))

	trimmed, err := Trim(path, 1000)
	require.NoError(t, err)
	require.Zero(t, trimmed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "short\n", string(data))
}

func TestTrimMissingFile(t *testing.T) {
	_, err := Trim(filepath.Join(t.TempDir(), "missing.log"), 1000)
	require.True(t, os.IsNotExist(err))
}

func TestNewLevels(t *testing.T) {
	var b strings.Builder
	log := New("warn", &b)
	log.Info("hidden")
	log.Warn("visible")
	out := b.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "visible")
}
