package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_WritesLevelFiles(t *testing.T) {
	dir := t.TempDir()

	l, err := New(dir)
	require.NoError(t, err)

	l.Info("session %s selected", "s1")
	l.Warning("backend unhealthy")
	l.Error("listen failed")
	require.NoError(t, l.Close())

	info, err := os.ReadFile(filepath.Join(dir, "info.log"))
	require.NoError(t, err)
	require.Contains(t, string(info), "INFO    ")
	require.Contains(t, string(info), "session s1 selected")

	warning, err := os.ReadFile(filepath.Join(dir, "warning.log"))
	require.NoError(t, err)
	require.Contains(t, string(warning), "backend unhealthy")

	errs, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	require.Contains(t, string(errs), "listen failed")
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Info("nothing %d", 1)
	require.NoError(t, l.Close())
}
