package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func resetLog(t *testing.T) {
	t.Cleanup(func() { Log = zap.NewNop().Sugar() })
}

func TestInit_WritesFile(t *testing.T) {
	resetLog(t)
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	require.NoError(t, Init("debug", path))
	Log.Infow("mood saved", "user_id", "u1")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"mood saved"`)
	assert.Contains(t, string(data), `"user_id":"u1"`)
}

func TestInit_BadFilePath(t *testing.T) {
	resetLog(t)
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := Init("info", filepath.Join(blocker, "server.log"))
	assert.Error(t, err)
}

func TestInit_UnknownLevelFallsBack(t *testing.T) {
	resetLog(t)
	require.NoError(t, Init("chatty", ""))
	assert.True(t, Log.Desugar().Core().Enabled(zap.InfoLevel))
	assert.False(t, Log.Desugar().Core().Enabled(zap.DebugLevel))
}
