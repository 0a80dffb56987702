package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ruminaider/mcp-roster/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "roster.log")
	logger, err := logging.New(path, "info")
	require.NoError(t, err)

	logger.Info("sync finished", zap.Int("added", 2))
	logger.Debug("hidden at info level")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sync finished")
	assert.Contains(t, string(data), `"added":2`)
	assert.NotContains(t, string(data), "hidden at info level")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := logging.New(filepath.Join(t.TempDir(), "x.log"), "loud")
	assert.Error(t, err)
}

func TestRedact(t *testing.T) {
	fields := logging.Redact(
		zap.String("sync_token", "abc123"),
		zap.String("Authorization", "Bearer abc123"),
		zap.String("server", "github"),
	)
	require.Len(t, fields, 3)
	assert.Equal(t, "***", fields[0].String)
	assert.Equal(t, "***", fields[1].String)
	assert.Equal(t, "github", fields[2].String)
	assert.False(t, strings.Contains(fields[1].String, "abc123"))
}

func TestNew_RedactsCredentialFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.log")
	logger, err := logging.New(path, "debug")
	require.NoError(t, err)

	logger.With(zap.String("api_key", "k-123")).Info("request",
		zap.String("token", "t-456"),
		zap.String("provider", "mcp.example.dev"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "k-123")
	assert.NotContains(t, string(data), "t-456")
	assert.Contains(t, string(data), "mcp.example.dev")
}
