package paths_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ruminaider/mcp-roster/internal/paths"
	"github.com/stretchr/testify/assert"
)

func TestDataDir(t *testing.T) {
	t.Setenv(paths.DataDirEnv, "")
	home, _ := os.UserHomeDir()
	assert.True(t, strings.HasPrefix(paths.DataDir(), home))
	assert.True(t, strings.HasSuffix(paths.DataDir(), ".mcp-roster"))
}

func TestDataDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(paths.DataDirEnv, dir)
	assert.Equal(t, dir, paths.DataDir())
	assert.Equal(t, filepath.Join(dir, "servers.yaml"), paths.ServersFile())
}

func TestFiles(t *testing.T) {
	assert.True(t, strings.HasSuffix(paths.SettingsFile(), "settings.yaml"))
	assert.True(t, strings.HasSuffix(paths.ServersFile(), "servers.yaml"))
	assert.True(t, strings.HasSuffix(paths.CredentialsFile(), "credentials.db"))
	assert.True(t, strings.HasSuffix(paths.LogFile(), "mcp-roster.log"))
}
