package paths

import (
	"os"
	"path/filepath"
)

// DataDirEnv overrides the data directory when set.
const DataDirEnv = "MCP_ROSTER_DATA_DIR"

func home() string {
	h, _ := os.UserHomeDir()
	return h
}

// DataDir returns ~/.mcp-roster, or $MCP_ROSTER_DATA_DIR when set.
func DataDir() string {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return dir
	}
	return filepath.Join(home(), ".mcp-roster")
}

// SettingsFile returns <data dir>/settings.yaml.
func SettingsFile() string {
	return filepath.Join(DataDir(), "settings.yaml")
}

// ServersFile returns <data dir>/servers.yaml.
func ServersFile() string {
	return filepath.Join(DataDir(), "servers.yaml")
}

// CredentialsFile returns <data dir>/credentials.db.
func CredentialsFile() string {
	return filepath.Join(DataDir(), "credentials.db")
}

// LogFile returns <data dir>/mcp-roster.log.
func LogFile() string {
	return filepath.Join(DataDir(), "mcp-roster.log")
}
