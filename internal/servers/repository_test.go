package servers_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ruminaider/mcp-roster/internal/servers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_LoadMissingFile(t *testing.T) {
	repo := servers.NewRepository(filepath.Join(t.TempDir(), "servers.yaml"))
	got, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRepository_SaveLoadKeepsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "servers.yaml")
	repo := servers.NewRepository(path)

	in := []servers.Entry{
		{ID: "2", Name: "zeta", BaseURL: "https://zeta.dev/mcp", Type: servers.TypeSSE, Provider: "remote"},
		{ID: "1", Name: "alpha", Command: "uvx", Args: []string{"mcp-server-time"}, Env: map[string]string{"TZ": "UTC"}},
	}
	require.NoError(t, repo.Save(in))

	got, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, in, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestRepository_PersistKeepsEntriesSavedElsewhere(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servers.yaml")
	cliRepo := servers.NewRepository(path)
	panelRepo := servers.NewRepository(path)

	// Both load the same empty collection.
	loaded, err := panelRepo.Load()
	require.NoError(t, err)
	panel, err := servers.NewManager(loaded)
	require.NoError(t, err)
	loaded, err = cliRepo.Load()
	require.NoError(t, err)
	cli, err := servers.NewManager(loaded)
	require.NoError(t, err)

	_, err = cli.Add(servers.Entry{ID: "c", Name: "from-cli", Command: "cli-mcp"})
	require.NoError(t, err)
	absorbed, err := cliRepo.Persist(cli)
	require.NoError(t, err)
	assert.Empty(t, absorbed)

	_, err = panel.Add(servers.Entry{ID: "p", Name: "from-panel", Command: "panel-mcp"})
	require.NoError(t, err)
	absorbed, err = panelRepo.Persist(panel)
	require.NoError(t, err)
	require.Len(t, absorbed, 1)
	assert.Equal(t, "from-cli", absorbed[0].Name)

	got, err := cliRepo.Load()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "from-panel", got[0].Name)
	assert.Equal(t, "from-cli", got[1].Name)
	assert.Equal(t, 2, panel.Len())
}

func TestRepository_UpdateHoldsLockAcrossReadAndWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servers.yaml")
	repo := servers.NewRepository(path)
	other := servers.NewRepository(path, servers.WithLockTimeout(100*time.Millisecond))
	require.NoError(t, repo.Save([]servers.Entry{{ID: "1", Name: "one"}}))

	err := repo.Update(func(stored []servers.Entry) ([]servers.Entry, error) {
		_, err := other.Load()
		assert.ErrorIs(t, err, servers.ErrLocked)
		assert.ErrorIs(t, other.Save(nil), servers.ErrLocked)
		return append(stored, servers.Entry{ID: "2", Name: "two"}), nil
	})
	require.NoError(t, err)

	got, err := other.Load()
	require.NoError(t, err, "lock is released after Update")
	assert.Len(t, got, 2)
}

func TestRepository_UpdateFailureWritesNothing(t *testing.T) {
	repo := servers.NewRepository(filepath.Join(t.TempDir(), "servers.yaml"))
	require.NoError(t, repo.Save([]servers.Entry{{ID: "1", Name: "one"}}))

	boom := errors.New("boom")
	err := repo.Update(func([]servers.Entry) ([]servers.Entry, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.Load()
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestParse(t *testing.T) {
	f, err := servers.Parse([]byte(`version: "1"
servers:
  - id: abc
    name: fetch
    command: uvx
    args: [mcp-server-fetch]
    is_active: true
`))
	require.NoError(t, err)
	assert.Equal(t, "1", f.Version)
	require.Len(t, f.Servers, 1)
	assert.Equal(t, "fetch", f.Servers[0].Name)
	assert.Equal(t, []string{"mcp-server-fetch"}, f.Servers[0].Args)
	assert.True(t, f.Servers[0].IsActive)

	_, err = servers.Parse([]byte(`{{{`))
	assert.Error(t, err)
}
