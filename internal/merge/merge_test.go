package merge_test

import (
	"fmt"
	"testing"

	"github.com/ruminaider/mcp-roster/internal/merge"
	"github.com/ruminaider/mcp-roster/internal/remote"
	"github.com/ruminaider/mcp-roster/internal/servers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs() merge.IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	}
}

var (
	candA = remote.Candidate{Name: "Fetch", Command: "uvx", Args: []string{"mcp-server-fetch"}, Provider: "p"}
	candB = remote.Candidate{Name: "Maps", BaseURL: "https://maps.example.com/sse", Type: servers.TypeSSE, Provider: "p"}
)

func TestMerge_EmptyCollection(t *testing.T) {
	out := merge.MergeWithIDs([]remote.Candidate{candA, candB}, nil, seqIDs())

	assert.True(t, out.Success)
	assert.Equal(t, merge.KindAdded, out.Kind)
	require.Len(t, out.Added, 2)
	assert.Equal(t, "Fetch", out.Added[0].Name)
	assert.Equal(t, "new-1", out.Added[0].ID)
	assert.Equal(t, "Maps", out.Added[1].Name)
	assert.Equal(t, "new-2", out.Added[1].ID)
	assert.Equal(t, "Added 2 new servers", out.Message)
}

func TestMerge_SkipsExistingEquivalent(t *testing.T) {
	existing := []servers.Entry{
		{ID: "local-1", Name: "fetch", Command: "uvx", Args: []string{"mcp-server-fetch"}, Description: "mine"},
	}
	out := merge.MergeWithIDs([]remote.Candidate{candA, candB}, existing, seqIDs())

	require.Len(t, out.Added, 1)
	assert.Equal(t, "Maps", out.Added[0].Name)
	assert.Equal(t, 1, out.Skipped)
	assert.Equal(t, "Added 1 new server", out.Message)
}

func TestMerge_Idempotent(t *testing.T) {
	first := merge.Merge([]remote.Candidate{candA, candB}, nil)
	require.Len(t, first.Added, 2)

	second := merge.Merge([]remote.Candidate{candA, candB}, first.Added)
	assert.True(t, second.Success)
	assert.Equal(t, merge.KindNothingNew, second.Kind)
	assert.Empty(t, second.Added)
	assert.Equal(t, 2, second.Skipped)
	assert.Equal(t, "No new servers to add", second.Message)
}

func TestMerge_NoCandidates(t *testing.T) {
	out := merge.Merge(nil, nil)
	assert.True(t, out.Success)
	assert.Equal(t, merge.KindNothingNew, out.Kind)
}

func TestMerge_DuplicateWithinBatch(t *testing.T) {
	dup := candA
	dup.Description = "same server, different blurb"
	out := merge.MergeWithIDs([]remote.Candidate{candA, dup}, nil, seqIDs())
	require.Len(t, out.Added, 1)
	assert.Equal(t, 1, out.Skipped)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	existing := []servers.Entry{{ID: "x", Name: "other", Command: "run"}}
	cands := []remote.Candidate{candA}

	out := merge.Merge(cands, existing)
	require.Len(t, out.Added, 1)
	out.Added[0].Args[0] = "changed"

	assert.Equal(t, []servers.Entry{{ID: "x", Name: "other", Command: "run"}}, existing)
	assert.Equal(t, "mcp-server-fetch", cands[0].Args[0])
}

func TestMerge_DefaultIDsAreFresh(t *testing.T) {
	out := merge.Merge([]remote.Candidate{candA, candB}, nil)
	require.Len(t, out.Added, 2)
	assert.NotEmpty(t, out.Added[0].ID)
	assert.NotEqual(t, out.Added[0].ID, out.Added[1].ID)
}

func TestKey(t *testing.T) {
	tests := []struct {
		name  string
		a, b  servers.Entry
		equal bool
	}{
		{
			"name case and spacing",
			servers.Entry{Name: "My  Server", Command: "run"},
			servers.Entry{Name: " my server ", Command: "run"},
			true,
		},
		{
			"url trailing slash and host case",
			servers.Entry{Name: "m", BaseURL: "https://Maps.Example.com/sse/"},
			servers.Entry{Name: "m", BaseURL: "https://maps.example.com/sse"},
			true,
		},
		{
			"ids and metadata ignored",
			servers.Entry{ID: "1", Name: "m", Command: "run", Description: "a", Env: map[string]string{"A": "1"}},
			servers.Entry{ID: "2", Name: "m", Command: "run", Description: "b", Provider: "p"},
			true,
		},
		{
			"same name different url",
			servers.Entry{Name: "m", BaseURL: "https://a.dev"},
			servers.Entry{Name: "m", BaseURL: "https://b.dev"},
			false,
		},
		{
			"same name different args",
			servers.Entry{Name: "m", Command: "npx", Args: []string{"a"}},
			servers.Entry{Name: "m", Command: "npx", Args: []string{"b"}},
			false,
		},
		{
			"args are not concatenated ambiguously",
			servers.Entry{Name: "m", Command: "npx", Args: []string{"a b"}},
			servers.Entry{Name: "m", Command: "npx", Args: []string{"a", "b"}},
			false,
		},
		{
			"different name same endpoint",
			servers.Entry{Name: "one", Command: "run"},
			servers.Entry{Name: "two", Command: "run"},
			false,
		},
		{
			"url beats command",
			servers.Entry{Name: "m", BaseURL: "https://a.dev", Command: "x"},
			servers.Entry{Name: "m", BaseURL: "https://a.dev"},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.equal {
				assert.Equal(t, merge.Key(tt.a), merge.Key(tt.b))
			} else {
				assert.NotEqual(t, merge.Key(tt.a), merge.Key(tt.b))
			}
		})
	}
}
