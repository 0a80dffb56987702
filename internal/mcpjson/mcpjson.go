// Package mcpjson reads .mcp.json files so their servers can be merged into
// the collection like any other batch of candidates.
package mcpjson

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/ruminaider/mcp-roster/internal/remote"
	"github.com/ruminaider/mcp-roster/internal/servers"
)

// Provider is recorded on entries imported from a file.
const Provider = "mcp.json"

// Read reads an .mcp.json file. Both the {"mcpServers": {...}} wrapper and a
// bare name-to-config map are accepted.
func Read(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading MCP config: %w", err)
	}
	return Parse(data)
}

// Parse decodes .mcp.json content.
func Parse(data []byte) (map[string]json.RawMessage, error) {
	var wrapper struct {
		MCPServers map[string]json.RawMessage `json:"mcpServers"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parsing MCP config: %w", err)
	}
	if wrapper.MCPServers != nil {
		return wrapper.MCPServers, nil
	}

	var direct map[string]json.RawMessage
	if err := json.Unmarshal(data, &direct); err != nil {
		return nil, fmt.Errorf("parsing MCP config: %w", err)
	}
	delete(direct, "mcpServers")
	return direct, nil
}

type serverConfig struct {
	Type    string            `json:"type"`
	URL     string            `json:"url"`
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
}

// Candidates converts parsed configs into merge candidates, ordered by
// server name. Configs that cannot be used are reported as rejections.
func Candidates(configs map[string]json.RawMessage) ([]remote.Candidate, []remote.Rejection) {
	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		out      []remote.Candidate
		rejected []remote.Rejection
	)
	for i, name := range names {
		c, err := toCandidate(name, configs[name])
		if err != nil {
			rejected = append(rejected, remote.Rejection{Index: i, Name: name, Reason: err.Error()})
			continue
		}
		out = append(out, c)
	}
	return out, rejected
}

func toCandidate(name string, raw json.RawMessage) (remote.Candidate, error) {
	var cfg serverConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return remote.Candidate{}, fmt.Errorf("malformed config: %w", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return remote.Candidate{}, fmt.Errorf("missing name")
	}

	endpoint := strings.TrimSpace(cfg.URL)
	command := strings.TrimSpace(cfg.Command)
	if endpoint == "" && command == "" {
		return remote.Candidate{}, fmt.Errorf("neither url nor command given")
	}
	if endpoint != "" && command != "" {
		return remote.Candidate{}, fmt.Errorf("both url and command given")
	}
	if endpoint != "" {
		u, err := url.Parse(endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return remote.Candidate{}, fmt.Errorf("invalid url %q", endpoint)
		}
	}

	typ := cfg.Type
	switch typ {
	case "", servers.TypeStdio, servers.TypeSSE, servers.TypeStreamableHTTP:
	case "http":
		typ = servers.TypeStreamableHTTP
	default:
		return remote.Candidate{}, fmt.Errorf("unknown transport type %q", typ)
	}

	return remote.Candidate{
		Name:     name,
		Type:     typ,
		BaseURL:  endpoint,
		Command:  command,
		Args:     cfg.Args,
		Env:      cfg.Env,
		Provider: Provider,
	}, nil
}
