package servers

import (
	"maps"
	"slices"

	"github.com/google/uuid"
)

// Transport types recognised for an entry.
const (
	TypeStdio          = "stdio"
	TypeSSE            = "sse"
	TypeStreamableHTTP = "streamableHttp"
)

// Entry is one configured MCP server profile: either a local command or a
// remote endpoint reachable at BaseURL.
type Entry struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Type        string            `yaml:"type,omitempty"`
	BaseURL     string            `yaml:"base_url,omitempty"`
	Command     string            `yaml:"command,omitempty"`
	Args        []string          `yaml:"args,omitempty"`
	Env         map[string]string `yaml:"env,omitempty"`
	Provider    string            `yaml:"provider,omitempty"`  // sync source, blank for local entries
	RemoteID    string            `yaml:"remote_id,omitempty"` // provider's id for the server, if it sent one
	Tags        []string          `yaml:"tags,omitempty"`
	LogoURL     string            `yaml:"logo_url,omitempty"`

	// IsActive is owned by runtime collaborators and never set here.
	IsActive bool `yaml:"is_active"`
}

// NewID returns a fresh opaque entry identifier.
func NewID() string {
	return uuid.NewString()
}

// IsRemote reports whether the entry is reached over a URL.
func (e Entry) IsRemote() bool {
	return e.BaseURL != ""
}

// TransportType returns Type, inferring it from BaseURL/Command when blank.
func (e Entry) TransportType() string {
	if e.Type != "" {
		return e.Type
	}
	if e.IsRemote() {
		return TypeStreamableHTTP
	}
	return TypeStdio
}

// Clone returns a deep copy so callers cannot alias Args, Env or Tags.
func (e Entry) Clone() Entry {
	e.Args = slices.Clone(e.Args)
	e.Tags = slices.Clone(e.Tags)
	if e.Env != nil {
		e.Env = maps.Clone(e.Env)
	}
	return e
}
