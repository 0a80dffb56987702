package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ruminaider/mcp-roster/internal/servers"
)

// Candidate is a server definition returned by the provider that has been
// validated but not yet reconciled against the local collection. It has no
// local id.
type Candidate struct {
	RemoteID    string
	Name        string
	Description string
	Type        string
	BaseURL     string
	Command     string
	Args        []string
	Env         map[string]string
	Tags        []string
	LogoURL     string
	Provider    string
}

// Entry converts the candidate to a collection entry without an id.
func (c Candidate) Entry() servers.Entry {
	e := servers.Entry{
		RemoteID:    c.RemoteID,
		Name:        c.Name,
		Description: c.Description,
		Type:        c.Type,
		BaseURL:     c.BaseURL,
		Command:     c.Command,
		Args:        c.Args,
		Env:         c.Env,
		Provider:    c.Provider,
		Tags:        c.Tags,
		LogoURL:     c.LogoURL,
	}
	return e.Clone()
}

// Rejection records a provider item that could not be coerced into a
// Candidate.
type Rejection struct {
	Index  int    // position in the provider's list
	Name   string // best-effort name, may be blank
	Reason string
}

// rawServer is the loose wire shape of one provider item.
type rawServer struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Type            string            `json:"type"`
	URL             string            `json:"url"`
	BaseURL         string            `json:"baseUrl"`
	OperationalURLs []struct {
		URL string `json:"url"`
	} `json:"operationalUrls"`
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
	Tags    []string          `json:"tags"`
	LogoURL string            `json:"logoUrl"`
}

var validTypes = map[string]bool{
	servers.TypeStdio:          true,
	servers.TypeSSE:            true,
	servers.TypeStreamableHTTP: true,
}

var (
	errMissingName     = errors.New("missing name")
	errMissingEndpoint = errors.New("neither url nor command given")
	errBothEndpoints   = errors.New("both url and command given")
)

// decodeCandidate validates a single provider item.
func decodeCandidate(raw json.RawMessage, provider string) (Candidate, string, error) {
	var rs rawServer
	if err := json.Unmarshal(raw, &rs); err != nil {
		// Salvage the name for the rejection report when possible.
		var named struct {
			Name string `json:"name"`
		}
		_ = json.Unmarshal(raw, &named)
		return Candidate{}, named.Name, fmt.Errorf("malformed item: %w", err)
	}

	name := strings.TrimSpace(rs.Name)
	if name == "" {
		return Candidate{}, "", errMissingName
	}

	endpoint := firstNonEmpty(rs.BaseURL, rs.URL)
	if endpoint == "" {
		for _, ou := range rs.OperationalURLs {
			if strings.TrimSpace(ou.URL) != "" {
				endpoint = ou.URL
				break
			}
		}
	}
	endpoint = strings.TrimSpace(endpoint)
	command := strings.TrimSpace(rs.Command)

	if endpoint == "" && command == "" {
		return Candidate{}, name, errMissingEndpoint
	}
	if endpoint != "" && command != "" {
		return Candidate{}, name, errBothEndpoints
	}
	if endpoint != "" {
		u, err := url.Parse(endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Candidate{}, name, fmt.Errorf("invalid url %q", endpoint)
		}
	}

	typ := strings.TrimSpace(rs.Type)
	if typ != "" && !validTypes[typ] {
		return Candidate{}, name, fmt.Errorf("unknown transport type %q", typ)
	}

	return Candidate{
		RemoteID:    strings.TrimSpace(rs.ID),
		Name:        name,
		Description: strings.TrimSpace(rs.Description),
		Type:        typ,
		BaseURL:     endpoint,
		Command:     command,
		Args:        rs.Args,
		Env:         rs.Env,
		Tags:        rs.Tags,
		LogoURL:     rs.LogoURL,
		Provider:    provider,
	}, name, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
