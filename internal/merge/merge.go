// Package merge reconciles candidates fetched from a sync provider against
// the local server collection.
package merge

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ruminaider/mcp-roster/internal/remote"
	"github.com/ruminaider/mcp-roster/internal/servers"
)

// Kind distinguishes the two successful merge outcomes, which are shown
// with different severities.
type Kind int

const (
	KindAdded      Kind = iota // at least one new entry
	KindNothingNew             // every candidate already exists locally
)

// Outcome is the result of one merge.
type Outcome struct {
	Success bool
	Kind    Kind
	Added   []servers.Entry // new entries with fresh ids, in candidate order
	Skipped int             // candidates that matched an existing entry or an earlier candidate
	Message string
}

// IDFunc generates ids for newly added entries.
type IDFunc func() string

// Merge returns the candidates that have no equivalent in existing, each
// with a fresh id. Neither argument is modified.
func Merge(candidates []remote.Candidate, existing []servers.Entry) Outcome {
	return MergeWithIDs(candidates, existing, servers.NewID)
}

// MergeWithIDs is Merge with a caller-supplied id generator.
func MergeWithIDs(candidates []remote.Candidate, existing []servers.Entry, newID IDFunc) Outcome {
	seen := make(map[string]bool, len(existing)+len(candidates))
	for _, e := range existing {
		seen[Key(e)] = true
	}

	var out Outcome
	for _, c := range candidates {
		e := c.Entry()
		k := Key(e)
		if seen[k] {
			out.Skipped++
			continue
		}
		seen[k] = true
		e.ID = newID()
		out.Added = append(out.Added, e)
	}

	out.Success = true
	if len(out.Added) == 0 {
		out.Kind = KindNothingNew
		out.Message = "No new servers to add"
		return out
	}
	out.Kind = KindAdded
	out.Message = AddedMessage(len(out.Added))
	return out
}

// AddedMessage formats the summary for n added servers.
func AddedMessage(n int) string {
	if n == 1 {
		return "Added 1 new server"
	}
	return fmt.Sprintf("Added %d new servers", n)
}

// Key is the equivalence key used for deduplication: the normalized name
// plus the normalized endpoint (URL when present, otherwise command and
// args). Ids, descriptions, env and metadata do not participate.
func Key(e servers.Entry) string {
	return normalizeName(e.Name) + "\x00" + endpoint(e)
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func endpoint(e servers.Entry) string {
	if u := strings.TrimSpace(e.BaseURL); u != "" {
		return "url:" + normalizeURL(u)
	}
	parts := append([]string{strings.TrimSpace(e.Command)}, e.Args...)
	return "cmd:" + strings.Join(parts, "\x1f")
}

func normalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimRight(strings.ToLower(raw), "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.Fragment = ""
	return u.String()
}
