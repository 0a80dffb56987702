package mcpjson

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/ruminaider/mcp-roster/internal/remote"
)

// Secret is an env value that looks like a credential.
type Secret struct {
	Server string
	EnvKey string
	Value  string
	Reason string // e.g. "key matches *_API_KEY"
}

// DetectSecrets scans candidate env maps for literal credentials. Values
// already written as ${VAR} references are skipped.
func DetectSecrets(candidates []remote.Candidate) []Secret {
	var secrets []Secret
	for _, c := range candidates {
		for key, value := range c.Env {
			if isTemplated(value) {
				continue
			}
			if reason := classify(key, value); reason != "" {
				secrets = append(secrets, Secret{Server: c.Name, EnvKey: key, Value: value, Reason: reason})
			}
		}
	}
	sort.Slice(secrets, func(i, j int) bool {
		if secrets[i].Server != secrets[j].Server {
			return secrets[i].Server < secrets[j].Server
		}
		return secrets[i].EnvKey < secrets[j].EnvKey
	})
	return secrets
}

// ReplaceSecrets returns copies of candidates with every detected secret
// swapped for a ${ENV_KEY} reference.
func ReplaceSecrets(candidates []remote.Candidate, secrets []Secret) []remote.Candidate {
	byServer := make(map[string]map[string]bool)
	for _, s := range secrets {
		if byServer[s.Server] == nil {
			byServer[s.Server] = make(map[string]bool)
		}
		byServer[s.Server][s.EnvKey] = true
	}

	out := make([]remote.Candidate, len(candidates))
	for i, c := range candidates {
		keys := byServer[c.Name]
		if len(keys) > 0 && c.Env != nil {
			env := make(map[string]string, len(c.Env))
			for k, v := range c.Env {
				if keys[k] {
					v = "${" + k + "}"
				}
				env[k] = v
			}
			c.Env = env
		}
		out[i] = c
	}
	return out
}

func classify(key, value string) string {
	if reason := secretKey(key); reason != "" {
		return reason
	}
	return secretValue(value)
}

var secretSuffixes = []string{"_API_KEY", "_APIKEY", "_KEY", "_TOKEN", "_SECRET", "_PASSWORD"}

func secretKey(key string) string {
	upper := strings.ToUpper(key)
	for _, suffix := range secretSuffixes {
		if strings.HasSuffix(upper, suffix) {
			return fmt.Sprintf("key matches *%s", suffix)
		}
	}
	return ""
}

// Prefixes of well-known service credentials.
var secretPrefixes = []string{
	"sk-",    // OpenAI, Stripe
	"ghp_",   // GitHub personal
	"gho_",   // GitHub OAuth
	"rnd_",   // Render
	"NRAK-",  // New Relic
	"xoxb-",  // Slack bot
	"xoxp-",  // Slack user
	"shpat_", // Shopify
	"live_",
}

func secretValue(value string) string {
	for _, prefix := range secretPrefixes {
		if strings.HasPrefix(value, prefix) {
			return fmt.Sprintf("value matches %s* prefix", prefix)
		}
	}

	// 32+ characters, mostly alphanumeric.
	if len(value) >= 32 {
		alnum := 0
		for _, r := range value {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				alnum++
			}
		}
		if float64(alnum)/float64(len(value)) >= 0.8 {
			return "long alphanumeric string (likely credential)"
		}
	}
	return ""
}

func isTemplated(value string) bool {
	return strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}")
}
