package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"go.yaml.in/yaml/v3"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "MCP_ROSTER_"

// Default values used when settings.yaml is missing or leaves a field blank.
const (
	DefaultProviderURL    = "https://mcp.example.dev"
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "info"
)

// Settings represents ~/.mcp-roster/settings.yaml.
type Settings struct {
	ProviderURL    string        `yaml:"provider_url" env:"PROVIDER_URL"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	LogLevel       string        `yaml:"log_level" env:"LOG_LEVEL"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() Settings {
	return Settings{
		ProviderURL:    DefaultProviderURL,
		RequestTimeout: DefaultRequestTimeout,
		LogLevel:       DefaultLogLevel,
	}
}

// ParseSettings parses settings.yaml bytes, filling blanks with defaults.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parsing settings: %w", err)
	}
	fillDefaults(&s)
	return s, nil
}

// MarshalSettings serializes Settings to YAML bytes.
func MarshalSettings(s Settings) ([]byte, error) {
	return yaml.Marshal(s)
}

// LoadSettings reads settings from path, applies MCP_ROSTER_* environment
// overrides and validates the result. A missing file yields defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		s, err = ParseSettings(data)
		if err != nil {
			return Settings{}, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Settings{}, fmt.Errorf("reading settings: %w", err)
	}

	if err := env.ParseWithOptions(&s, env.Options{Prefix: EnvPrefix}); err != nil {
		return Settings{}, fmt.Errorf("reading environment overrides: %w", err)
	}
	fillDefaults(&s)

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks that the provider URL is absolute http(s) and the
// timeout is positive.
func (s Settings) Validate() error {
	u, err := url.Parse(s.ProviderURL)
	if err != nil {
		return fmt.Errorf("invalid provider_url %q: %w", s.ProviderURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid provider_url %q: must be an absolute http(s) URL", s.ProviderURL)
	}
	if s.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request_timeout %s: must be positive", s.RequestTimeout)
	}
	return nil
}

func fillDefaults(s *Settings) {
	if s.ProviderURL == "" {
		s.ProviderURL = DefaultProviderURL
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = DefaultRequestTimeout
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
}
