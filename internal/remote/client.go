package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ServersPath is the provider endpoint listing server definitions.
const ServersPath = "/api/v1/mcp/servers"

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 8 << 20
)

// Kind classifies a fetch outcome.
type Kind int

const (
	KindSuccess      Kind = iota
	KindUnauthorized      // provider rejected the token
	KindFailure           // transport, status or parse failure
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindUnauthorized:
		return "unauthorized"
	case KindFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// ErrUnauthorized is wrapped in Result.Err when the provider rejects the token.
var ErrUnauthorized = errors.New("provider rejected the sync token")

// Result is the outcome of one FetchCandidates call.
type Result struct {
	Kind       Kind
	Candidates []Candidate
	Rejected   []Rejection
	Err        error // set unless Kind is KindSuccess
}

// Client fetches candidate server definitions from a sync provider.
type Client struct {
	baseURL    string
	provider   string
	httpClient *http.Client
	userAgent  string
	log        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (tests, custom transports).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.httpClient = &http.Client{Timeout: d} }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) { cl.userAgent = ua }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

// NewClient creates a client for the provider at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid provider url %q", baseURL)
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		provider:   u.Host,
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "mcp-roster",
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Provider returns the provider name stamped on candidates (the URL host).
func (c *Client) Provider() string {
	return c.provider
}

// FetchCandidates lists every server definition visible to token. It never
// retries and never touches the local collection; deduplication is left to
// the merge engine.
func (c *Client) FetchCandidates(ctx context.Context, token string) Result {
	log := c.log.With(zap.String("provider", c.provider))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+ServersPath, nil)
	if err != nil {
		return failure(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("provider request failed", zap.Error(err))
		return failure(fmt.Errorf("provider request failed: %w", err))
	}
	defer resp.Body.Close()
	log.Debug("provider responded", zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return Result{Kind: KindUnauthorized, Err: fmt.Errorf("%w (status %d)", ErrUnauthorized, resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return failure(fmt.Errorf("provider returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return failure(fmt.Errorf("reading provider response: %w", err))
	}
	items, err := decodeList(body)
	if err != nil {
		log.Warn("malformed provider response", zap.Error(err))
		return failure(fmt.Errorf("parsing provider response: %w", err))
	}

	res := Result{Kind: KindSuccess}
	for i, raw := range items {
		cand, name, err := decodeCandidate(raw, c.provider)
		if err != nil {
			res.Rejected = append(res.Rejected, Rejection{Index: i, Name: name, Reason: err.Error()})
			continue
		}
		res.Candidates = append(res.Candidates, cand)
	}
	if len(res.Rejected) > 0 {
		log.Info("rejected provider items", zap.Int("rejected", len(res.Rejected)), zap.Int("accepted", len(res.Candidates)))
	}
	return res
}

// decodeList accepts {"servers":[...]}, {"data":{"servers":[...]}} or a bare array.
func decodeList(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty body")
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var wrapper struct {
		Servers *[]json.RawMessage `json:"servers"`
		Data    *struct {
			Servers *[]json.RawMessage `json:"servers"`
		} `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, err
	}
	switch {
	case wrapper.Servers != nil:
		return *wrapper.Servers, nil
	case wrapper.Data != nil && wrapper.Data.Servers != nil:
		return *wrapper.Data.Servers, nil
	}
	return nil, errors.New(`no "servers" list in response`)
}

func failure(err error) Result {
	return Result{Kind: KindFailure, Err: err}
}
