// Package credentials holds the single opaque token used to authenticate
// against the sync provider.
package credentials

import (
	"os"
	"sync"
)

// TokenEnv, when set, supplies the sync token without touching the store.
const TokenEnv = "MCP_ROSTER_SYNC_TOKEN"

// Store persists one sync token. Get reports ok=false when no token has
// been stored. Set overwrites unconditionally and does not validate.
type Store interface {
	Get() (token string, ok bool, err error)
	Set(token string) error
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	set   bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get() (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.set, nil
}

func (s *MemoryStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.set = true
	return nil
}

// EnvStore prefers $MCP_ROSTER_SYNC_TOKEN over the wrapped store on reads.
// Writes always go to the wrapped store.
type EnvStore struct {
	Store
	lookup func(string) (string, bool)
}

// WithEnv wraps s with the environment override.
func WithEnv(s Store) *EnvStore {
	return &EnvStore{Store: s, lookup: os.LookupEnv}
}

func (s *EnvStore) Get() (string, bool, error) {
	if v, ok := s.lookup(TokenEnv); ok && v != "" {
		return v, true, nil
	}
	return s.Store.Get()
}
