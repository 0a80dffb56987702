package servers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.yaml.in/yaml/v3"
)

// FileVersion is written to every servers.yaml.
const FileVersion = "1"

const (
	defaultLockTimeout = 5 * time.Second
	lockRetryDelay     = 50 * time.Millisecond
)

// ErrLocked is returned when another process holds the servers.yaml lock.
var ErrLocked = errors.New("servers file is locked by another process")

// File is the on-disk shape of servers.yaml.
type File struct {
	Version string  `yaml:"version"`
	Servers []Entry `yaml:"servers"`
}

// Repository loads and saves the ordered collection at a path. Access is
// serialised across processes through a sibling .lock file.
type Repository struct {
	path        string
	lock        *flock.Flock
	lockTimeout time.Duration
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithLockTimeout sets how long to wait for another process to release the
// lock before giving up with ErrLocked.
func WithLockTimeout(d time.Duration) RepositoryOption {
	return func(r *Repository) { r.lockTimeout = d }
}

// NewRepository returns a repository for the given servers.yaml path.
func NewRepository(path string, opts ...RepositoryOption) *Repository {
	r := &Repository{
		path:        path,
		lock:        flock.New(path + ".lock"),
		lockTimeout: defaultLockTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the servers.yaml path.
func (r *Repository) Path() string {
	return r.path
}

// Load reads the collection. A missing file is an empty collection.
func (r *Repository) Load() ([]Entry, error) {
	var entries []Entry
	err := r.withLock(func() error {
		var err error
		entries, err = r.read()
		return err
	})
	return entries, err
}

// Save writes the collection in order, replacing the file atomically.
// Anything another process wrote since the last Load is overwritten; use
// Update or Persist when the collection was loaded earlier.
func (r *Repository) Save(entries []Entry) error {
	return r.withLock(func() error {
		return r.write(entries)
	})
}

// Update re-reads the stored collection and writes whatever fn returns,
// holding the lock for the whole read-modify-write. Nothing is written
// when fn fails.
func (r *Repository) Update(fn func(stored []Entry) ([]Entry, error)) error {
	return r.withLock(func() error {
		stored, err := r.read()
		if err != nil {
			return err
		}
		next, err := fn(stored)
		if err != nil {
			return err
		}
		return r.write(next)
	})
}

// Persist writes m's collection. Entries other processes saved since m was
// loaded are first added to m, after its own entries, so they are kept.
// It returns the entries picked up that way.
func (r *Repository) Persist(m *Manager) ([]Entry, error) {
	var absorbed []Entry
	err := r.Update(func(stored []Entry) ([]Entry, error) {
		var err error
		if absorbed, err = m.Absorb(stored); err != nil {
			return nil, err
		}
		return m.Entries(), nil
	})
	return absorbed, err
}

func (r *Repository) read() ([]Entry, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading servers: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return f.Servers, nil
}

func (r *Repository) write(entries []Entry) error {
	data, err := Marshal(File{Version: FileVersion, Servers: entries})
	if err != nil {
		return fmt.Errorf("marshaling servers: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing servers: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replacing servers: %w", err)
	}
	return nil
}

func (r *Repository) withLock(fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.lockTimeout)
	defer cancel()
	locked, err := r.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("locking servers file: %w", err)
	}
	if !locked {
		return ErrLocked
	}
	defer r.lock.Unlock()
	return fn()
}

// Parse parses servers.yaml bytes.
func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parsing servers: %w", err)
	}
	return f, nil
}

// Marshal serializes a File to YAML bytes.
func Marshal(f File) ([]byte, error) {
	return yaml.Marshal(f)
}
