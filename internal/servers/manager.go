package servers

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrInvalidArgument is returned when a reorder is not a permutation of
	// the current collection.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDuplicateID is returned by Add when the id is already present.
	ErrDuplicateID = errors.New("duplicate server id")
	// ErrNotFound is returned when an id is not in the collection.
	ErrNotFound = errors.New("server not found")
)

// Observer receives collection changes. Any field may be nil.
type Observer struct {
	OnAdd         func(Entry)
	OnUpdateOrder func([]Entry)
	OnSelect      func(*Entry)
}

// Manager owns the ordered server collection and the current selection.
// All methods are safe for concurrent use; every mutation is applied whole.
type Manager struct {
	mu        sync.RWMutex
	entries   []Entry
	index     map[string]int // id -> position in entries
	selected  string
	observers []Observer
}

// NewManager creates a manager over an existing ordered collection, as
// loaded from storage. Entries without an id are given one.
func NewManager(entries []Entry) (*Manager, error) {
	m := &Manager{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if _, err := m.add(e); err != nil {
			return nil, fmt.Errorf("loading server %q: %w", e.Name, err)
		}
	}
	return m, nil
}

// Observe registers an observer for subsequent changes.
func (m *Manager) Observe(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

// Add appends an entry, assigning an id when it has none, and returns the
// stored copy.
func (m *Manager) Add(e Entry) (Entry, error) {
	m.mu.Lock()
	stored, err := m.add(e)
	observers := m.observers
	m.mu.Unlock()
	if err != nil {
		return Entry{}, err
	}

	for _, o := range observers {
		if o.OnAdd != nil {
			o.OnAdd(stored.Clone())
		}
	}
	return stored.Clone(), nil
}

func (m *Manager) add(e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = NewID()
	}
	if _, exists := m.index[e.ID]; exists {
		return Entry{}, fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}
	e = e.Clone()
	m.index[e.ID] = len(m.entries)
	m.entries = append(m.entries, e)
	return e, nil
}

// Absorb appends every entry in stored whose id is not yet in the
// collection, keeping stored's order, and returns the appended entries.
// Entries without an id are skipped: they were given one when first loaded.
func (m *Manager) Absorb(stored []Entry) ([]Entry, error) {
	var added []Entry
	for _, e := range stored {
		if e.ID == "" {
			continue
		}
		if _, ok := m.Get(e.ID); ok {
			continue
		}
		got, err := m.Add(e)
		if errors.Is(err, ErrDuplicateID) {
			continue
		}
		if err != nil {
			return added, err
		}
		added = append(added, got)
	}
	return added, nil
}

// Reorder replaces the stored order. newOrder must contain every current id
// exactly once; only ids are read from it, so entry fields cannot be changed
// through a reorder.
func (m *Manager) Reorder(newOrder []Entry) error {
	m.mu.Lock()
	if len(newOrder) != len(m.entries) {
		m.mu.Unlock()
		return fmt.Errorf("%w: reorder has %d entries, collection has %d",
			ErrInvalidArgument, len(newOrder), len(m.entries))
	}

	reordered := make([]Entry, len(newOrder))
	index := make(map[string]int, len(newOrder))
	for i, e := range newOrder {
		pos, ok := m.index[e.ID]
		if !ok {
			m.mu.Unlock()
			return fmt.Errorf("%w: unknown server id %q", ErrInvalidArgument, e.ID)
		}
		if _, dup := index[e.ID]; dup {
			m.mu.Unlock()
			return fmt.Errorf("%w: server id %q appears twice", ErrInvalidArgument, e.ID)
		}
		reordered[i] = m.entries[pos]
		index[e.ID] = i
	}
	m.entries = reordered
	m.index = index

	snapshot := m.snapshot()
	observers := m.observers
	m.mu.Unlock()

	for _, o := range observers {
		if o.OnUpdateOrder != nil {
			o.OnUpdateOrder(snapshot)
		}
	}
	return nil
}

// SetSelected marks the entry with the given id as selected.
func (m *Manager) SetSelected(id string) error {
	m.mu.Lock()
	pos, ok := m.index[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.selected = id
	sel := m.entries[pos].Clone()
	observers := m.observers
	m.mu.Unlock()

	for _, o := range observers {
		if o.OnSelect != nil {
			o.OnSelect(&sel)
		}
	}
	return nil
}

// ClearSelected removes the selection.
func (m *Manager) ClearSelected() {
	m.mu.Lock()
	m.selected = ""
	observers := m.observers
	m.mu.Unlock()

	for _, o := range observers {
		if o.OnSelect != nil {
			o.OnSelect(nil)
		}
	}
}

// Selected returns the selected entry, if any.
func (m *Manager) Selected() (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.selected == "" {
		return Entry{}, false
	}
	pos, ok := m.index[m.selected]
	if !ok {
		return Entry{}, false
	}
	return m.entries[pos].Clone(), true
}

// Get returns the entry with the given id.
func (m *Manager) Get(id string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pos, ok := m.index[id]
	if !ok {
		return Entry{}, false
	}
	return m.entries[pos].Clone(), true
}

// Entries returns a copy of the collection in display order.
func (m *Manager) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot()
}

// Len returns the number of entries.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Manager) snapshot() []Entry {
	out := make([]Entry, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Clone()
	}
	return out
}
