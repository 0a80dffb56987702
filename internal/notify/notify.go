// Package notify is the keyed notification surface the sync flow reports
// through. Notices sharing a key replace each other instead of stacking.
package notify

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Level is a notice severity.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
	LevelLoading
)

// String returns the level's name.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	case LevelLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notifier receives user-facing notices.
type Notifier interface {
	Success(message, key string)
	Error(message, key string)
	Info(message, key string)
	Loading(message, key string)
}

// Notice is one notification.
type Notice struct {
	Key     string
	Level   Level
	Message string
	At      time.Time
}

// Board keeps the latest notice per key.
type Board struct {
	mu      sync.Mutex
	notices map[string]Notice
	now     func() time.Time
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{notices: make(map[string]Notice), now: time.Now}
}

func (b *Board) Success(message, key string) { b.put(LevelSuccess, message, key) }
func (b *Board) Error(message, key string)   { b.put(LevelError, message, key) }
func (b *Board) Info(message, key string)    { b.put(LevelInfo, message, key) }
func (b *Board) Loading(message, key string) { b.put(LevelLoading, message, key) }

func (b *Board) put(level Level, message, key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices[key] = Notice{Key: key, Level: level, Message: message, At: b.now()}
}

// Get returns the notice for key.
func (b *Board) Get(key string) (Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.notices[key]
	return n, ok
}

// Latest returns the most recently posted notice.
func (b *Board) Latest() (Notice, bool) {
	all := b.All()
	if len(all) == 0 {
		return Notice{}, false
	}
	return all[len(all)-1], true
}

// All returns every notice, oldest first.
func (b *Board) All() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notice, 0, len(b.notices))
	for _, n := range b.notices {
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].At.Equal(out[j].At) {
			return out[i].Key < out[j].Key
		}
		return out[i].At.Before(out[j].At)
	})
	return out
}

// Dismiss removes the notice for key.
func (b *Board) Dismiss(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.notices, key)
}

// Log writes every notice to a zap logger.
type Log struct {
	L *zap.Logger
}

func (l Log) Success(message, key string) { l.L.Info(message, zap.String("key", key), zap.Stringer("level", LevelSuccess)) }
func (l Log) Error(message, key string)   { l.L.Warn(message, zap.String("key", key), zap.Stringer("level", LevelError)) }
func (l Log) Info(message, key string)    { l.L.Info(message, zap.String("key", key), zap.Stringer("level", LevelInfo)) }
func (l Log) Loading(message, key string) { l.L.Debug(message, zap.String("key", key), zap.Stringer("level", LevelLoading)) }

// Multi fans notices out to several notifiers in order.
type Multi []Notifier

func (m Multi) Success(message, key string) {
	for _, n := range m {
		n.Success(message, key)
	}
}

func (m Multi) Error(message, key string) {
	for _, n := range m {
		n.Error(message, key)
	}
}

func (m Multi) Info(message, key string) {
	for _, n := range m {
		n.Info(message, key)
	}
}

func (m Multi) Loading(message, key string) {
	for _, n := range m {
		n.Loading(message, key)
	}
}
