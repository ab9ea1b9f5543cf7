package docstore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/planpin/backend/domain"
)

// dbPrefix is the fixed prefix of every per-user database file, so one
// shared device keeps an isolated store per user name.
const dbPrefix = "plan_"

type entry struct {
	store    *Store
	lastUsed time.Time
}

// Stats summarizes the manager's open handles for monitoring.
type Stats struct {
	OpenStores int       `json:"open_stores"`
	LastOpen   time.Time `json:"last_open"`
}

// Manager hands out one store handle per user name. Handles are cached, so
// repeated opens for the same name return the same store instead of
// re-initializing it, including when two requests race on first open.
type Manager struct {
	dir    string
	logger *zap.Logger

	mu       sync.Mutex // held across Open so racing opens stay idempotent
	entries  map[string]*entry
	lastOpen time.Time
}

// NewManager creates the store directory if needed and returns a manager.
func NewManager(dir string, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnavailable, "failed to create store directory", err)
	}
	return &Manager{
		dir:     dir,
		logger:  logger,
		entries: make(map[string]*entry),
	}, nil
}

// Open returns the store for the given user name, opening it on first use.
func (m *Manager) Open(name string) (*Store, error) {
	if name == "" {
		return nil, domain.ErrInvalidPayload
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[name]; ok {
		e.lastUsed = time.Now()
		return e.store, nil
	}

	path := filepath.Join(m.dir, dbFileName(name))
	store, err := Open(path, m.logger.With(zap.String("user", name)))
	if err != nil {
		return nil, err
	}
	m.entries[name] = &entry{store: store, lastUsed: time.Now()}
	m.lastOpen = time.Now()
	m.logger.Info("opened user store", zap.String("user", name), zap.String("path", path))
	return store, nil
}

// CloseIdle closes stores that have not been handed out within maxIdle and
// returns how many were closed. They reopen transparently on next use.
func (m *Manager) CloseIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	closed := 0
	for name, e := range m.entries {
		if e.lastUsed.After(cutoff) {
			continue
		}
		if err := e.store.Close(); err != nil {
			m.logger.Warn("failed to close idle store", zap.String("user", name), zap.Error(err))
			continue
		}
		delete(m.entries, name)
		closed++
	}
	return closed
}

// Stats reports the current handle count.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{OpenStores: len(m.entries), LastOpen: m.lastOpen}
}

// Dir returns the directory holding the database files.
func (m *Manager) Dir() string {
	return m.dir
}

// Close closes every open store. Used during shutdown.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for name, e := range m.entries {
		if err := e.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.entries, name)
	}
	return firstErr
}

// dbFileName derives a filesystem-safe database file name from a user name.
func dbFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return dbPrefix + b.String() + ".db"
}
