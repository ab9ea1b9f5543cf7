package monitor

import (
	"context"
	"os"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/planpin/backend/internal/infrastructure/docstore"
)

// Monitor periodically checks the session store and the document store
// directory so the health endpoint can report degraded dependencies.
type Monitor struct {
	redis  *redislib.Client
	stores *docstore.Manager

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	logger   *zap.Logger
}

func New(redis *redislib.Client, stores *docstore.Manager, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		redis:    redis,
		stores:   stores,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	close(m.stopCh)
}

// IsOnline reports whether every dependency answered the last check.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Redis && m.status.StoreDir
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refresh()
	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	storeOK, open := m.checkStores()
	status := Status{
		Redis:      m.checkRedis(),
		StoreDir:   storeOK,
		OpenStores: open,
		LastCheck:  time.Now(),
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) checkRedis() bool {
	if m.redis == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.redis.Ping(ctx).Err() == nil
}

func (m *Monitor) checkStores() (bool, int) {
	if m.stores == nil {
		return false, 0
	}
	stats := m.stores.Stats()
	info, err := os.Stat(m.stores.Dir())
	if err != nil || !info.IsDir() {
		m.logger.Warn("store directory check failed", zap.Error(err))
		return false, stats.OpenStores
	}
	return true, stats.OpenStores
}
