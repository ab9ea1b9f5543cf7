package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/planpin/backend/internal/infrastructure/docstore"
)

// StorekeeperConfig controls how often idle per-user stores are closed.
type StorekeeperConfig struct {
	Interval time.Duration
	MaxIdle  time.Duration
}

// Storekeeper periodically closes per-user document stores that have not
// been touched for a while, keeping file handles bounded.
type Storekeeper struct {
	manager *docstore.Manager
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     StorekeeperConfig
}

func NewStorekeeper(manager *docstore.Manager, logger *zap.Logger, cfg StorekeeperConfig) *Storekeeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.MaxIdle <= 0 {
		cfg.MaxIdle = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sk := &Storekeeper{
		manager: manager,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = sk.cron.AddFunc(schedule, sk.sweep)

	return sk
}

// Start launches the cron scheduler.
func (sk *Storekeeper) Start() {
	if sk == nil || sk.cron == nil {
		return
	}
	sk.cron.Start()
	sk.logger.Info("storekeeper started",
		zap.Duration("interval", sk.cfg.Interval),
		zap.Duration("max_idle", sk.cfg.MaxIdle))
}

// Stop gracefully stops the scheduler.
func (sk *Storekeeper) Stop(ctx context.Context) {
	if sk == nil || sk.cron == nil {
		return
	}
	stopCtx := sk.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	sk.logger.Info("storekeeper stopped")
}

// Sweep closes idle stores synchronously. Exposed for tests.
func (sk *Storekeeper) Sweep() int {
	if sk == nil || sk.manager == nil {
		return 0
	}
	closed := sk.manager.CloseIdle(sk.cfg.MaxIdle)
	stats := sk.manager.Stats()
	if closed > 0 {
		sk.logger.Info("closed idle stores",
			zap.Int("closed", closed),
			zap.Int("open", stats.OpenStores))
	} else {
		sk.logger.Debug("no idle stores", zap.Int("open", stats.OpenStores))
	}
	return closed
}

func (sk *Storekeeper) sweep() {
	sk.Sweep()
}
