// Package monitor periodically probes the slot backend and the optional
// notification bridge connection.
package monitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	bolt "go.etcd.io/bbolt"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/repository"
)

// slotLister is implemented by stores that can enumerate occupied slots.
type slotLister interface {
	Keys() ([]string, error)
}

// boltStatser is implemented by the bolt slot store.
type boltStatser interface {
	Stats() bolt.Stats
}

type Monitor struct {
	driver string
	store  repository.SlotStore
	redis  *redislib.Client
	clock  clock.Clock
	logger *zap.Logger

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New builds a monitor. redis may be nil when no bridge is configured.
func New(driver string, store repository.SlotStore, redis *redislib.Client, interval time.Duration, clk clock.Clock, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		driver:   driver,
		store:    store,
		redis:    redis,
		clock:    clk,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsHealthy reports whether every probed backend answered on the last check.
func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Storage && (m.status.Redis == nil || *m.status.Redis)
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Check probes the backends now and records the result.
func (m *Monitor) Check(ctx context.Context) Status {
	status := Status{Driver: m.driver, LastCheck: m.clock.Now()}
	if err := m.checkStorage(ctx); err != nil {
		status.Error = err.Error()
		m.logger.Warn("slot storage probe failed", zap.String("driver", m.driver), zap.Error(err))
	} else {
		status.Storage = true
		m.inspectStorage(&status)
	}
	if m.redis != nil {
		ok := m.checkRedis(ctx)
		status.Redis = &ok
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
	return status
}

func (m *Monitor) loop() {
	ticker := m.clock.Ticker(m.interval)
	defer ticker.Stop()

	m.Check(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Check(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// checkStorage pings remote backends and otherwise reads a slot.
func (m *Monitor) checkStorage(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if pinger, ok := m.store.(repository.Pinger); ok {
		return pinger.Ping(ctx)
	}
	var probe interface{}
	_, err := repository.LoadJSON(ctx, m.store, repository.SlotSession, &probe)
	return err
}

// inspectStorage adds backend details the store is able to report.
func (m *Monitor) inspectStorage(status *Status) {
	if lister, ok := m.store.(slotLister); ok {
		keys, err := lister.Keys()
		if err != nil {
			m.logger.Warn("slot listing failed", zap.String("driver", m.driver), zap.Error(err))
		} else {
			sort.Strings(keys)
			status.Slots = keys
		}
	}
	if statser, ok := m.store.(boltStatser); ok {
		stats := statser.Stats()
		status.Bolt = &BoltStats{
			FreePageN:    stats.FreePageN,
			PendingPageN: stats.PendingPageN,
			FreeAlloc:    stats.FreeAlloc,
			TxN:          stats.TxN,
			OpenTxN:      stats.OpenTxN,
		}
	}
}

func (m *Monitor) checkRedis(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.redis.Ping(ctx).Err() == nil
}
