// Package scheduler
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/kaitkan/kaitkan-api/app/services"
)

// CacheMonitor periodically pings the cache and logs availability changes.
// The storefront keeps serving from the database while the cache is down.
type CacheMonitor struct {
	cache    services.CacheService
	logger   *log.Logger
	interval time.Duration

	healthy bool
}

func NewCacheMonitor(cache services.CacheService, logger *log.Logger, interval time.Duration) *CacheMonitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CacheMonitor{
		cache:    cache,
		logger:   logger,
		interval: interval,
		healthy:  true,
	}
}

// Start launches the ping loop in a background goroutine and returns a stop function
func (m *CacheMonitor) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.check(ctx)
			}
		}
	}()

	return cancel
}

func (m *CacheMonitor) check(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, 5*time.Second)
	defer cancel()

	err := m.cache.Ping(ctx)
	switch {
	case err != nil && m.healthy:
		m.healthy = false
		m.logger.Printf("scheduler: cache unreachable, serving from database: %v", err)
	case err == nil && !m.healthy:
		m.healthy = true
		m.logger.Printf("scheduler: cache connection restored")
	}
}
