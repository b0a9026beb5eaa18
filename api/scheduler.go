/*
scheduler.go - Run retention sweeper

PURPOSE:
  Periodically deletes stored runs older than the retention window so the
  run history stays bounded.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Sweeps once immediately on start
  - A retention of zero disables the sweeper

USAGE:
  sweeper := NewRetentionSweeper(store, 720*time.Hour, logger)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - payroll/store.go: RunStore.DeleteRunsBefore
  - config/config.go: RUN_RETENTION, SWEEP_INTERVAL
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/attendance-engine/payroll"
)

// RetentionSweeper deletes runs older than Retention every Interval.
type RetentionSweeper struct {
	Store     payroll.RunStore
	Retention time.Duration
	Interval  time.Duration
	Logger    *slog.Logger

	now    func() time.Time
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRetentionSweeper creates a sweeper with a one hour interval.
func NewRetentionSweeper(store payroll.RunStore, retention time.Duration, logger *slog.Logger) *RetentionSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetentionSweeper{
		Store:     store,
		Retention: retention,
		Interval:  time.Hour,
		Logger:    logger,
		now:       time.Now,
	}
}

// Start begins sweeping. Calling Start on a running sweeper does nothing.
func (rs *RetentionSweeper) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.Retention <= 0 {
		rs.Logger.Info("retention sweeper disabled")
		return
	}
	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.Interval)
	rs.stop = make(chan struct{})
	rs.wg.Add(1)
	go rs.run(rs.ticker, rs.stop)

	rs.Logger.Info("retention sweeper started",
		slog.Duration("retention", rs.Retention),
		slog.Duration("interval", rs.Interval))
}

// Stop stops the sweeper and waits for an in-flight sweep.
func (rs *RetentionSweeper) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker == nil {
		return
	}
	rs.ticker.Stop()
	close(rs.stop)
	rs.wg.Wait()
	rs.ticker = nil
	rs.Logger.Info("retention sweeper stopped")
}

func (rs *RetentionSweeper) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer rs.wg.Done()

	rs.Sweep(context.Background())
	for {
		select {
		case <-ticker.C:
			rs.Sweep(context.Background())
		case <-stop:
			return
		}
	}
}

// Sweep deletes expired runs once and reports how many went.
func (rs *RetentionSweeper) Sweep(ctx context.Context) int {
	cutoff := rs.now().Add(-rs.Retention)
	n, err := rs.Store.DeleteRunsBefore(ctx, cutoff)
	if err != nil {
		rs.Logger.ErrorContext(ctx, "retention sweep failed", slog.Any("error", err))
		return 0
	}
	if n > 0 {
		rs.Logger.InfoContext(ctx, "expired runs deleted", slog.Int("count", n), slog.Time("cutoff", cutoff))
	}
	return n
}
