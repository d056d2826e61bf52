package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/mintbay/marketplace/internal/adapter"
	"github.com/mintbay/marketplace/internal/domain"
	"github.com/mintbay/marketplace/internal/logger"
	"github.com/mintbay/marketplace/internal/store"
)

// OrderExpirySweeperConfig holds configuration for the order expiry sweeper
type OrderExpirySweeperConfig struct {
	OrderTTL       time.Duration // Pending orders older than this are expired
	BatchSize      int           // Orders to expire per cycle
	WorkerPoolSize int           // Concurrent workers
	SweepInterval  time.Duration // Time to sleep between sweep cycles
}

// orderExpirySweeper fails PENDING orders whose TTL has elapsed, releasing
// their listing reservations so the NFT can be sold to someone else
type orderExpirySweeper struct {
	config    *OrderExpirySweeperConfig
	store     store.Store
	pool      pond.Pool
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewOrderExpirySweeper creates a new order expiry sweeper
func NewOrderExpirySweeper(
	config *OrderExpirySweeperConfig,
	st store.Store,
	clock adapter.Clock,
) Sweeper {
	return &orderExpirySweeper{
		config:    config,
		store:     st,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *orderExpirySweeper) Name() string {
	return "order-expiry-sweeper"
}

// Start begins the sweeper's main loop
func (s *orderExpirySweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh) // Signal that we've stopped
	}()

	logger.InfoCtx(ctx, "Starting order expiry sweeper",
		zap.Duration("order_ttl", s.config.OrderTTL),
		zap.Int("batch_size", s.config.BatchSize),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
		zap.Duration("sweep_interval", s.config.SweepInterval),
	)

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Order expiry sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Order expiry sweeper stop requested")
			return nil
		default:
			if err := s.runSweepCycle(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.ErrorCtx(ctx, err)
				}
			}
			if !s.sleep(ctx, s.config.SweepInterval) {
				return nil // Context canceled during sleep
			}
		}
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *orderExpirySweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	logger.InfoCtx(ctx, "Stopping order expiry sweeper")

	// Signal stop to the main loop
	close(s.stopChan)

	// Wait for main loop to exit, but respect context cancellation
	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Order expiry sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Order expiry sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runSweepCycle expires one batch of stale orders
func (s *orderExpirySweeper) runSweepCycle(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-s.config.OrderTTL)

	staleIDs, err := s.store.ListStaleOrderIDs(ctx, cutoff, s.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list stale orders: %w", err)
	}
	if len(staleIDs) == 0 {
		return nil
	}

	logger.InfoCtx(ctx, "Found stale orders to expire",
		zap.Int("count", len(staleIDs)),
		zap.Time("cutoff", cutoff),
	)

	var expiredCount, skippedCount atomic.Int32

	// Fresh pool per cycle: StopAndWait below is terminal for a pond pool
	s.pool = pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(s.config.BatchSize),
		pond.WithContext(ctx),
	)

	for _, id := range staleIDs {
		s.pool.Submit(func() {
			_, err := s.store.FailOrder(ctx, id, store.FailureReasonExpired)
			if err != nil {
				// A concurrent confirmation may have resolved the order already
				if errors.Is(err, domain.ErrInvalidState) || errors.Is(err, domain.ErrNotFound) {
					skippedCount.Add(1)
					return
				}
				logger.ErrorCtx(ctx, err, zap.Int64("order_id", id))
				return
			}
			expiredCount.Add(1)
		})
	}

	s.pool.StopAndWait()

	logger.InfoCtx(ctx, "Sweep cycle completed",
		zap.Int32("expired", expiredCount.Load()),
		zap.Int32("skipped", skippedCount.Load()),
	)

	return nil
}

// sleep waits for the given duration, returning false if interrupted
func (s *orderExpirySweeper) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	case <-s.stopChan:
		return false
	}
}
