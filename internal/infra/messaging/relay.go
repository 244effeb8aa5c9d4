package messaging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gin-checkout-core/internal/pkg/clock"
	"gin-checkout-core/internal/pkg/config"
	"gin-checkout-core/internal/pkg/telemetry"
	"gin-checkout-core/internal/usecase/shared"

	"github.com/google/uuid"
)

// Relay drains the order event outbox into the publisher. A batch is leased in
// one unit of work, published with no transaction open, and marked in a
// second. A crash or failed publish leaves the lease to lapse and the batch is
// sent again, so consumers must dedupe on event_id.
type Relay struct {
	uow       shared.UnitOfWork
	publisher Publisher
	clock     clock.Clock
	metrics   *telemetry.Metrics
	interval  time.Duration
	batchSize int
	lease     time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRelay(uow shared.UnitOfWork, publisher Publisher, clk clock.Clock, metrics *telemetry.Metrics, cfg config.KafkaConfig) *Relay {
	interval := cfg.OutboxPollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	batchSize := cfg.OutboxBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	lease := cfg.OutboxClaimLease
	if lease <= 0 {
		lease = 30 * time.Second
	}
	return &Relay{
		uow:       uow,
		publisher: publisher,
		clock:     clk,
		metrics:   metrics,
		interval:  interval,
		batchSize: batchSize,
		lease:     lease,
	}
}

// RunOnce publishes at most one batch and reports how many events went out.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	events, err := r.claim(ctx)
	if err != nil || len(events) == 0 {
		return 0, err
	}

	if err := r.publisher.Publish(ctx, events); err != nil {
		r.metrics.OutboxPublished.WithLabelValues("error").Add(float64(len(events)))
		return 0, err
	}

	ids := make([]uuid.UUID, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Outbox().MarkPublished(ctx, ids, r.clock.Now())
	})
	if err != nil {
		return 0, err
	}

	r.metrics.OutboxPublished.WithLabelValues("published").Add(float64(len(events)))
	return len(events), nil
}

func (r *Relay) claim(ctx context.Context) ([]shared.OrderEvent, error) {
	var events []shared.OrderEvent
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := r.clock.Now()
		var err error
		events, err = tx.Outbox().ClaimBatch(ctx, r.batchSize, now, now.Add(r.lease))
		return err
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *Relay) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(context.WithoutCancel(ctx))
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(ctx)
	}()
	slog.Info("outbox relay started", "interval", r.interval.String(), "batch_size", r.batchSize, "lease", r.lease.String())
}

func (r *Relay) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.wg.Wait()
	slog.Info("outbox relay stopped")
}

func (r *Relay) run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		// drain the backlog before waiting for the next tick
		for {
			n, err := r.RunOnce(ctx)
			if err != nil {
				if ctx.Err() == nil {
					slog.Warn("outbox relay batch failed", "error", err.Error())
				}
				break
			}
			if n < r.batchSize {
				break
			}
		}
	}
}
