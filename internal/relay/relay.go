// Package relay drains the plugin's location stream into batches and publishes
// them to a sink.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/background-geolocation/internal/domain"
	"github.com/couchcryptid/background-geolocation/internal/observability"
	"github.com/couchcryptid/background-geolocation/internal/stream"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second

	// finalFlushTimeout bounds the flush of the pending batch on shutdown.
	finalFlushTimeout = 5 * time.Second
)

// LocationSource provides the location event stream.
type LocationSource interface {
	EventLocation() *stream.Observable[domain.Location]
}

// Enricher turns a raw fix into a publishable record.
type Enricher interface {
	Enrich(ctx context.Context, loc domain.Location) domain.LocationRecord
}

// BatchLoader writes multiple records to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, records []domain.LocationRecord) error
}

// Relay orchestrates the subscribe-enrich-publish loop.
type Relay struct {
	source        LocationSource
	enricher      Enricher
	loader        BatchLoader
	logger        *slog.Logger
	metrics       *observability.Metrics
	ready         atomic.Bool
	batchSize     int
	flushInterval time.Duration
}

// New creates a Relay. A batch is published once it holds batchSize
// records or on the next flushInterval tick, whichever comes first.
func New(source LocationSource, enricher Enricher, loader BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, flushInterval time.Duration) *Relay {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Relay{
		source:        source,
		enricher:      enricher,
		loader:        loader,
		logger:        logger,
		metrics:       metrics,
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// CheckReadiness returns nil once the relay has published at least one batch.
func (r *Relay) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("relay has not published any locations yet")
	}
	return nil
}

// Run consumes the location stream until ctx is cancelled or the stream
// terminates. The pending batch is flushed before Run returns. A stream error
// is returned; cancellation is not an error.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("relay started", "batch_size", r.batchSize, "flush_interval", r.flushInterval)
	r.metrics.RelayRunning.Set(1)
	defer r.metrics.RelayRunning.Set(0)

	sub := r.source.EventLocation().Subscribe(ctx)
	defer sub.Unsubscribe()

	var tick <-chan time.Time
	if r.flushInterval > 0 {
		ticker := time.NewTicker(r.flushInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	batch := make([]domain.LocationRecord, 0, r.batchSize)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("relay stopping", "reason", ctx.Err())
			r.finalFlush(ctx, batch)
			return nil

		case loc, ok := <-sub.Values():
			if !ok {
				r.finalFlush(ctx, batch)
				if err := sub.Err(); err != nil {
					return fmt.Errorf("location stream: %w", err)
				}
				if ctx.Err() == nil {
					r.logger.Info("location stream completed")
				}
				return nil
			}
			r.metrics.LocationsReceived.Inc()
			batch = append(batch, r.enricher.Enrich(ctx, loc))
			if len(batch) >= r.batchSize && r.flush(ctx, batch) {
				batch = make([]domain.LocationRecord, 0, r.batchSize)
			}

		case <-tick:
			if len(batch) > 0 && r.flush(ctx, batch) {
				batch = make([]domain.LocationRecord, 0, r.batchSize)
			}
		}
	}
}

// finalFlush publishes what is left using a context that outlives ctx.
func (r *Relay) finalFlush(ctx context.Context, batch []domain.LocationRecord) {
	if len(batch) == 0 {
		return
	}
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalFlushTimeout)
	defer cancel()
	if !r.flush(flushCtx, batch) {
		r.logger.Warn("dropping unpublished locations", "batch_size", len(batch), "reason", flushCtx.Err())
	}
}

// flush loads batch, retrying with exponential backoff until it succeeds or
// ctx ends. It returns false if ctx ended first; the batch is then kept for
// the final flush.
func (r *Relay) flush(ctx context.Context, batch []domain.LocationRecord) bool {
	backoff := initialBackoff
	for {
		start := time.Now()
		err := r.loader.LoadBatch(ctx, batch)
		if err == nil {
			r.metrics.BatchSize.Observe(float64(len(batch)))
			r.metrics.BatchLoadDuration.Observe(time.Since(start).Seconds())
			r.metrics.LocationsPublished.Add(float64(len(batch)))
			r.ready.Store(true)
			return true
		}

		r.metrics.PublishErrors.Inc()
		r.logger.Error("load batch failed", "error", err, "batch_size", len(batch))
		if !sleepWithContext(ctx, backoff) {
			return false
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
