package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/siftlabs/sift/pkg/events"
	"github.com/siftlabs/sift/pkg/log"
	"github.com/siftlabs/sift/pkg/metrics"
)

const (
	// processTimeout bounds a single entry against a wedged
	// dependency.
	processTimeout = 30 * time.Second

	// ackTimeout bounds the acknowledgement round trip.
	ackTimeout = 5 * time.Second

	// iterationYield is the pause between loop iterations, keeping
	// a drained stream from busy polling.
	iterationYield = 100 * time.Millisecond
)

// Config holds pool tuning.
type Config struct {
	// Consumers are the consumer identities run by this process.
	// All share one consumer group, so entries are spread across
	// them.
	Consumers []string

	// MaxConcurrent bounds in-flight entries across all consumers.
	MaxConcurrent int64
}

// Pool consumes the lead event log and drives triage. Each consumer
// identity runs its own loop: reclaim idle entries, read new ones,
// process them under the shared concurrency limit, acknowledge
// successes.
type Pool struct {
	log       *events.Log
	processor *Processor
	cfg       Config
	sem       *semaphore.Weighted
}

// NewPool creates a pool over an event log and a processor.
func NewPool(eventLog *events.Log, processor *Processor, cfg Config) *Pool {
	return &Pool{
		log:       eventLog,
		processor: processor,
		cfg:       cfg,
		sem:       semaphore.NewWeighted(cfg.MaxConcurrent),
	}
}

// Run blocks until ctx is cancelled. Cancellation stops new reads
// immediately; entries already dispatched run to completion before
// Run returns.
func (p *Pool) Run(ctx context.Context) error {
	if err := p.log.EnsureGroup(ctx); err != nil {
		return err
	}

	var wg sync.WaitGroup
	for _, name := range p.cfg.Consumers {
		wg.Add(1)
		go func(consumer string) {
			defer wg.Done()
			p.consume(ctx, consumer)
		}(name)
	}
	wg.Wait()
	return nil
}

// consume is one consumer's loop. Iteration errors back off
// exponentially and reset on the first clean pass, so a Redis blip
// does not turn into a tight error loop.
func (p *Pool) consume(ctx context.Context, consumer string) {
	logger := log.WithConsumer(consumer)
	logger.Info().Str("stream", p.log.Stream()).Msg("consumer started")

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = 500 * time.Millisecond
	retry.MaxInterval = 5 * time.Second
	retry.MaxElapsedTime = 0

	for {
		if ctx.Err() != nil {
			logger.Info().Msg("consumer stopped")
			return
		}

		if err := p.iterate(ctx, consumer, logger); err != nil {
			if ctx.Err() != nil {
				logger.Info().Msg("consumer stopped")
				return
			}
			wait := retry.NextBackOff()
			logger.Error().Err(err).Dur("backoff", wait).Msg("iteration failed")
			select {
			case <-time.After(wait):
			case <-ctx.Done():
			}
			continue
		}
		retry.Reset()

		select {
		case <-time.After(iterationYield):
		case <-ctx.Done():
		}
	}
}

// iterate runs one pass: reclaim abandoned entries, then read and
// process a fresh batch.
func (p *Pool) iterate(ctx context.Context, consumer string, logger zerolog.Logger) error {
	if err := p.reclaim(ctx, consumer, logger); err != nil {
		return err
	}

	msgs, err := p.log.Read(ctx, consumer)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	metrics.EventsConsumedTotal.WithLabelValues(consumer).Add(float64(len(msgs)))

	acks := p.dispatch(ctx, consumer, msgs, logger)
	return p.ack(ctx, acks)
}

// reclaim takes over entries whose consumer stopped acknowledging.
// Entries past the delivery bound go to the dead letter stream; the
// rest are processed as a normal batch.
func (p *Pool) reclaim(ctx context.Context, consumer string, logger zerolog.Logger) error {
	msgs, err := p.log.ClaimIdle(ctx, consumer)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	metrics.EventsReclaimedTotal.WithLabelValues(consumer).Add(float64(len(msgs)))

	ids := make([]string, len(msgs))
	for i, msg := range msgs {
		ids[i] = msg.ID
	}
	counts, err := p.log.DeliveryCounts(ctx, consumer, ids)
	if err != nil {
		return err
	}

	acks := make([]string, 0, len(msgs))
	retry := make([]events.Message, 0, len(msgs))
	for _, msg := range msgs {
		if counts[msg.ID] <= p.log.MaxDeliveries() {
			retry = append(retry, msg)
			continue
		}

		logger.Error().
			Str("entry_id", msg.ID).
			Int64("deliveries", counts[msg.ID]).
			Msg("delivery bound exceeded, dead lettering")
		if err := p.log.DeadLetter(ctx, msg, "delivery bound exceeded"); err != nil {
			logger.Error().Err(err).Str("entry_id", msg.ID).Msg("failed to dead letter entry")
			continue
		}
		metrics.DeadLettersTotal.Inc()
		acks = append(acks, msg.ID)
	}

	if len(retry) > 0 {
		acks = append(acks, p.dispatch(ctx, consumer, retry, logger)...)
	}
	return p.ack(ctx, acks)
}

// dispatch processes a batch under the shared concurrency limit and
// returns the entry IDs that are safe to acknowledge. Entries run on
// a context detached from cancellation so shutdown lets in-flight
// work finish.
func (p *Pool) dispatch(ctx context.Context, consumer string, msgs []events.Message, logger zerolog.Logger) []string {
	procCtx := context.WithoutCancel(ctx)

	var (
		mu   sync.Mutex
		acks = make([]string, 0, len(msgs))
		wg   sync.WaitGroup
	)

	for _, msg := range msgs {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			// Shutting down; the rest of the batch stays pending
			// and is reclaimed later.
			break
		}

		wg.Add(1)
		go func(msg events.Message) {
			defer wg.Done()
			defer p.sem.Release(1)

			msgCtx, cancel := context.WithTimeout(procCtx, processTimeout)
			defer cancel()

			if p.handle(msgCtx, msg, logger) {
				mu.Lock()
				acks = append(acks, msg.ID)
				mu.Unlock()
			}
		}(msg)
	}

	wg.Wait()
	return acks
}

// handle processes one entry and reports whether to acknowledge it.
func (p *Pool) handle(ctx context.Context, msg events.Message, logger zerolog.Logger) bool {
	err := p.processor.Process(ctx, msg)
	if err == nil {
		return true
	}

	if errors.Is(err, ErrPermanent) {
		logger.Error().Err(err).Str("entry_id", msg.ID).Msg("dead lettering unprocessable entry")
		if dlErr := p.log.DeadLetter(ctx, msg, err.Error()); dlErr != nil {
			logger.Error().Err(dlErr).Str("entry_id", msg.ID).Msg("failed to dead letter entry")
			return false
		}
		metrics.DeadLettersTotal.Inc()
		return true
	}

	logger.Warn().Err(err).Str("entry_id", msg.ID).Msg("triage failed, leaving entry pending")
	return false
}

func (p *Pool) ack(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ackTimeout)
	defer cancel()
	return p.log.Ack(ackCtx, ids...)
}
