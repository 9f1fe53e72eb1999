package scheduler

import (
	"context"
	"errors"
	"time"

	"go.trai.ch/fab/internal/core/domain"
	"go.trai.ch/fab/internal/core/ports"
	"go.trai.ch/zerr"
)

// executeRecord satisfies one record: fingerprint, cache lookup, and on a
// miss the actual tool invocation followed by output verification and a cache
// put. Identical in-flight fingerprints are coalesced; only one execution
// happens and the rest materialize its entry.
func (s *Scheduler) executeRecord(ctx context.Context, rec *domain.ExecutionRecord, store ports.CacheStore, opts Options) error {
	_, span := s.tracer.Start(ctx, rec.Key.String())
	defer span.End()

	inv := rec.Invocation
	inv.Stdout = span
	inv.Stderr = span

	fingerprint, err := s.hasher.ComputeFingerprint(&inv, rec.InputPaths, rec.Key.Tag)
	if err != nil {
		span.RecordError(err)
		return err
	}
	rec.Fingerprint = fingerprint

	v, err, shared := s.flight.Do(fingerprint, func() (any, error) {
		return s.satisfy(ctx, rec, &inv, store, opts)
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	entry, _ := v.(*domain.CacheEntry)
	if shared && entry != nil {
		// Another worker computed this fingerprint; just replay its outputs.
		if err := store.Materialize(entry); err != nil {
			span.RecordError(err)
			return err
		}
		rec.FromCache = true
	}
	if rec.FromCache {
		span.Cached()
	}
	return nil
}

// satisfy resolves a fingerprint to a cache entry, executing the tool when
// the cache has nothing.
func (s *Scheduler) satisfy(ctx context.Context, rec *domain.ExecutionRecord, inv *domain.Invocation, store ports.CacheStore, opts Options) (*domain.CacheEntry, error) {
	entry, err := store.Get(rec.Fingerprint)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		if err := store.Materialize(entry); err != nil {
			return nil, err
		}
		rec.FromCache = true
		return entry, nil
	}

	if err := s.executeWithRetry(ctx, inv, opts); err != nil {
		return nil, err
	}
	if err := s.verifier.VerifyOutputs(rec.Outputs); err != nil {
		return nil, err
	}
	return store.Put(rec.Fingerprint, rec.Key.String(), rec.Outputs)
}

// executeWithRetry retries tool execution failures with exponential backoff.
// Anything else fails immediately.
func (s *Scheduler) executeWithRetry(ctx context.Context, inv *domain.Invocation, opts Options) error {
	delay := opts.RetryBaseDelay

	var err error
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}

		err = s.executor.Execute(ctx, inv)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrToolExecution) || ctx.Err() != nil {
			return err
		}
		if attempt < opts.MaxRetries && s.logger != nil {
			s.logger.Warn("tool execution failed, retrying: " + err.Error())
		}
	}
	return zerr.With(zerr.Wrap(err, "retries exhausted"), "attempts", opts.MaxRetries+1)
}
