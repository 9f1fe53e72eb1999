// Package scheduler executes a plan's records on a bounded worker pool.
package scheduler

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"go.trai.ch/fab/internal/core/domain"
	"go.trai.ch/fab/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Options configures one scheduler run.
type Options struct {
	// Parallelism bounds the worker pool; zero or negative means the number
	// of available CPUs.
	Parallelism int

	// FailFast cancels the whole run on the first failure instead of letting
	// independent branches finish.
	FailFast bool

	// MaxRetries is the number of re-attempts for tool execution failures.
	// Structural and verification failures are never retried.
	MaxRetries int

	// RetryBaseDelay is the first backoff delay; it doubles per attempt.
	// Defaults to 100ms.
	RetryBaseDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.NumCPU()
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = 100 * time.Millisecond
	}
	return o
}

// Scheduler drives records through Pending → Ready → Running →
// {Succeeded, Failed}. A record enters Running only after every dependency
// succeeded; concurrent identical fingerprints collapse into one execution.
type Scheduler struct {
	executor ports.Executor
	hasher   ports.Hasher
	verifier ports.OutputVerifier
	tracer   ports.Tracer
	logger   ports.Logger

	flight singleflight.Group

	mu     sync.RWMutex
	status map[domain.RecordKey]domain.RecordStatus
}

// NewScheduler creates a new Scheduler.
func NewScheduler(
	executor ports.Executor,
	hasher ports.Hasher,
	verifier ports.OutputVerifier,
	tracer ports.Tracer,
	logger ports.Logger,
) *Scheduler {
	return &Scheduler{
		executor: executor,
		hasher:   hasher,
		verifier: verifier,
		tracer:   tracer,
		logger:   logger,
		status:   make(map[domain.RecordKey]domain.RecordStatus),
	}
}

// Status returns the last observed status of a record.
func (s *Scheduler) Status(key domain.RecordKey) domain.RecordStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status[key]
}

func (s *Scheduler) setStatus(key domain.RecordKey, status domain.RecordStatus) {
	s.mu.Lock()
	s.status[key] = status
	s.mu.Unlock()
}

// Run executes every record of the plan at most once, honoring the
// dependency order and the worker pool bound. The store caches results
// across runs.
func (s *Scheduler) Run(ctx context.Context, plan *domain.Plan, store ports.CacheStore, opts Options) error {
	opts = opts.withDefaults()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	state := s.newRunState(ctx, cancel, plan, store, opts)

	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}
		if state.ctx.Err() != nil && state.active == 0 {
			break
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-state.ctx.Done():
		}
	}

	errs := state.errs
	if ctx.Err() != nil {
		errs = errors.Join(errs, ctx.Err())
	}
	if errs != nil {
		return errors.Join(domain.ErrExecutionFailed, errs)
	}
	return nil
}

type result struct {
	key domain.RecordKey
	err error
}

type runState struct {
	s         *Scheduler
	ctx       context.Context
	cancel    context.CancelFunc
	plan      *domain.Plan
	store     ports.CacheStore
	opts      Options
	records   map[domain.RecordKey]*domain.ExecutionRecord
	inDegree  map[domain.RecordKey]int
	ready     []domain.RecordKey
	active    int
	resultsCh chan result
	errs      error
}

func (s *Scheduler) newRunState(
	ctx context.Context,
	cancel context.CancelFunc,
	plan *domain.Plan,
	store ports.CacheStore,
	opts Options,
) *runState {
	state := &runState{
		s:         s,
		ctx:       ctx,
		cancel:    cancel,
		plan:      plan,
		store:     store,
		opts:      opts,
		records:   make(map[domain.RecordKey]*domain.ExecutionRecord, plan.Len()),
		inDegree:  make(map[domain.RecordKey]int, plan.Len()),
		resultsCh: make(chan result, opts.Parallelism),
	}

	for rec := range plan.Walk() {
		state.records[rec.Key] = rec
		state.inDegree[rec.Key] = len(rec.Deps)
		rec.Status = domain.StatusPending
		s.setStatus(rec.Key, domain.StatusPending)
	}
	for key, degree := range state.inDegree {
		if degree == 0 {
			state.markReady(key)
		}
	}
	return state
}

func (state *runState) markReady(key domain.RecordKey) {
	state.ready = append(state.ready, key)
	state.records[key].Status = domain.StatusReady
	state.s.setStatus(key, domain.StatusReady)
}

func (state *runState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *runState) schedule() {
	for len(state.ready) > 0 && state.active < state.opts.Parallelism && state.ctx.Err() == nil {
		key := state.ready[0]
		state.ready = state.ready[1:]

		rec := state.records[key]
		rec.Status = domain.StatusRunning
		state.s.setStatus(key, domain.StatusRunning)
		state.active++

		go func(rec *domain.ExecutionRecord) {
			state.resultsCh <- result{key: rec.Key, err: state.s.executeRecord(state.ctx, rec, state.store, state.opts)}
		}(rec)
	}
}

func (state *runState) handleResult(res result) {
	state.active--
	rec := state.records[res.key]

	if res.err != nil {
		rec.Status = domain.StatusFailed
		rec.Err = res.err
		state.s.setStatus(res.key, domain.StatusFailed)
		state.errs = errors.Join(state.errs,
			zerr.With(zerr.Wrap(res.err, "record execution failed"), "record", res.key.String()))
		state.blockDependents(res.key)
		if state.opts.FailFast {
			state.cancel()
		}
		return
	}

	rec.Status = domain.StatusSucceeded
	state.s.setStatus(res.key, domain.StatusSucceeded)
	for _, dep := range state.plan.Dependents(res.key) {
		state.inDegree[dep]--
		if state.inDegree[dep] == 0 {
			state.markReady(dep)
		}
	}
}

// blockDependents fails every transitive dependent of a failed record without
// executing it. Independent branches keep running.
func (state *runState) blockDependents(key domain.RecordKey) {
	queue := append([]domain.RecordKey(nil), state.plan.Dependents(key)...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		rec := state.records[next]
		if rec.Status == domain.StatusFailed {
			continue
		}
		rec.Status = domain.StatusFailed
		rec.Err = zerr.With(domain.ErrBlocked, "blocked_on", key.String())
		state.s.setStatus(next, domain.StatusFailed)
		queue = append(queue, state.plan.Dependents(next)...)
	}
}
