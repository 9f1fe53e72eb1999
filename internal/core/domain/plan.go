// Package domain contains the core model of the action planner: declared
// actions, configuration tags, and the deduplicated execution plan.
package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Plan is the validated DAG of execution records for one build request.
// It holds exactly one record per distinct (action, configuration tag) pair.
type Plan struct {
	records    map[RecordKey]*ExecutionRecord
	targets    []RecordKey
	order      []RecordKey
	dependents map[RecordKey][]RecordKey
}

// NewPlan creates an empty Plan.
func NewPlan() *Plan {
	return &Plan{
		records: make(map[RecordKey]*ExecutionRecord),
	}
}

// Add inserts a record. A second record for the same key is rejected; the
// planner must reuse the existing one instead.
func (p *Plan) Add(rec *ExecutionRecord) error {
	if _, exists := p.records[rec.Key]; exists {
		return zerr.With(zerr.Wrap(ErrActionExists, "duplicate execution record"), "record", rec.Key.String())
	}
	p.records[rec.Key] = rec
	return nil
}

// Record returns the record for the given key, if present.
func (p *Plan) Record(key RecordKey) (*ExecutionRecord, bool) {
	rec, ok := p.records[key]
	return rec, ok
}

// AddTarget marks a record as an explicitly requested top-level target.
func (p *Plan) AddTarget(key RecordKey) {
	if !slices.Contains(p.targets, key) {
		p.targets = append(p.targets, key)
	}
}

// Targets returns the requested top-level record keys.
func (p *Plan) Targets() []RecordKey {
	return p.targets
}

// Len returns the number of distinct execution records.
func (p *Plan) Len() int {
	return len(p.records)
}

// Validate checks the record graph for cycles and computes a topological
// execution order plus the reverse (dependents) index. The traversal is an
// explicit iterative DFS over index-based state slices; deep generated graphs
// must not exhaust the goroutine stack.
func (p *Plan) Validate() error {
	keys := make([]RecordKey, 0, len(p.records))
	for key := range p.records {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b RecordKey) int {
		return strings.Compare(a.String(), b.String())
	})

	index := make(map[RecordKey]int, len(keys))
	for i, key := range keys {
		index[key] = i
	}

	const (
		unvisited = iota
		onStack
		done
	)
	state := make([]uint8, len(keys))

	p.order = make([]RecordKey, 0, len(keys))
	p.dependents = make(map[RecordKey][]RecordKey, len(keys))

	for start := range keys {
		if state[start] != unvisited {
			continue
		}
		stack := []dfsFrame{{idx: start}}
		state[start] = onStack

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			rec := p.records[keys[top.idx]]

			if top.next < len(rec.Deps) {
				dep := rec.Deps[top.next]
				top.next++

				j, ok := index[dep]
				if !ok {
					unknown := zerr.With(zerr.Wrap(ErrActionNotFound, "plan references unknown record"), "record", rec.Key.String())
					return zerr.With(unknown, "dependency", dep.String())
				}
				switch state[j] {
				case unvisited:
					state[j] = onStack
					stack = append(stack, dfsFrame{idx: j})
				case onStack:
					return p.cycleError(keys, stack, j)
				}
				continue
			}

			state[top.idx] = done
			p.order = append(p.order, keys[top.idx])
			stack = stack[:len(stack)-1]
		}
	}

	for _, key := range keys {
		for _, dep := range p.records[key].Deps {
			p.dependents[dep] = append(p.dependents[dep], key)
		}
	}

	return nil
}

// dfsFrame is one entry of the explicit DFS stack used by Validate.
type dfsFrame struct {
	idx  int
	next int
}

// cycleError reconstructs the cycle path from the DFS stack, starting at the
// frame that first entered the cycle.
func (p *Plan) cycleError(keys []RecordKey, stack []dfsFrame, entry int) error {
	start := 0
	for i, f := range stack {
		if f.idx == entry {
			start = i
			break
		}
	}

	members := make([]string, 0, len(stack)-start)
	var path strings.Builder
	for i := start; i < len(stack); i++ {
		key := keys[stack[i].idx]
		members = append(members, key.Action.String())
		path.WriteString(key.String())
		path.WriteString(" -> ")
	}
	path.WriteString(keys[entry].String())

	return zerr.With(zerr.With(ErrCycleDetected, "actions", strings.Join(members, ",")), "cycle", path.String())
}

// Walk yields records in topological order (dependencies first). Validate
// must have succeeded.
func (p *Plan) Walk() iter.Seq[*ExecutionRecord] {
	return func(yield func(*ExecutionRecord) bool) {
		for _, key := range p.order {
			if !yield(p.records[key]) {
				return
			}
		}
	}
}

// Dependents returns the keys of records that directly depend on key.
func (p *Plan) Dependents(key RecordKey) []RecordKey {
	return p.dependents[key]
}
