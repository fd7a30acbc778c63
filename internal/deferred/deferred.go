package deferred

import (
	"sync/atomic"

	"github.com/kode4food/dana/pkg/api"
)

// Deferred is a transparent future over a zero-arg computation. The memo
// slot settles exactly once; every later access observes the same value or
// the same failure. Identity comparison of Deferred handles is not
// transparent to the wrapped value; callers compare resolved values instead
type Deferred struct {
	compute func() (any, error)
	state   atomic.Int32
	done    chan struct{}
	value   any
	err     error
	loc     api.Location
}

const (
	statePending int32 = iota
	stateRunning
	stateDone
)

// NewLazy creates a deferred that computes on first access
func NewLazy(compute func() (any, error), loc api.Location) *Deferred {
	return &Deferred{
		compute: compute,
		done:    make(chan struct{}),
		loc:     loc,
	}
}

// NewEager creates a deferred and submits its computation to the pool
// immediately. The returned handle blocks on first access until the pool
// worker (or a claiming forcer) settles it
func NewEager(
	compute func() (any, error), loc api.Location, pool *Pool,
) *Deferred {
	d := NewLazy(compute, loc)
	pool.Submit(d.Run)
	return d
}

// Run executes the computation if this goroutine wins the claim; a task
// whose computation was already claimed inline is a no-op
func (d *Deferred) Run() {
	if !d.claim() {
		return
	}
	d.settle(d.compute())
}

// Resolve blocks until the computation settles and returns its result. If
// the computation is still queued, the calling goroutine claims it and runs
// it inline rather than waiting on pool capacity; nested resolution never
// requests an additional pool slot. A captured failure is re-raised verbatim
// on every access
func (d *Deferred) Resolve() (any, error) {
	if d.claim() {
		d.settle(d.compute())
	} else {
		<-d.done
	}
	return d.value, d.err
}

// Resolved reports whether the memo slot has settled
func (d *Deferred) Resolved() bool {
	return d.state.Load() == stateDone
}

// Creation returns the source location of the creation site
func (d *Deferred) Creation() api.Location {
	return d.loc
}

func (d *Deferred) claim() bool {
	return d.state.CompareAndSwap(statePending, stateRunning)
}

func (d *Deferred) settle(value any, err error) {
	d.value = value
	d.err = err
	d.state.Store(stateDone)
	close(d.done)
}
