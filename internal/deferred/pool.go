package deferred

import (
	"sync"
	"sync/atomic"

	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/topic"
)

type (
	// Pool runs eager deferred computations on a fixed set of workers fed
	// from a caravan topic. It is constructor-injected into the sandbox so
	// independent sandboxes never share capacity. Once submitted, a task
	// runs to completion or failure; there is no cancellation at this layer
	Pool struct {
		prod        topic.Producer[Task]
		cons        topic.Consumer[Task]
		stop        chan struct{}
		workers     int
		wg          sync.WaitGroup
		startOnce   sync.Once
		stopOnce    sync.Once
		cleanupOnce sync.Once
		submitted   atomic.Int64
	}

	// Task is a unit of work submitted to the pool
	Task func()
)

// NewPool creates a worker pool with the provided fixed size
func NewPool(workers int) *Pool {
	queue := caravan.NewTopic[Task]()
	return &Pool{
		prod:    queue.NewProducer(),
		cons:    queue.NewConsumer(),
		stop:    make(chan struct{}),
		workers: workers,
	}
}

// Start launches the pool workers
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for range p.workers {
			p.wg.Go(p.work)
		}
	})
}

// Submit hands a task to the pool. The forcing path may have claimed and
// completed the computation by the time a worker dequeues it; claimed tasks
// are no-ops when run again
func (p *Pool) Submit(task Task) {
	p.submitted.Add(1)
	p.prod.Send() <- task
}

// Submitted reports how many tasks have been handed to the pool since
// creation
func (p *Pool) Submitted() int64 {
	return p.submitted.Load()
}

// Size reports the fixed worker count
func (p *Pool) Size() int {
	return p.workers
}

// Close stops the workers after in-flight tasks finish
func (p *Pool) Close() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	p.wg.Wait()
	p.cleanupOnce.Do(func() {
		p.prod.Close()
		p.cons.Close()
	})
}

func (p *Pool) work() {
	for {
		select {
		case <-p.stop:
			return
		case task, ok := <-p.cons.Receive():
			if !ok {
				return
			}
			task()
		}
	}
}
