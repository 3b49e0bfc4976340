package tracer

import (
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/scene"
)

var (
	ErrNoWorkers         = errors.New("tracer: at least one worker is required")
	ErrMissingIntegrator = errors.New("tracer: no integrator specified")
)

// Pool configuration.
type PoolOptions struct {
	// Number of worker goroutines.
	NumWorkers int

	// Capacity of the request and result queues.
	QueueSize int

	// Base seed for the per-worker random number generators.
	Seed int64
}

// A pool of tracing workers that share a bounded request queue and a result
// queue. Each worker has its own control queue.
type Pool struct {
	logger log.Logger

	requests chan RenderRequest
	results  chan RenderResult
	errors   chan error
	closing  chan struct{}

	controls []*ControlQueue
	wg       sync.WaitGroup
	raysCast atomic.Uint64

	closeOnce sync.Once
}

// Spawn a new worker pool. All workers start with a copy of the supplied
// camera and epoch 0.
func NewPool(camera scene.Camera, integrator Integrator, opts PoolOptions) (*Pool, error) {
	if opts.NumWorkers < 1 {
		return nil, ErrNoWorkers
	}
	if integrator == nil {
		return nil, ErrMissingIntegrator
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 2 * opts.NumWorkers
	}

	p := &Pool{
		logger:   log.New("tracer"),
		requests: make(chan RenderRequest, opts.QueueSize),
		results:  make(chan RenderResult, opts.QueueSize),
		errors:   make(chan error, opts.NumWorkers),
		closing:  make(chan struct{}),
		controls: make([]*ControlQueue, opts.NumWorkers),
	}

	for id := 0; id < opts.NumWorkers; id++ {
		p.controls[id] = NewControlQueue()
		w := &worker{
			id:         id,
			logger:     p.logger,
			camera:     camera,
			integrator: integrator,
			rng:        rand.New(rand.NewSource(opts.Seed + int64(id))),
			control:    p.controls[id],
			requests:   p.requests,
			results:    p.results,
			closing:    p.closing,
			raysCast:   &p.raysCast,
		}

		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			if err := w.run(); err != nil {
				p.logger.Errorf("%v", err)
				select {
				case p.errors <- err:
				default:
				}
			}
		}()
	}

	p.logger.Debugf("started %d workers", opts.NumWorkers)
	return p, nil
}

// Get the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return len(p.controls)
}

// Get the request queue.
func (p *Pool) Requests() chan<- RenderRequest {
	return p.requests
}

// Get the result queue.
func (p *Pool) Results() <-chan RenderResult {
	return p.results
}

// Get a channel that receives the errors of failed workers.
func (p *Pool) Errors() <-chan error {
	return p.errors
}

// Get the total number of primary rays traced by all workers.
func (p *Pool) RaysCast() uint64 {
	return p.raysCast.Load()
}

// Queue control commands to every worker.
func (p *Pool) Broadcast(cmds ...Command) {
	for _, q := range p.controls {
		q.Push(cmds...)
	}
}

// Discard all queued requests without blocking.
func (p *Pool) FlushRequests() int {
	flushed := 0
	for {
		select {
		case <-p.requests:
			flushed++
		default:
			return flushed
		}
	}
}

// Stop all workers and wait for them to exit. Workers finish the request
// they are currently processing; results that can no longer be delivered are
// discarded. It is safe to call Close more than once.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.Broadcast(Command{Type: Shutdown})
		close(p.closing)
		p.wg.Wait()

		p.FlushRequests()
		for {
			select {
			case <-p.results:
			default:
				p.logger.Debugf("all workers stopped")
				return
			}
		}
	})
}
