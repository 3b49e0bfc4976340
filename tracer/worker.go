package tracer

import (
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/sampling"
	"github.com/achilleasa/lumen/scene"
)

// A worker owns a private camera copy and epoch and processes render
// requests from a shared queue.
type worker struct {
	id     int
	logger log.Logger

	camera     scene.Camera
	epoch      uint64
	integrator Integrator
	rng        *rand.Rand

	control  *ControlQueue
	requests <-chan RenderRequest
	results  chan<- RenderResult
	closing  <-chan struct{}

	raysCast *atomic.Uint64
}

// Run the worker loop until a Shutdown command is received, the request
// queue is closed or the pool starts shutting down while the worker waits to
// deliver a result. Panics raised while tracing are converted to errors.
func (w *worker) run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker %d: panic while tracing: %v", w.id, r)
		}
	}()

	for {
		select {
		case <-w.control.Notify():
			if w.applyControl() {
				return nil
			}
		case req, ok := <-w.requests:
			if !ok {
				return nil
			}

			// Control commands always take effect before the next
			// request so a reposition is never raced by stale work.
			if w.applyControl() {
				return nil
			}

			if req.Epoch != w.epoch {
				continue
			}

			if !w.process(&req) {
				return nil
			}
		}
	}
}

// Apply all pending control commands in order. Returns true if the worker
// should exit.
func (w *worker) applyControl() bool {
	for _, cmd := range w.control.Drain() {
		switch cmd.Type {
		case SetEpoch:
			w.epoch = cmd.Epoch
		case RepositionCamera:
			w.camera = w.camera.WithLocation(cmd.Location)
		case ReorientCamera:
			w.camera = w.camera.WithOrientation(cmd.Orientation)
		case ReplaceCamera:
			w.camera = cmd.Camera
		case Shutdown:
			w.logger.Debugf("worker %d: shutting down", w.id)
			return true
		}
	}
	return false
}

// Trace all passes of the request's sample pattern and emit one result per
// pass. Returns false if a result could not be delivered because the pool is
// shutting down.
func (w *worker) process(req *RenderRequest) bool {
	pattern := sampling.NewPattern(req.PatternM, req.PatternN, req.Seed)
	numPixels := req.NumPixels()

	for s := uint32(0); s < pattern.Len(); s++ {
		sx, sy := pattern.Square(s)
		lx, ly := pattern.Disk(s)

		samples := make([]Sample, 0, numPixels)
		it := req.Pixels()
		for x, y, ok := it.Next(); ok; x, y, ok = it.Next() {
			ray, weight := w.camera.RayForPixel(x, y, [2]float32{sx, sy}, [2]float32{lx, ly})
			samples = append(samples, Sample{
				X:      x,
				Y:      y,
				Colour: w.integrator.Radiance(&ray, w.rng).Mul(weight),
			})
		}
		w.raysCast.Add(uint64(len(samples)))

		select {
		case w.results <- RenderResult{Epoch: req.Epoch, Samples: samples}:
		case <-w.closing:
			return false
		}
	}

	return true
}
