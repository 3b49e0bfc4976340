package renderer

import (
	"fmt"
	"time"

	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/tracer"
	"github.com/achilleasa/lumen/types"
)

// The controller drives progressive rendering. It is the only owner of the
// camera and epoch: camera changes bump the epoch and are broadcast to all
// workers so results traced with an older camera can be recognized and
// discarded. All controller methods must be invoked from the same goroutine.
type Controller struct {
	logger  log.Logger
	options Options

	scene  *scene.Scene
	camera scene.Camera
	epoch  uint64

	pool      *tracer.Pool
	scheduler tracer.RequestScheduler
	estimator *Estimator

	// A generated request that did not fit in the request queue.
	pending *tracer.RenderRequest

	samplesApplied uint64
	staleResults   uint64
	resetAt        time.Time

	// Set once a worker fails; the pool cannot recover from a lost worker.
	err error
}

// Create a new controller and spawn its worker pool.
func NewController(sc *scene.Scene, opts Options) (*Controller, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	return newController(sc, opts, tracer.NewPathIntegrator(sc, opts.MinBouncesForRR, opts.MaxBounces))
}

func newController(sc *scene.Scene, opts Options, integrator tracer.Integrator) (*Controller, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	camera := sc.Camera
	if opts.FrameW != 0 && opts.FrameH != 0 {
		camera.Width, camera.Height = opts.FrameW, opts.FrameH
	}
	if camera.Width == 0 || camera.Height == 0 {
		return nil, ErrInvalidFrameSize
	}
	opts.FrameW, opts.FrameH = camera.Width, camera.Height

	pool, err := tracer.NewPool(camera, integrator, tracer.PoolOptions{
		NumWorkers: opts.NumWorkers,
		QueueSize:  opts.QueueSize,
		Seed:       opts.Seed,
	})
	if err != nil {
		return nil, err
	}

	c := &Controller{
		logger:    log.New("renderer"),
		options:   opts,
		scene:     sc,
		camera:    camera,
		pool:      pool,
		scheduler: tracer.NewCenterOutScheduler(camera.Width, camera.Height, opts.PreviewGridSize, opts.SamplePatternM, opts.SamplePatternN),
		estimator: NewEstimator(camera.Width, camera.Height, opts.PreviewGridSize),
		resetAt:   time.Now(),
	}

	c.logger.Infof("rendering %dx%d frames using %d workers", camera.Width, camera.Height, opts.NumWorkers)
	return c, nil
}

// Get the render options.
func (c *Controller) Options() Options {
	return c.options
}

// Get the scene being rendered.
func (c *Controller) Scene() *scene.Scene {
	return c.scene
}

// Get a copy of the current camera.
func (c *Controller) Camera() scene.Camera {
	return c.camera
}

// Get the current epoch.
func (c *Controller) Epoch() uint64 {
	return c.epoch
}

// Move the camera to a new location.
func (c *Controller) Reposition(location types.Vec3) {
	c.camera = c.camera.WithLocation(location)
	c.cameraChanged(tracer.Command{Type: tracer.RepositionCamera, Location: location})
}

// Change the camera orientation.
func (c *Controller) Reorient(orientation types.Orientation) {
	c.camera = c.camera.WithOrientation(orientation)
	c.cameraChanged(tracer.Command{Type: tracer.ReorientCamera, Orientation: orientation})
}

// Move the camera by an offset expressed in camera space.
func (c *Controller) Move(delta types.Vec3) {
	c.Reposition(c.camera.Move(delta).Location)
}

// Rotate the camera around its local axes.
func (c *Controller) Rotate(yaw, pitch, roll float32) {
	c.Reorient(c.camera.Orientation.Mul(types.OrientationFromAngles(yaw, pitch, roll)))
}

// Discard all accumulated samples and restart rendering.
func (c *Controller) Reset() {
	c.cameraChanged(tracer.Command{Type: tracer.ReplaceCamera, Camera: c.camera})
}

func (c *Controller) cameraChanged(cmd tracer.Command) {
	c.epoch++
	c.pool.Broadcast(tracer.Command{Type: tracer.SetEpoch, Epoch: c.epoch}, cmd)

	c.estimator.Reset()
	c.samplesApplied = 0
	c.pending = nil
	flushed := c.pool.FlushRequests()
	c.scheduler.Reset()
	c.resetAt = time.Now()

	c.logger.Debugf("camera changed; epoch %d, flushed %d queued requests", c.epoch, flushed)
}

// Top up the request queue and accumulate any results produced by the
// workers. Update never blocks; it returns an error if a worker failed.
// Once a worker has failed every subsequent call returns the same error
// and the controller must be closed.
func (c *Controller) Update() error {
	if c.err != nil {
		return c.err
	}

	select {
	case err := <-c.pool.Errors():
		c.err = fmt.Errorf("%w: %v", ErrWorkerFailed, err)
		return c.err
	default:
	}

	c.fill()
	c.drain()
	return nil
}

func (c *Controller) fill() {
	requests := c.pool.Requests()
	for {
		if c.pending == nil {
			req := c.scheduler.Next(c.epoch)
			c.pending = &req
		}

		select {
		case requests <- *c.pending:
			c.pending = nil
		default:
			return
		}
	}
}

func (c *Controller) drain() {
	results := c.pool.Results()
	for {
		select {
		case res := <-results:
			if res.Epoch != c.epoch {
				c.staleResults++
				continue
			}
			for _, sample := range res.Samples {
				c.estimator.Update(sample.X, sample.Y, sample.Colour)
			}
			c.samplesApplied += uint64(len(res.Samples))
		default:
			return
		}
	}
}

// Get the current frame estimate.
func (c *Controller) Frame() *Image {
	return c.estimator.Render()
}

// Get the number of samples accumulated for a pixel.
func (c *Controller) SampleCount(x, y uint32) uint32 {
	return c.estimator.Count(x, y)
}

// Get render statistics.
func (c *Controller) Stats() FrameStats {
	minSamples, maxSamples := c.estimator.CountRange()
	return FrameStats{
		Epoch:          c.epoch,
		Workers:        c.pool.NumWorkers(),
		RaysCast:       c.pool.RaysCast(),
		SamplesApplied: c.samplesApplied,
		StaleResults:   c.staleResults,
		MinSamples:     minSamples,
		MaxSamples:     maxSamples,
		RenderTime:     time.Since(c.resetAt),
	}
}

// Shutdown the worker pool.
func (c *Controller) Close() {
	c.pool.Close()
	c.logger.Debugf("controller closed at epoch %d", c.epoch)
}
