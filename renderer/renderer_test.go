package renderer

import (
	"bytes"
	"errors"
	"image/png"
	"io"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/achilleasa/lumen/bvh"
	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
)

func init() {
	log.SetSink(io.Discard)
}

func TestEstimatorPermutationInvariance(t *testing.T) {
	type update struct {
		x, y uint32
		c    types.Colour
	}

	rng := rand.New(rand.NewSource(7))
	updates := make([]update, 500)
	for index := range updates {
		// Dyadic values keep the sums exact regardless of order
		updates[index] = update{
			x: uint32(rng.Intn(4)),
			y: uint32(rng.Intn(4)),
			c: types.RGB(float32(rng.Intn(16))/8, float32(rng.Intn(16))/8, float32(rng.Intn(16))/8),
		}
	}

	e1 := NewEstimator(4, 4, 2)
	for _, u := range updates {
		e1.Update(u.x, u.y, u.c)
	}

	rng.Shuffle(len(updates), func(i, j int) { updates[i], updates[j] = updates[j], updates[i] })
	e2 := NewEstimator(4, 4, 2)
	for _, u := range updates {
		e2.Update(u.x, u.y, u.c)
	}

	img1, img2 := e1.Render(), e2.Render()
	for y := uint32(0); y < 4; y++ {
		for x := uint32(0); x < 4; x++ {
			if e1.Count(x, y) != e2.Count(x, y) {
				t.Fatalf("expected pixel (%d, %d) counts to match; got %d and %d", x, y, e1.Count(x, y), e2.Count(x, y))
			}
			if img1.At(x, y) != img2.At(x, y) {
				t.Fatalf("expected pixel (%d, %d) means to match; got %v and %v", x, y, img1.At(x, y), img2.At(x, y))
			}
		}
	}
}

func TestEstimatorGridFallback(t *testing.T) {
	e := NewEstimator(16, 16, 8)
	red := types.RGB(1, 0, 0)
	green := types.RGB(0, 1, 0)

	e.Update(8, 0, red)
	e.Update(8, 0, red.Mul(3))
	e.Update(9, 3, green)

	// Ignored
	e.Update(16, 0, green)
	e.Update(0, 16, green)

	type spec struct {
		x, y uint32
		exp  types.Colour
	}
	specs := []spec{
		{8, 0, types.RGB(2, 0, 0)},
		{9, 3, green},
		{15, 7, types.RGB(2, 0, 0)},
		{0, 0, types.Black},
		{7, 7, types.Black},
		{8, 8, types.Black},
	}

	img := e.Render()
	for index, s := range specs {
		if got := img.At(s.x, s.y); got != s.exp {
			t.Fatalf("[spec %d] expected pixel (%d, %d) to be %v; got %v", index, s.x, s.y, s.exp, got)
		}
	}

	if lo, hi := e.CountRange(); lo != 0 || hi != 2 {
		t.Fatalf("expected count range [0, 2]; got [%d, %d]", lo, hi)
	}

	e.Reset()
	if e.Count(8, 0) != 0 || e.Render().At(8, 0) != types.Black {
		t.Fatal("expected reset to discard all samples")
	}
}

func TestImageRGBA(t *testing.T) {
	img := &Image{
		Width:  2,
		Height: 1,
		Pixels: []types.Colour{types.RGB(0.5, 2, -1), types.RGB(0.25, 0.25, 0.25)},
	}

	rgba := img.RGBA(2.0)
	if rgba.Bounds().Dx() != 2 || rgba.Bounds().Dy() != 1 {
		t.Fatalf("expected a 2x1 image; got %v", rgba.Bounds())
	}

	if c := rgba.RGBAAt(0, 0); c.R != 255 || c.G != 255 || c.B != 0 || c.A != 255 {
		t.Fatalf("expected pixel 0 to be clamped; got %v", c)
	}
	if c := rgba.RGBAAt(1, 0); c.R != 128 {
		t.Fatalf("expected pixel 1 red channel to be 128; got %d", c.R)
	}
}

func testScene(t *testing.T, width, height uint32, albedo types.Colour) *scene.Scene {
	t.Helper()

	objects := []scene.Object{
		{Shape: scene.NewSphere(types.XYZ(0, 0, 5), 3), Material: scene.Lambertian(albedo, types.Black)},
	}
	sc, err := scene.New(scene.NewCamera(width, height), objects, scene.FlatSky(types.White), bvh.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return sc
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.NumWorkers = 2
	opts.QueueSize = 4
	opts.PreviewGridSize = 4
	opts.SamplePatternM = 2
	opts.SamplePatternN = 2
	return opts
}

// Update the controller until pixel (x, y) has at least n samples.
func waitForSamples(t *testing.T, c *Controller, x, y, n uint32) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for c.SampleCount(x, y) < n {
		if err := c.Update(); err != nil {
			t.Fatal(err)
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d samples at (%d, %d); got %d", n, x, y, c.SampleCount(x, y))
		}
		time.Sleep(time.Millisecond)
	}
}

func TestControllerErrors(t *testing.T) {
	sc := testScene(t, 4, 4, types.White)

	if _, err := NewController(nil, testOptions()); err != ErrSceneNotDefined {
		t.Fatalf("expected to get ErrSceneNotDefined; got %v", err)
	}

	opts := testOptions()
	opts.SamplePatternM = 0
	if _, err := NewController(sc, opts); err != ErrInvalidOptions {
		t.Fatalf("expected to get ErrInvalidOptions; got %v", err)
	}

	sc.Camera.Width = 0
	if _, err := NewController(sc, testOptions()); err != ErrInvalidFrameSize {
		t.Fatalf("expected to get ErrInvalidFrameSize; got %v", err)
	}
}

func TestControllerConvergesToAlbedo(t *testing.T) {
	albedo := types.RGB(0.5, 0.25, 0.75)
	c, err := NewController(testScene(t, 8, 8, albedo), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	waitForSamples(t, c, 4, 4, 8)

	// A convex diffuse object under a uniform white sky reflects its albedo;
	// the lens weight near the image center is close to 1.
	got := c.Frame().At(4, 4)
	for ch := 0; ch < 3; ch++ {
		if math32.Abs(got[ch]-albedo[ch]) > 0.02 {
			t.Fatalf("expected center pixel to converge to %v; got %v", albedo, got)
		}
	}

	stats := c.Stats()
	if stats.Epoch != 0 || stats.Workers != 2 || stats.SamplesApplied == 0 || stats.RaysCast < stats.SamplesApplied {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Table() == "" {
		t.Fatal("expected stats table to be rendered")
	}
}

func TestControllerDiscardsStaleResults(t *testing.T) {
	albedo := types.RGB(0.5, 0.5, 0.5)
	c, err := NewController(testScene(t, 8, 8, albedo), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	waitForSamples(t, c, 4, 4, 4)

	// Place the camera past the sphere; only the white sky remains visible
	c.Reposition(types.XYZ(0, 0, 20))
	if c.Epoch() != 1 {
		t.Fatalf("expected epoch to be bumped to 1; got %d", c.Epoch())
	}
	if lo, hi := c.estimator.CountRange(); lo != 0 || hi != 0 {
		t.Fatalf("expected estimator to be cleared; got count range [%d, %d]", lo, hi)
	}
	if c.Camera().Location != types.XYZ(0, 0, 20) {
		t.Fatalf("expected camera to be repositioned; got %v", c.Camera().Location)
	}

	waitForSamples(t, c, 4, 4, 8)
	got := c.Frame().At(4, 4)
	if got[0] < 0.98 {
		t.Fatalf("expected center pixel to only contain sky samples; got %v", got)
	}

	// Rotating the camera towards the sphere brings it back in view
	c.Rotate(math32.Pi, 0, 0)
	if c.Epoch() != 2 {
		t.Fatalf("expected epoch to be bumped to 2; got %d", c.Epoch())
	}
	waitForSamples(t, c, 4, 4, 8)
	got = c.Frame().At(4, 4)
	if math32.Abs(got[0]-albedo[0]) > 0.02 {
		t.Fatalf("expected center pixel to converge to %v after rotating; got %v", albedo, got)
	}

	c.Reset()
	if c.Epoch() != 3 || c.SampleCount(4, 4) != 0 {
		t.Fatalf("expected reset to bump the epoch and clear samples; got epoch %d with %d samples", c.Epoch(), c.SampleCount(4, 4))
	}
}

// Panics the first time it is invoked and returns white afterwards.
type failOnceIntegrator struct {
	failed atomic.Bool
}

func (in *failOnceIntegrator) Radiance(_ *bvh.Ray, _ *rand.Rand) types.Colour {
	if in.failed.CompareAndSwap(false, true) {
		panic("tracing failed")
	}
	return types.White
}

// Blocks until released and then returns red for rays leaving a camera
// placed below z = 10 and blue otherwise.
type gatedIntegrator struct {
	started chan struct{}
	release chan struct{}
}

func (in *gatedIntegrator) Radiance(ray *bvh.Ray, _ *rand.Rand) types.Colour {
	select {
	case in.started <- struct{}{}:
	default:
	}
	<-in.release

	if ray.Origin[2] < 10 {
		return types.RGB(1, 0, 0)
	}
	return types.RGB(0, 0, 1)
}

func TestControllerWorkerFailure(t *testing.T) {
	c, err := newController(testScene(t, 8, 8, types.White), testOptions(), &failOnceIntegrator{})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	deadline := time.Now().Add(10 * time.Second)
	for err == nil {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the worker failure to be reported")
		}
		time.Sleep(time.Millisecond)
		err = c.Update()
	}
	if !errors.Is(err, ErrWorkerFailed) {
		t.Fatalf("expected to get ErrWorkerFailed; got %v", err)
	}

	// The remaining worker keeps tracing but the controller must not
	// continue rendering with a degraded pool.
	applied := c.Stats().SamplesApplied
	for i := 0; i < 50; i++ {
		time.Sleep(time.Millisecond)
		if err = c.Update(); !errors.Is(err, ErrWorkerFailed) {
			t.Fatalf("[update %d] expected to get ErrWorkerFailed; got %v", i, err)
		}
	}
	if got := c.Stats().SamplesApplied; got != applied {
		t.Fatalf("expected no samples to be applied after the failure; applied %d, got %d", applied, got)
	}
}

func TestControllerDropsInFlightResults(t *testing.T) {
	integrator := &gatedIntegrator{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	release := sync.OnceFunc(func() { close(integrator.release) })

	opts := testOptions()
	opts.NumWorkers = 1
	c, err := newController(testScene(t, 8, 8, types.White), opts, integrator)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	defer release()

	if err = c.Update(); err != nil {
		t.Fatal(err)
	}

	// Wait for the worker to start tracing an epoch 0 request and move the
	// camera while the request is still in flight.
	select {
	case <-integrator.started:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for the worker to start tracing")
	}
	c.Reposition(types.XYZ(0, 0, 20))
	release()

	deadline := time.Now().Add(10 * time.Second)
	for {
		if err = c.Update(); err != nil {
			t.Fatal(err)
		}
		if stats := c.Stats(); stats.StaleResults > 0 && stats.MinSamples > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for stale results to be dropped; stats: %+v", c.Stats())
		}
		time.Sleep(time.Millisecond)
	}

	if c.Epoch() != 1 {
		t.Fatalf("expected epoch to be 1; got %d", c.Epoch())
	}

	frame := c.Frame()
	for y := uint32(0); y < 8; y++ {
		for x := uint32(0); x < 8; x++ {
			if got := frame.At(x, y); got[0] != 0 || got[2] <= 0 {
				t.Fatalf("expected pixel (%d, %d) to only contain samples traced after the reposition; got %v", x, y, got)
			}
		}
	}
}

func TestFrameRenderer(t *testing.T) {
	opts := testOptions()
	opts.SamplesPerPixel = 4

	var buf bytes.Buffer
	r, err := NewFrame(testScene(t, 4, 4, types.RGB(0.5, 0.5, 0.5)), opts, &buf)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err = r.Render(); err != nil {
		t.Fatal(err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
		t.Fatalf("expected a 4x4 image; got %v", img.Bounds())
	}

	if stats := r.Stats(); stats.MinSamples < 4 {
		t.Fatalf("expected every pixel to receive at least 4 samples; got %d", stats.MinSamples)
	}

	// 0.5 maps to 128
	red, _, _, _ := img.At(2, 2).RGBA()
	if red>>8 < 120 || red>>8 > 128 {
		t.Fatalf("expected center pixel red channel close to 128; got %d", red>>8)
	}

	opts.SamplesPerPixel = 0
	if _, err = NewFrame(testScene(t, 4, 4, types.White), opts, &buf); err != ErrInvalidOptions {
		t.Fatalf("expected to get ErrInvalidOptions; got %v", err)
	}
}
