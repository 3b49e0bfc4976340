package renderer

import (
	"image/png"
	"io"
	"time"

	"github.com/achilleasa/lumen/scene"
)

// Interval between controller updates while waiting for samples.
const pollInterval = 2 * time.Millisecond

// A headless renderer that keeps refining the frame until every pixel has
// received the requested number of samples and then encodes it as a PNG.
type frameRenderer struct {
	*Controller

	out io.Writer
}

// Create a new headless renderer that writes the rendered frame to out.
func NewFrame(sc *scene.Scene, opts Options, out io.Writer) (Renderer, error) {
	if opts.SamplesPerPixel == 0 {
		return nil, ErrInvalidOptions
	}

	ctrl, err := NewController(sc, opts)
	if err != nil {
		return nil, err
	}

	return &frameRenderer{
		Controller: ctrl,
		out:        out,
	}, nil
}

// Render frame.
func (r *frameRenderer) Render() error {
	start := time.Now()
	for {
		if err := r.Update(); err != nil {
			return err
		}

		if minSamples, _ := r.estimator.CountRange(); minSamples >= r.options.SamplesPerPixel {
			break
		}
		time.Sleep(pollInterval)
	}
	r.logger.Noticef("rendered frame in %d ms", time.Since(start).Nanoseconds()/1000000)

	start = time.Now()
	if err := png.Encode(r.out, r.Frame().RGBA(r.options.Exposure)); err != nil {
		return err
	}
	r.logger.Infof("encoded frame in %d ms", time.Since(start).Nanoseconds()/1000000)
	return nil
}
