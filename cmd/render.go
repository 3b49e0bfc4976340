package cmd

import (
	"os"
	"time"

	"github.com/achilleasa/lumen/renderer"
	"github.com/achilleasa/lumen/renderer/opengl"
	"github.com/urfave/cli"
)

// Build the render options from the command line flags.
func renderOptions(ctx *cli.Context) renderer.Options {
	opts := renderer.DefaultOptions()
	opts.FrameW = uint32(ctx.Int("width"))
	opts.FrameH = uint32(ctx.Int("height"))
	opts.NumWorkers = ctx.Int("workers")
	opts.QueueSize = ctx.Int("queue")
	opts.PreviewGridSize = uint32(ctx.Int("preview-grid"))
	opts.SamplePatternM = uint32(ctx.Int("pattern-m"))
	opts.SamplePatternN = uint32(ctx.Int("pattern-n"))
	opts.MinBouncesForRR = uint32(ctx.Int("rr-bounces"))
	opts.MaxBounces = uint32(ctx.Int("max-bounces"))
	opts.SamplesPerPixel = uint32(ctx.Int("spp"))
	opts.Exposure = float32(ctx.Float64("exposure"))
	opts.Seed = ctx.Int64("seed")

	if opts.MinBouncesForRR == 0 || opts.MinBouncesForRR >= opts.MaxBounces {
		logger.Notice("disabling RR for path elimination")
		opts.MinBouncesForRR = opts.MaxBounces + 1
	}

	return opts
}

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	imgFile := ctx.String("out")
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	// Create renderer
	r, err := renderer.NewFrame(sc, renderOptions(ctx), f)
	if err != nil {
		return err
	}
	defer r.Close()

	if err = r.Render(); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s", imgFile)

	// Display stats
	displayFrameStats(r.Stats())

	return nil
}

// Use opengl to render a continuously updating view of the scene.
func RenderInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	r, err := opengl.NewInteractive(sc, renderOptions(ctx))
	if err != nil {
		return err
	}
	defer r.Close()

	start := time.Now()
	if err = r.Render(); err != nil {
		return err
	}
	logger.Noticef("interactive session lasted %s", time.Since(start))

	displayFrameStats(r.Stats())
	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	logger.Noticef("frame statistics\n%s", stats.Table())
}
