package cmd

import (
	"fmt"

	"github.com/achilleasa/lumen/bvh"
	"github.com/achilleasa/lumen/scene"
	"github.com/urfave/cli"
)

// Generate the scene selected by the command line flags.
func loadScene(ctx *cli.Context) (*scene.Scene, error) {
	opts := bvh.DefaultOptions()
	if ctx.IsSet("delta") {
		opts.Delta = ctx.Int("delta")
	}

	width, height := uint32(ctx.Int("width")), uint32(ctx.Int("height"))

	name := ctx.String("scene")
	logger.Noticef("generating %q scene", name)
	switch name {
	case "demo":
		return scene.DemoScene(width, height, opts)
	case "stress":
		return scene.StressScene(width, height, ctx.Int("spheres"), ctx.Int64("seed"), opts)
	}
	return nil, fmt.Errorf("unknown scene %q; supported scenes: demo, stress", name)
}

// Display scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	// Display scene info
	logger.Noticef("scene information:\n%s", sc.Stats())
	logger.Noticef("BVH statistics:\n%s", sc.BVHStats().Table())

	return nil
}
