package cmd

import (
	"bytes"
	"fmt"
	"time"

	"github.com/achilleasa/lumen/bvh"
	"github.com/achilleasa/lumen/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Measure BVH build and traversal performance for the stress scene using a
// range of cluster reduction thresholds.
func Bench(ctx *cli.Context) error {
	setupLogging(ctx)

	numSpheres := ctx.Int("spheres")
	seed := ctx.Int64("seed")
	width, height := uint32(ctx.Int("width")), uint32(ctx.Int("height"))

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Delta", "Build time", "Nodes", "Max depth", "Hits", "Primary rays/s"})

	deltas := ctx.IntSlice("delta")
	if len(deltas) == 0 {
		deltas = []int{4, 10, 20}
	}

	for _, delta := range deltas {
		opts := bvh.DefaultOptions()
		opts.Delta = delta

		sc, err := scene.StressScene(width, height, numSpheres, seed, opts)
		if err != nil {
			return err
		}
		stats := sc.BVHStats()

		hits, elapsed := traceFrame(sc)
		rays := float64(width) * float64(height)
		table.Append([]string{
			fmt.Sprintf("%d", delta),
			stats.BuildTime.String(),
			fmt.Sprintf("%d", stats.Nodes),
			fmt.Sprintf("%d", stats.MaxDepth),
			fmt.Sprintf("%d", hits),
			fmt.Sprintf("%.0f", rays/elapsed.Seconds()),
		})
	}
	table.SetFooter([]string{"", "", "", "", "SPHERES", fmt.Sprintf("%d", numSpheres)})

	table.Render()
	logger.Noticef("benchmark results\n%s", buf.String())
	return nil
}

// Cast one primary ray through the center of each pixel and count the hits.
func traceFrame(sc *scene.Scene) (int, time.Duration) {
	camera := sc.Camera
	center := [2]float32{0.5, 0.5}

	hits := 0
	start := time.Now()
	for y := uint32(0); y < camera.Height; y++ {
		for x := uint32(0); x < camera.Width; x++ {
			ray, _ := camera.RayForPixel(x, y, center, [2]float32{})
			if _, _, found := sc.Intersect(&ray); found {
				hits++
			}
		}
	}
	return hits, time.Since(start)
}
