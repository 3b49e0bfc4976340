package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/achilleasa/lumen/cmd"
	"github.com/urfave/cli"
)

func init() {
	// glfw must be driven from the main thread
	runtime.LockOSThread()
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "lumen"
	app.Usage = "progressive path tracing on the CPU"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}

	sceneFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "scene",
			Value: "demo",
			Usage: "scene to render (demo, stress)",
		},
		cli.IntFlag{
			Name:  "width",
			Value: 512,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 512,
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "spheres",
			Value: 1000,
			Usage: "number of spheres in the stress scene",
		},
		cli.Int64Flag{
			Name:  "seed",
			Value: 1,
			Usage: "random seed for scene generation and sampling",
		},
		cli.IntFlag{
			Name:  "delta",
			Value: 10,
			Usage: "BVH cluster reduction threshold; larger values build better trees more slowly",
		},
	}

	renderFlags := append([]cli.Flag{
		cli.IntFlag{
			Name:  "workers",
			Value: 4,
			Usage: "number of tracing workers",
		},
		cli.IntFlag{
			Name:  "queue",
			Value: 8,
			Usage: "capacity of the render request queue",
		},
		cli.IntFlag{
			Name:  "preview-grid",
			Value: 8,
			Usage: "grid size for the coarse preview pass",
		},
		cli.IntFlag{
			Name:  "pattern-m",
			Value: 4,
			Usage: "horizontal strata of the per-request sample pattern",
		},
		cli.IntFlag{
			Name:  "pattern-n",
			Value: 4,
			Usage: "vertical strata of the per-request sample pattern",
		},
		cli.IntFlag{
			Name:  "rr-bounces",
			Value: 3,
			Usage: "min bounces before applying russian roulette for path elimination; 0 disables RR",
		},
		cli.IntFlag{
			Name:  "max-bounces",
			Value: 10,
			Usage: "max number of bounces",
		},
		cli.Float64Flag{
			Name:  "exposure",
			Value: 1.0,
			Usage: "camera exposure for tone-mapping",
		},
	}, sceneFlags...)

	app.Commands = []cli.Command{
		{
			Name:   "render",
			Usage:  "render scene",
			Action: nil,
			Subcommands: []cli.Command{
				{
					Name:  "frame",
					Usage: "render single frame",
					Description: `
Render a single frame until every pixel has received the requested number of
samples and write it to a PNG file.`,
					Flags: append([]cli.Flag{
						cli.IntFlag{
							Name:  "spp",
							Value: 16,
							Usage: "samples per pixel",
						},
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					}, renderFlags...),
					Action: cmd.RenderFrame,
				},
				{
					Name:  "interactive",
					Usage: "render interactive view of the scene",
					Description: `
Open a window with a progressively refined view of the scene. Use the arrow
keys or WASD to move (hold shift to move faster), drag with the left mouse
button to look around, press enter to restart accumulation, tab to toggle the
stats display and escape to exit.`,
					Flags:  renderFlags,
					Action: cmd.RenderInteractive,
				},
			},
		},
		{
			Name:  "scene",
			Usage: "scene tools",
			Subcommands: []cli.Command{
				{
					Name:   "info",
					Usage:  "generate a scene and display its statistics",
					Flags:  sceneFlags,
					Action: cmd.ShowSceneInfo,
				},
			},
		},
		{
			Name:  "bench",
			Usage: "benchmark BVH construction and traversal",
			Description: `
Generate the stress scene once for each cluster reduction threshold, build its
BVH and trace one primary ray per pixel.`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "spheres",
					Value: 100000,
					Usage: "number of spheres in the stress scene",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 1,
					Usage: "random seed for scene generation",
				},
				cli.IntSliceFlag{
					Name:  "delta",
					Usage: "BVH cluster reduction threshold to benchmark; may be specified multiple times (default: 4, 10, 20)",
				},
			},
			Action: cmd.Bench,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
