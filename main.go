package main

import (
	"os"

	"github.com/therdel/raytracer/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "raytracer"
	app.Usage = "render scenes using whitted-style ray tracing"
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
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a single frame",
			Description: `
Parse a scene definition from a json or wavefront obj file, build a BVH tree
for each mesh and render a single frame to a png file.`,
			ArgsUsage: "scene_file",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Usage: "frame width; defaults to the scene camera width",
				},
				cli.IntFlag{
					Name:  "height",
					Usage: "frame height; defaults to the scene camera height",
				},
				cli.IntFlag{
					Name:  "workers",
					Usage: "number of tracer workers; defaults to the number of physical cores",
				},
				cli.BoolFlag{
					Name:  "depth-map",
					Usage: "render a depth map instead of the shaded scene",
				},
				cli.BoolFlag{
					Name:  "naive",
					Usage: "split the frame evenly between workers instead of balancing by render time",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
			},
			Action: cmd.RenderFrame,
		},
		{
			Name:        "info",
			Usage:       "print scene statistics",
			Description: `Parse and compile a scene and display information about its contents.`,
			ArgsUsage:   "scene_file",
			Action:      cmd.ShowSceneInfo,
		},
	}

	if err := app.Run(os.Args); err != nil {
		cmd.Fatal(err)
	}
}
