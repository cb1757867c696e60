package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/therdel/raytracer/asset/scene/reader"
	"github.com/therdel/raytracer/renderer"
	"github.com/therdel/raytracer/tracer"
	"github.com/urfave/cli"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := renderer.Options{
		FrameW:   uint32(ctx.Int("width")),
		FrameH:   uint32(ctx.Int("height")),
		Workers:  uint32(ctx.Int("workers")),
		DepthMap: ctx.Bool("depth-map"),
	}

	// Load scene
	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	scheduler := tracer.PerfectScheduler()
	if ctx.Bool("naive") {
		scheduler = tracer.NaiveScheduler()
	}

	// Create renderer
	r, err := renderer.NewDefault(sc, scheduler, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	err = r.Render()
	if err != nil {
		return err
	}

	// Display stats
	displayFrameStats(r.Stats())

	imgFile := ctx.String("out")
	start := time.Now()
	if err = renderer.SaveFrame(r.Frame(), imgFile); err != nil {
		return err
	}
	logger.Noticef(`wrote frame to "%s" in %d ms`, imgFile, time.Since(start).Nanoseconds()/1e6)

	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Block height", "% of frame", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			stat.RenderTime.String(),
		})
	}
	table.SetFooter([]string{"", "", "TOTAL", stats.RenderTime.String()})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
