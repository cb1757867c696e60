package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/therdel/raytracer/asset/scene"
	"github.com/therdel/raytracer/asset/scene/reader"
	"github.com/urfave/cli"
)

// Display compiled scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	logger.Noticef("scene information:\n%s", sc.Stats())
	if len(sc.Meshes) != 0 {
		logger.Noticef("mesh BVH information:\n%s", meshStats(sc))
	}

	return nil
}

// Build a table with the BVH statistics of each scene mesh.
func meshStats(sc *scene.Scene) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Mesh", "Triangles", "Nodes", "Leafs", "Max depth", "Leaf size"})
	for _, mesh := range sc.Meshes {
		st := mesh.Bvh.Stats(sc.BvhNodes)
		table.Append([]string{
			mesh.Name,
			fmt.Sprintf("%d", st.Triangles),
			fmt.Sprintf("%d", st.Nodes),
			fmt.Sprintf("%d", st.Leafs),
			fmt.Sprintf("%d", st.MaxDepth),
			fmt.Sprintf("%.2f ± %.2f", st.LeafSizeMean, st.LeafSizeStdDev),
		})
	}

	table.Render()
	return buf.String()
}
