package main

import (
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/beetlebugorg/partialrender/internal/display"
	"github.com/beetlebugorg/partialrender/pkg/partial"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one viewport to a PNG file",
		Example: `  partialview render --bbox 0,0,100000,50000 --size 1600x800 --out view.png
  partialview render --center 5000,5000 --size 800x600 --out view.png`,
		RunE: runRender,
	}
	cmd.Flags().String("bbox", "", "Viewport envelope as minx,miny,maxx,maxy")
	cmd.Flags().String("center", "", "Viewport center as x,y (uses the configured resolution)")
	cmd.Flags().String("size", "1024x768", "Screen size as WIDTHxHEIGHT")
	cmd.Flags().StringP("out", "o", "viewport.png", "Output PNG path")
	cmd.Flags().Bool("grid", false, "Outline each tile and mark its corners")
	cmd.MarkFlagsMutuallyExclusive("bbox", "center")
	cmd.MarkFlagsOneRequired("bbox", "center")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	bbox, _ := cmd.Flags().GetString("bbox")
	center, _ := cmd.Flags().GetString("center")
	sizeFlag, _ := cmd.Flags().GetString("size")
	out, _ := cmd.Flags().GetString("out")
	showGrid, _ := cmd.Flags().GetBool("grid")

	screen, err := parseSize(sizeFlag)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ix := a.Intersector
	crs := ix.Options().CRS
	ctx := cmd.Context()

	var result *partial.QueryResult
	if bbox != "" {
		env, err := parseBBox(bbox, crs)
		if err != nil {
			return err
		}
		result, err = ix.IntersectEnvelope(ctx, env, screen)
		if err != nil {
			return err
		}
	} else {
		pt, err := parsePoint(center)
		if err != nil {
			return err
		}
		result, err = ix.IntersectPoint(ctx, pt, screen, crs)
		if err != nil {
			return err
		}
	}

	for key, ferr := range result.Failures() {
		a.Logger.Warn("tile missing from output", "key", key.String(), "error", ferr)
	}

	img := display.ComposeWithOptions(result, display.Options{
		Background: color.White,
		ShowGrid:   showGrid,
	})

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		return errors.Join(fmt.Errorf("encode output: %w", err), f.Close())
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d tiles, %d holes\n", out, len(result.Partials()), len(result.Holes()))
	return nil
}
