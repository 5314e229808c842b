package main

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newWarmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Render every tile covering an envelope and report cache statistics",
		RunE:  runWarm,
	}
	cmd.Flags().String("bbox", "", "Envelope as minx,miny,maxx,maxy")
	cmd.Flags().Bool("quiet", false, "Disable the progress bar")
	_ = cmd.MarkFlagRequired("bbox")
	return cmd
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	theme := progressbar.Theme{
		Saucer:        "=",
		SaucerHead:    ">",
		SaucerPadding: " ",
		BarStart:      "[",
		BarEnd:        "]",
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetTheme(theme),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
}

func runWarm(cmd *cobra.Command, args []string) error {
	bbox, _ := cmd.Flags().GetString("bbox")
	quiet, _ := cmd.Flags().GetBool("quiet")

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ix := a.Intersector
	env, err := parseBBox(bbox, ix.Options().CRS)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if quiet {
			return
		}
		if bar == nil {
			bar = newProgressBar(total, "[tiles] rendering")
		}
		_ = bar.Set(done)
	}

	start := time.Now()
	rendered, err := ix.Prefetch(cmd.Context(), env, progress)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(cmd.OutOrStdout())
	}
	if err != nil {
		return err
	}

	stats := ix.Store().Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d tiles in %v (%d cached, capacity %d)\n",
		rendered, time.Since(start).Round(time.Millisecond), stats.Tiles, stats.Capacity)
	return nil
}
