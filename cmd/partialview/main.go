package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/beetlebugorg/partialrender/internal/app"
	"github.com/beetlebugorg/partialrender/pkg/config"
	"github.com/beetlebugorg/partialrender/pkg/logger"
)

// newApp loads configuration from the environment (and .env) and wires the
// application. Callers must Close the returned app.
func newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logger.Level = level
	}
	l := logger.NewZapLogger(cfg.Logger.Level)

	return app.New(cfg, l)
}

func main() {
	root := &cobra.Command{
		Use:           "partialview",
		Short:         "Render map viewports from a cache of pre-rendered partials",
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "", "Override LOGGER_LEVEL (debug, info, warn, error)")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newWarmCmd())
	root.AddCommand(newServeCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
