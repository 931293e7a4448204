// Package cli implements the orderctl command tree.
package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vanshika/orders/backend/internal/app"
	"github.com/vanshika/orders/backend/internal/config"
	"github.com/vanshika/orders/backend/internal/logging"
)

// AppOpener builds the service for commands that process or read transactions.
type AppOpener func(ctx context.Context) (*app.App, error)

// Options wires the command tree to its environment.
type Options struct {
	Out     io.Writer
	OpenApp AppOpener
}

// DefaultAppOpener loads configuration from the environment and assembles the
// service with the configured logger.
func DefaultAppOpener(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, logging.New(cfg.Logging))
}

// NewRootCommand returns the orderctl root command.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.OpenApp == nil {
		opts.OpenApp = DefaultAppOpener
	}

	root := &cobra.Command{
		Use:           "orderctl",
		Short:         "Generate, process and inspect order transactions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	if opts.Out != nil {
		root.SetOut(opts.Out)
	}

	root.AddCommand(newGenerateCommand())
	root.AddCommand(newBatchCommand(opts.OpenApp))
	root.AddCommand(newGetCommand(opts.OpenApp))
	return root
}

func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		logger := a.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("closing service failed", "error", err)
	}
}
