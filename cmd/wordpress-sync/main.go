// Package main is the entry point for the wordpress-sync CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alexjbarnes/wordpress-sync/internal/config"
	"github.com/alexjbarnes/wordpress-sync/internal/logging"
	"github.com/alexjbarnes/wordpress-sync/internal/sync"
	"github.com/alexjbarnes/wordpress-sync/internal/wordpress"
)

var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	root.Version = Version

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wordpress-sync",
		Short:         "wordpress-sync - publish Markdown blogs to WordPress and back",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.AddCommand(newUploadCmd())
	root.AddCommand(newDownloadCmd())
	root.AddCommand(newNewCmd())
	root.AddCommand(newChangeGUIDCmd())
	root.AddCommand(newUpdateCanonicalCmd())
	root.AddCommand(newRegenerateBannersCmd())
	root.AddCommand(newAddEmailCmd())
	root.AddCommand(newCheckLinksCmd())
	return root
}

// newEngine wires config, logger and client for a host and returns a
// ready sync engine. Commands that talk to WordPress start here.
func newEngine(host string) (*sync.Engine, *slog.Logger, error) {
	cfg, err := config.Load(host)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(cfg.Environment)

	client := wordpress.NewClient(cfg.Endpoint, wordpress.SchemaByName(cfg.SEOSchema), nil)

	return sync.NewEngine(client, logger), logger, nil
}

// newLogger builds a logger for commands that never touch the remote
// endpoint and so skip host config resolution.
func newLogger() *slog.Logger {
	return logging.NewLogger(os.Getenv("ENVIRONMENT"))
}
