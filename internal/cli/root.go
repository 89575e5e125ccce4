// Package cli implements the circulate command line: the HTTP server, a
// terminal scan session, catalog management, exports and diagnostics.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/diwanlib/circulate/internal/config"
	"github.com/diwanlib/circulate/internal/store"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the circulate CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "circulate",
		Short:         "Library circulation desk",
		Long:          "Scan-driven checkout and checkin for a small library, with a web API, exports and printable QR labels.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			setupLogging(opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (YAML)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSessionCommand(opts))
	cmd.AddCommand(NewBooksCommand(opts))
	cmd.AddCommand(NewMembersCommand(opts))
	cmd.AddCommand(NewTransactionsCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig resolves the effective configuration for a command run.
func (o *RootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "loading configuration", err)
	}
	return cfg, nil
}

// openStore builds the storage stack from configuration: the online
// database when one is configured, layered over the local file. A primary
// that cannot be reached does not fail the command; the tier starts
// degraded and the local file carries the session.
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	fallback, err := store.OpenSQLite(cfg.Store.SQLitePath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "opening local store", err)
	}

	if cfg.Store.PostgresURL == "" {
		return fallback, nil
	}

	primary, err := store.OpenPostgres(ctx, cfg.Store.PostgresURL)
	if err != nil {
		slog.Warn("online store unreachable, continuing on local store", "error", err)
		return store.NewTiered(nil, fallback), nil
	}
	return store.NewTiered(primary, fallback), nil
}
