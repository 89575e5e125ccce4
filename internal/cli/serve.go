package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diwanlib/circulate/internal/httpapi"
)

// NewServeCommand creates the serve command: the HTTP API for the web
// front end.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			srv := httpapi.New(st, cfg.Server)

			// Serve until the listener fails or a signal arrives.
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Listen(cfg.Server.Addr) }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case err := <-errCh:
				return WrapExitError(ExitCommandError, "http server failed", err)
			case sig := <-sigCh:
				slog.Info("shutting down", "signal", sig.String())
				if err := srv.Shutdown(); err != nil {
					return WrapExitError(ExitCommandError, "shutdown failed", err)
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
