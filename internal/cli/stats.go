package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/diwanlib/circulate/internal/catalog"
)

// NewStatsCommand creates the stats command: the dashboard summary on the
// terminal.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			books, err := st.ListBooks(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "listing books", err)
			}
			members, err := st.ListMembers(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "listing members", err)
			}
			txns, err := st.ListTransactions(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "listing transactions", err)
			}

			stats := catalog.Summarize(books, members, txns, time.Now())
			if opts.Format == "json" {
				f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
				return f.Success(stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Books:       %d\n", stats.TotalBooks)
			fmt.Fprintf(out, "Members:     %d\n", stats.TotalMembers)
			fmt.Fprintf(out, "Checked out: %d\n", stats.CheckedOut)
			fmt.Fprintf(out, "Overdue:     %d\n", stats.Overdue)
			if len(stats.RecentBooks) > 0 {
				fmt.Fprintln(out, "Recent books:")
				for _, b := range stats.RecentBooks {
					fmt.Fprintf(out, "  %s (%s)\n", b.Title, b.Status)
				}
			}
			if len(stats.RecentMembers) > 0 {
				fmt.Fprintln(out, "Recent members:")
				for _, m := range stats.RecentMembers {
					fmt.Fprintf(out, "  %s (%s)\n", m.Name, m.ID)
				}
			}
			return nil
		},
	}
}
