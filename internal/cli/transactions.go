package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/diwanlib/circulate/internal/catalog"
)

// NewTransactionsCommand creates the transactions command group.
func NewTransactionsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Inspect and clear the loan history",
	}

	var overdueOnly bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List loans",
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

			txns, err := st.ListTransactions(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "listing transactions", err)
			}
			if overdueOnly {
				txns = catalog.OverdueLoans(txns, time.Now())
			}

			if opts.Format == "json" {
				f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
				return f.Success(txns)
			}
			for _, t := range txns {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%s\n",
					t.ID, t.BookTitle, t.MemberName, t.DueDate.Format(time.DateOnly), t.Status)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&overdueOnly, "overdue", false, "only loans past the grace period")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the entire loan history",
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

			if err := st.ClearTransactions(cmd.Context()); err != nil {
				return WrapExitError(ExitCommandError, "clearing transactions", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Transaction history cleared")
			return nil
		},
	})

	return cmd
}
