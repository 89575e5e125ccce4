package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/diwanlib/circulate/internal/export"
	"github.com/diwanlib/circulate/internal/store"
)

// NewExportCommand creates the export command group.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog and loan history",
	}
	cmd.AddCommand(newExportCommand(opts, "books-csv", "Export books as CSV",
		func(w io.Writer, st store.Store, cmd *cobra.Command) error {
			books, err := st.ListBooks(cmd.Context())
			if err != nil {
				return err
			}
			return export.WriteBooksCSV(w, books)
		}))
	cmd.AddCommand(newExportCommand(opts, "transactions-csv", "Export loan history as CSV",
		func(w io.Writer, st store.Store, cmd *cobra.Command) error {
			txns, err := st.ListTransactions(cmd.Context())
			if err != nil {
				return err
			}
			return export.WriteTransactionsCSV(w, txns)
		}))
	cmd.AddCommand(newExportCommand(opts, "books-xlsx", "Export a printable workbook with QR labels",
		func(w io.Writer, st store.Store, cmd *cobra.Command) error {
			books, err := st.ListBooks(cmd.Context())
			if err != nil {
				return err
			}
			return export.WriteBooksXLSX(w, books)
		}))
	return cmd
}

func newExportCommand(opts *RootOptions, use, short string, write func(io.Writer, store.Store, *cobra.Command) error) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
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

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return WrapExitError(ExitCommandError, "creating output file", err)
				}
				defer f.Close()
				w = f
			}

			if err := write(w, st, cmd); err != nil {
				return WrapExitError(ExitCommandError, "export failed", err)
			}
			if outPath != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}
