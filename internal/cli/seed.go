package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diwanlib/circulate/internal/catalog"
)

// SampleBooks is the starter catalog inserted by the seed command.
var SampleBooks = []catalog.Book{
	{Title: "Fundamentals of Nursing", Author: "Patricia Potter", TTICode: "TTI001", ISBN: "9780323673587", Category: "Nursing"},
	{Title: "Principles of Management", Author: "Stephen Robbins", TTICode: "TTI002", ISBN: "9780134486833", Category: "Business Administration"},
	{Title: "Clinical Laboratory Science", Author: "Doig Kaplan", TTICode: "TTI003", ISBN: "9780323711234", Category: "Medical Laboratory Technician"},
	{Title: "Yearbook Design Fundamentals", Author: "Sarah Mitchell", TTICode: "TTI016", ISBN: "9781234567890", Category: "Yearbook Publishing"},
	{Title: "Digital Photography for Yearbooks", Author: "Robert Chen", TTICode: "TTI017", ISBN: "9781234567891", Category: "Yearbook Publishing"},
}

// NewSeedCommand creates the seed command: inserts the sample catalog into
// an empty store. A non-empty catalog is left untouched; seeding twice
// must not duplicate books.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample catalog into an empty store",
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
			existing, err := st.ListBooks(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "listing books", err)
			}
			if len(existing) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Catalog already has %d books, nothing seeded\n", len(existing))
				return nil
			}

			for _, b := range SampleBooks {
				b.Status = catalog.StatusAvailable
				if _, err := st.CreateBook(ctx, b); err != nil {
					return WrapExitError(ExitCommandError, fmt.Sprintf("seeding %q", b.Title), err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d books\n", len(SampleBooks))
			return nil
		},
	}
}
