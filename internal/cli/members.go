package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMembersCommand creates the members command group. Members are
// enrolled by checkout, not by hand, so the group is read-only.
func NewMembersCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Inspect enrolled members",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all members",
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

			members, err := st.ListMembers(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "listing members", err)
			}

			if opts.Format == "json" {
				f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
				return f.Success(members)
			}
			for _, m := range members {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", m.ID, m.Name, m.Phone)
			}
			return nil
		},
	})

	return cmd
}
