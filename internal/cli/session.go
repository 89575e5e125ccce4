package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/diwanlib/circulate/internal/catalog"
	"github.com/diwanlib/circulate/internal/circulation"
	"github.com/diwanlib/circulate/internal/scanner"
)

// NewSessionCommand creates the session command: one scan-driven checkout
// or checkin over stdin. Each line of input is one decoded scan; the
// session ends when the operation completes or input runs out.
func NewSessionCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Run a scan session on the terminal",
	}
	cmd.AddCommand(newSessionOpCommand(opts, "checkout", "Check a book out to a member"))
	cmd.AddCommand(newSessionOpCommand(opts, "checkin", "Check a returned book back in"))
	return cmd
}

func newSessionOpCommand(opts *RootOptions, op, short string) *cobra.Command {
	var memberName, memberPhone string

	cmd := &cobra.Command{
		Use:   op,
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

			src := scanner.NewLineSource(cmd.InOrStdin())
			notifier := newConsoleNotifier(cmd.OutOrStdout())
			engine := circulation.New(st, src,
				circulation.WithCooldown(cfg.Scan.Cooldown()),
				circulation.WithNotifier(notifier),
				circulation.WithPrompter(circulation.PrompterFunc(
					func(context.Context) (string, string, error) {
						return memberName, memberPhone, nil
					})),
			)
			return runSession(cmd, engine, src, notifier, op)
		},
	}

	if op == "checkout" {
		cmd.Flags().StringVar(&memberName, "member", "", "member name for the loan (enrolled if new)")
		cmd.Flags().StringVar(&memberPhone, "phone", "", "phone number for a newly enrolled member")
	}
	return cmd
}

func runSession(cmd *cobra.Command, engine *circulation.Engine, src *scanner.LineSource, notifier *consoleNotifier, op string) error {
	ctx := cmd.Context()

	var err error
	if op == "checkout" {
		err = engine.StartCheckout(ctx)
	} else {
		err = engine.StartCheckin(ctx)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot start session", err)
	}
	defer engine.Cancel()

	select {
	case <-notifier.completed:
		return nil
	case <-src.Done():
		// The last line of input can both complete the operation and end
		// the stream; completion wins.
		select {
		case <-notifier.completed:
			return nil
		default:
		}
		return NewExitError(ExitFailure, "input ended before the operation completed")
	case <-ctx.Done():
		return WrapExitError(ExitCommandError, "session interrupted", ctx.Err())
	}
}

// consoleNotifier renders engine notices for the terminal and signals
// operation completion.
type consoleNotifier struct {
	w         io.Writer
	completed chan struct{}
}

func newConsoleNotifier(w io.Writer) *consoleNotifier {
	return &consoleNotifier{w: w, completed: make(chan struct{})}
}

func (n *consoleNotifier) MemberSelected(m catalog.Member) {
	fmt.Fprintf(n.w, "Member: %s (%s)\n", m.Name, m.ID)
}

func (n *consoleNotifier) MemberEnrolled(m catalog.Member) {
	fmt.Fprintf(n.w, "Enrolled new member: %s (%s)\n", m.Name, m.ID)
}

func (n *consoleNotifier) CheckedOut(b catalog.Book, m catalog.Member, due time.Time) {
	fmt.Fprintf(n.w, "Checked out %q to %s, due %s\n", b.Title, m.Name, due.Format(time.DateOnly))
	close(n.completed)
}

func (n *consoleNotifier) CheckedIn(b catalog.Book) {
	fmt.Fprintf(n.w, "Checked in %q\n", b.Title)
	close(n.completed)
}

func (n *consoleNotifier) ScanRejected(code string, err error) {
	fmt.Fprintf(n.w, "Scan rejected (%s): %v\n", code, err)
}
