package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diwanlib/circulate/internal/catalog"
)

// NewBooksCommand creates the books command group.
func NewBooksCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Manage the book catalog",
	}
	cmd.AddCommand(newBooksListCommand(opts))
	cmd.AddCommand(newBooksAddCommand(opts))
	cmd.AddCommand(newBooksDeleteCommand(opts))
	cmd.AddCommand(newBooksCodesCommand(opts))
	return cmd
}

func newBooksListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all books",
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

			books, err := st.ListBooks(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "listing books", err)
			}

			if opts.Format == "json" {
				f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
				return f.Success(books)
			}
			for _, b := range books {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, b.TTICode, b.Status)
			}
			return nil
		},
	}
}

func newBooksAddCommand(opts *RootOptions) *cobra.Command {
	var book catalog.Book

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(book.Title) == "" || strings.TrimSpace(book.Author) == "" {
				return NewExitError(ExitCommandError, "--title and --author are required")
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			book.Status = catalog.StatusAvailable
			created, err := st.CreateBook(cmd.Context(), book)
			if err != nil {
				return WrapExitError(ExitCommandError, "adding book", err)
			}

			if opts.Format == "json" {
				f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
				return f.Success(created)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q (id %d, label %s)\n", created.Title, created.ID, created.CanonicalCode())
			return nil
		},
	}

	cmd.Flags().StringVar(&book.Title, "title", "", "book title")
	cmd.Flags().StringVar(&book.Author, "author", "", "book author")
	cmd.Flags().StringVar(&book.TTICode, "tti", "", "TTI code (unique catalog identifier)")
	cmd.Flags().StringVar(&book.ISBN, "isbn", "", "ISBN")
	cmd.Flags().StringVar(&book.Category, "category", "", "category")
	return cmd
}

func newBooksDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return NewExitError(ExitCommandError, "book id must be numeric")
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteBook(cmd.Context(), id); err != nil {
				return WrapExitError(ExitFailure, "deleting book", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted book %d\n", id)
			return nil
		},
	}
}

// newBooksCodesCommand prints the canonical label code for each book, the
// exact strings the QR labels encode.
func newBooksCodesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "codes",
		Short: "Print canonical label codes for all books",
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

			books, err := st.ListBooks(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "listing books", err)
			}

			if opts.Format == "json" {
				type labeled struct {
					ID    int64  `json:"id"`
					Title string `json:"title"`
					Code  string `json:"code"`
				}
				out := make([]labeled, 0, len(books))
				for _, b := range books {
					out = append(out, labeled{ID: b.ID, Title: b.Title, Code: b.CanonicalCode()})
				}
				f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
				return f.Success(out)
			}
			for _, b := range books {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", b.CanonicalCode(), b.Title)
			}
			return nil
		},
	}
}
