package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bobuk/gtools/internal/google"
)

// DocsCommand groups the Google Docs commands.
func (a *App) DocsCommand() *cobra.Command {
	cmd := group("docs", "Read, create and append to Google Docs as plain text")

	read := &cobra.Command{
		Use:   "read <document-id>",
		Short: "Print a document's text",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string) (any, error) {
			g, err := a.docs(cmd)
			if err != nil {
				return nil, err
			}
			return g.Read(args[0])
		}),
	}

	var title, initial string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a document, optionally with initial text",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, _ []string) (any, error) {
			if strings.TrimSpace(title) == "" {
				return nil, errors.New("--title must not be empty")
			}
			g, err := a.docs(cmd)
			if err != nil {
				return nil, err
			}
			return g.Create(title, initial)
		}),
	}
	create.Flags().StringVar(&title, "title", "", "document title")
	create.Flags().StringVar(&initial, "text", "", "initial body text")
	_ = create.MarkFlagRequired("title")

	var text string
	appendCmd := &cobra.Command{
		Use:   "append <document-id>",
		Short: "Append text to the end of a document",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string) (any, error) {
			if text == "" {
				return nil, errors.New("--text must not be empty")
			}
			g, err := a.docs(cmd)
			if err != nil {
				return nil, err
			}
			return g.Append(args[0], text)
		}),
	}
	appendCmd.Flags().StringVar(&text, "text", "", "text to append")
	_ = appendCmd.MarkFlagRequired("text")

	cmd.AddCommand(read, create, appendCmd)
	return cmd
}

func (a *App) docs(cmd *cobra.Command) (*google.Docs, error) {
	opts, err := a.options(cmd.Context())
	if err != nil {
		return nil, err
	}
	return google.NewDocs(cmd.Context(), opts...)
}
