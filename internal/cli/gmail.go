package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/bobuk/gtools/internal/google"
)

// GmailCommand groups the Gmail commands.
func (a *App) GmailCommand() *cobra.Command {
	cmd := group("gmail", "Search, read and send Gmail messages")

	var maxResults int64
	search := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search messages with Gmail query syntax",
		Example: `  gmail search from:alice is:unread
  gmail search "subject:invoice" --max=5`,
		RunE: run(func(cmd *cobra.Command, args []string) (any, error) {
			g, err := a.gmail(cmd)
			if err != nil {
				return nil, err
			}
			return g.Search(strings.Join(args, " "), maxResults)
		}),
	}
	search.Flags().Int64Var(&maxResults, "max", 10, "maximum number of messages")

	read := &cobra.Command{
		Use:   "read <message-id>",
		Short: "Read a message with its body and attachment list",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string) (any, error) {
			g, err := a.gmail(cmd)
			if err != nil {
				return nil, err
			}
			return g.Read(args[0])
		}),
	}

	var out google.OutgoingMessage
	send := &cobra.Command{
		Use:   "send",
		Short: "Send a plain-text message",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, _ []string) (any, error) {
			if err := out.Validate(); err != nil {
				return nil, err
			}
			g, err := a.gmail(cmd)
			if err != nil {
				return nil, err
			}
			return g.Send(&out)
		}),
	}
	send.Flags().StringVar(&out.To, "to", "", "recipient addresses, comma separated")
	send.Flags().StringVar(&out.Cc, "cc", "", "cc addresses")
	send.Flags().StringVar(&out.Bcc, "bcc", "", "bcc addresses")
	send.Flags().StringVar(&out.Subject, "subject", "", "subject line")
	send.Flags().StringVar(&out.Body, "body", "", "message body")
	_ = send.MarkFlagRequired("to")

	labels := &cobra.Command{
		Use:   "labels",
		Short: "List labels",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, _ []string) (any, error) {
			g, err := a.gmail(cmd)
			if err != nil {
				return nil, err
			}
			list, err := g.Labels()
			if err != nil {
				return nil, err
			}
			return map[string]any{"labels": list}, nil
		}),
	}

	cmd.AddCommand(search, read, send, labels)
	return cmd
}

func (a *App) gmail(cmd *cobra.Command) (*google.Gmail, error) {
	opts, err := a.options(cmd.Context())
	if err != nil {
		return nil, err
	}
	return google.NewGmail(cmd.Context(), opts...)
}
