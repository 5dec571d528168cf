package cli

import (
	"github.com/spf13/cobra"

	"github.com/bobuk/gtools/internal/auth"
)

// AuthCommand manages the stored OAuth token.
func (a *App) AuthCommand() *cobra.Command {
	cmd := group("auth", "Sign in to Google and manage the stored token")

	login := &cobra.Command{
		Use:   "login",
		Short: "Run the browser sign-in flow and store a refresh token",
		Long: `Start a local listener on the callback port, open the Google consent
screen, and store the refresh token once the redirect arrives. The flow
gives up after five minutes.`,
		Args: cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, _ []string) (any, error) {
			stored, where, err := auth.New(a.config).Login(cmd.Context())
			if err != nil {
				return nil, err
			}
			return map[string]string{"token_path": where, "scope": stored.Scope}, nil
		}),
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show where credentials and the token are read from",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, _ []string) (any, error) {
			return auth.New(a.config).Status(cmd.Context())
		}),
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored token",
		Long:  "Delete every stored copy of the token. The grant is not revoked with Google.",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, _ []string) (any, error) {
			removed, err := auth.New(a.config).Logout(cmd.Context())
			if err != nil {
				return nil, err
			}
			return map[string][]string{"removed": removed}, nil
		}),
	}

	cmd.AddCommand(login, status, logout)
	return cmd
}
