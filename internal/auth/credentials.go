// Package auth implements the shared OAuth2 installed-app flow: resolving the
// client credentials, persisting the refresh token, and running the local
// callback listener that receives the authorization code.
package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/sheets/v4"
	"google.golang.org/api/youtube/v3"

	"github.com/bobuk/gtools/internal/config"
)

// CredentialsEnv names a credentials file when the config does not.
const CredentialsEnv = "GTOOLS_CREDENTIALS"

// CallbackPath is the path the redirect URI points at.
const CallbackPath = "/oauth2callback"

// Scopes is every scope any tool needs, so a single login serves all of them.
var Scopes = []string{
	gmail.GmailModifyScope,
	gmail.GmailSendScope,
	calendar.CalendarScope,
	sheets.SpreadsheetsScope,
	docs.DocumentsScope,
	youtube.YoutubeReadonlyScope,
}

// ErrNoCredentials is returned when no OAuth client could be found.
var ErrNoCredentials = errors.New("no OAuth client credentials found")

// CredentialPaths returns the client secret files tried, in order: the
// configured path (config, then environment, then the default location),
// then the legacy path in the working directory.
func CredentialPaths(cfg *config.Config) []string {
	configured := cfg.CredentialsPath
	if configured == "" {
		configured = os.Getenv(CredentialsEnv)
	}
	if configured == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configured = filepath.Join(home, ".config", "gtools", "credentials.json")
		}
	}

	var paths []string
	if configured != "" {
		paths = append(paths, configured)
	}
	return append(paths, "credentials.json")
}

// RedirectURL is the redirect URI registered for the callback port.
func RedirectURL(port int) string {
	return fmt.Sprintf("http://localhost:%d%s", port, CallbackPath)
}

// LoadOAuthConfig builds the oauth2 client configuration and reports where it
// came from. Inline client_id/client_secret in the config file win over any
// credentials file.
func LoadOAuthConfig(cfg *config.Config) (*oauth2.Config, string, error) {
	redirect := RedirectURL(cfg.CallbackPort)

	if cfg.HasInlineClient() {
		return &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  redirect,
			Scopes:       Scopes,
		}, cfg.Path, nil
	}

	paths := CredentialPaths(cfg)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("unable to read client secret file %s: %w", path, err)
		}

		oauthConfig, err := google.ConfigFromJSON(data, Scopes...)
		if err != nil {
			return nil, "", fmt.Errorf("unable to parse client secret file %s: %w", path, err)
		}
		oauthConfig.RedirectURL = redirect
		return oauthConfig, path, nil
	}

	return nil, "", fmt.Errorf("%w (tried %s)", ErrNoCredentials, strings.Join(paths, ", "))
}
