package auth

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/bobuk/gtools/internal/config"
	"github.com/bobuk/gtools/internal/logger"
)

// LoginTimeout bounds how long the flow waits for the browser redirect.
const LoginTimeout = 5 * time.Minute

// openBrowser is replaced in tests.
var openBrowser = OpenBrowser

// NewStore returns the token store selected by the config.
func NewStore(cfg *config.Config) TokenStore {
	if cfg.TokenStore == config.TokenStoreSQLite {
		return NewSQLiteStore(filepath.Join(cfg.DataDir(), DBFileName), cfg.Account)
	}
	return NewFileStore(TokenPaths(cfg))
}

// Authenticator resolves credentials and tokens and runs the login flow when
// no usable token exists.
type Authenticator struct {
	cfg     *config.Config
	store   TokenStore
	timeout time.Duration
}

// New creates an Authenticator using the store selected by cfg.
func New(cfg *config.Config) *Authenticator {
	return NewWithStore(cfg, NewStore(cfg))
}

// NewWithStore creates an Authenticator over an explicit store.
func NewWithStore(cfg *config.Config, store TokenStore) *Authenticator {
	return &Authenticator{cfg: cfg, store: store, timeout: LoginTimeout}
}

// Status is a network-free summary of the current auth state.
type Status struct {
	CredentialsPath string `json:"credentials_path,omitempty"`
	TokenPath       string `json:"token_path,omitempty"`
	Authenticated   bool   `json:"authenticated"`
	Scope           string `json:"scope,omitempty"`
}

// Status reports where credentials and the token resolve from.
func (a *Authenticator) Status(ctx context.Context) (*Status, error) {
	_, credPath, err := LoadOAuthConfig(a.cfg)
	if err != nil && !errors.Is(err, ErrNoCredentials) {
		return nil, err
	}

	status := &Status{CredentialsPath: credPath}
	stored, where, err := a.store.Load(ctx)
	switch {
	case errors.Is(err, ErrNoToken):
		status.TokenPath = a.store.Location()
	case err != nil:
		return nil, err
	default:
		status.TokenPath = where
		status.Authenticated = true
		status.Scope = stored.Scope
	}
	return status, nil
}

// Login runs the installed-app flow unconditionally and persists the result.
func (a *Authenticator) Login(ctx context.Context) (*StoredToken, string, error) {
	oauthConfig, source, err := LoadOAuthConfig(a.cfg)
	if err != nil {
		return nil, "", err
	}
	logger.Info("Using OAuth client from %s", source)
	return a.login(ctx, oauthConfig)
}

// Logout removes every stored token. Nothing is revoked remotely.
func (a *Authenticator) Logout(ctx context.Context) ([]string, error) {
	return a.store.Remove(ctx)
}

// TokenSource returns a token source for API calls, logging in first when
// there is no stored token or the stored one has been revoked.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	oauthConfig, source, err := LoadOAuthConfig(a.cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Using OAuth client from %s", source)

	stored, where, err := a.store.Load(ctx)
	if errors.Is(err, ErrNoToken) {
		logger.Prompt("No token found. Obtaining a new token.")
		stored, where, err = a.login(ctx, oauthConfig)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("Using token from %s", where)

	ts := oauthConfig.TokenSource(ctx, stored.OAuth2())
	if _, err := ts.Token(); err != nil {
		if !isRevoked(err) {
			return nil, fmt.Errorf("error refreshing token: %w", err)
		}
		logger.Prompt("Token expired or revoked. Obtaining a new token.")
		stored, _, err = a.login(ctx, oauthConfig)
		if err != nil {
			return nil, err
		}
		ts = oauthConfig.TokenSource(ctx, stored.OAuth2())
	}
	return ts, nil
}

func (a *Authenticator) login(ctx context.Context, oauthConfig *oauth2.Config) (*StoredToken, string, error) {
	state := uuid.NewString()
	server := NewCallbackServer(a.cfg.CallbackPort, state)
	if err := server.Start(); err != nil {
		return nil, "", err
	}
	defer server.Stop()
	logger.Debug("Waiting for the redirect on port %d", server.Port())

	authURL := oauthConfig.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	logger.Prompt("Open the following link in your browser to authorize access:\n%s", authURL)
	if err := openBrowser(authURL); err != nil {
		logger.Debug("Could not open browser: %v", err)
	}

	code, err := server.WaitForCode(ctx, a.timeout)
	if err != nil {
		return nil, "", err
	}

	tok, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("unable to exchange authorization code: %w", err)
	}
	if tok.RefreshToken == "" {
		return nil, "", errors.New("authorization server returned no refresh token")
	}

	stored := NewStoredToken(tok)
	where, err := a.store.Save(ctx, stored)
	if err != nil {
		return nil, "", err
	}
	return stored, where, nil
}

func isRevoked(err error) bool {
	var rErr *oauth2.RetrieveError
	return errors.As(err, &rErr) && rErr.ErrorCode == "invalid_grant"
}
