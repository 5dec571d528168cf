package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2/google"

	"github.com/bobuk/gtools/internal/config"
)

// isolate points HOME and the working directory at empty temp dirs.
func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home = t.TempDir()
	work = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(CredentialsEnv, "")
	t.Chdir(work)
	return home, work
}

func clientSecretJSON(tokenURL string) string {
	return `{"installed":{
		"client_id":"test-client",
		"client_secret":"test-secret",
		"auth_uri":"https://accounts.example.com/auth",
		"token_uri":"` + tokenURL + `",
		"redirect_uris":["http://localhost"]
	}}`
}

func TestCredentialPaths_Order(t *testing.T) {
	home, _ := isolate(t)

	paths := CredentialPaths(config.Default())
	assert.Equal(t, []string{
		filepath.Join(home, ".config", "gtools", "credentials.json"),
		"credentials.json",
	}, paths)
}

func TestCredentialPaths_ConfigBeatsEnv(t *testing.T) {
	isolate(t)
	t.Setenv(CredentialsEnv, "/env/creds.json")

	cfg := config.Default()
	assert.Equal(t, "/env/creds.json", CredentialPaths(cfg)[0])

	cfg.CredentialsPath = "/cfg/creds.json"
	assert.Equal(t, "/cfg/creds.json", CredentialPaths(cfg)[0])
}

func TestLoadOAuthConfig_Inline(t *testing.T) {
	isolate(t)
	cfg := config.Default()
	cfg.ClientID = "id"
	cfg.ClientSecret = "secret"
	cfg.CallbackPort = 4000

	oauthConfig, _, err := LoadOAuthConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "id", oauthConfig.ClientID)
	assert.Equal(t, "secret", oauthConfig.ClientSecret)
	assert.Equal(t, google.Endpoint, oauthConfig.Endpoint)
	assert.Equal(t, "http://localhost:4000/oauth2callback", oauthConfig.RedirectURL)
	assert.Equal(t, Scopes, oauthConfig.Scopes)
}

func TestLoadOAuthConfig_ConfiguredPath(t *testing.T) {
	_, work := isolate(t)
	path := filepath.Join(work, "client.json")
	require.NoError(t, os.WriteFile(path, []byte(clientSecretJSON("https://token.example.com")), 0o600))

	cfg := config.Default()
	cfg.CredentialsPath = path

	oauthConfig, source, err := LoadOAuthConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, path, source)
	assert.Equal(t, "test-client", oauthConfig.ClientID)
	assert.Equal(t, "https://token.example.com", oauthConfig.Endpoint.TokenURL)
	assert.Equal(t, RedirectURL(3000), oauthConfig.RedirectURL)
}

func TestLoadOAuthConfig_LegacyPath(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("credentials.json", []byte(clientSecretJSON("https://t")), 0o600))

	_, source, err := LoadOAuthConfig(config.Default())
	require.NoError(t, err)
	assert.Equal(t, "credentials.json", source)
}

func TestLoadOAuthConfig_Missing(t *testing.T) {
	isolate(t)

	_, _, err := LoadOAuthConfig(config.Default())
	require.ErrorIs(t, err, ErrNoCredentials)
	assert.Contains(t, err.Error(), "credentials.json")
}

func TestLoadOAuthConfig_Malformed(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("credentials.json", []byte(`{"nope":1}`), 0o600))

	_, _, err := LoadOAuthConfig(config.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to parse client secret file")
}
