//nolint:noctx // Tests use http.Get for convenience
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobuk/gtools/internal/config"
)

// fakeTokenServer serves the OAuth token endpoint. Refresh tokens named
// "revoked" fail with invalid_grant.
type fakeTokenServer struct {
	*httptest.Server
	exchanges atomic.Int32
	refreshes atomic.Int32
}

func newFakeTokenServer(t *testing.T) *fakeTokenServer {
	t.Helper()
	f := &fakeTokenServer{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")

		switch r.PostForm.Get("grant_type") {
		case "authorization_code":
			f.exchanges.Add(1)
			if r.PostForm.Get("code") != "test-code" {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"error":"invalid_grant"}`)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "access-1",
				"refresh_token": "refresh-1",
				"token_type":    "Bearer",
				"expires_in":    3600,
				"scope":         "scope-a scope-b",
			})
		case "refresh_token":
			f.refreshes.Add(1)
			if r.PostForm.Get("refresh_token") == "revoked" {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"error":"invalid_grant","error_description":"Token has been expired or revoked."}`)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "access-refreshed",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(f.Close)
	return f
}

// stubBrowser replaces the browser opener with one that follows the
// authorization URL straight to the callback server.
func stubBrowser(t *testing.T, port int, code string) *atomic.Int32 {
	t.Helper()
	var opened atomic.Int32
	orig := openBrowser
	openBrowser = func(authURL string) error {
		opened.Add(1)
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		state := u.Query().Get("state")
		go func() {
			callback := fmt.Sprintf("http://127.0.0.1:%d%s?code=%s&state=%s",
				port, CallbackPath, url.QueryEscape(code), url.QueryEscape(state))
			if resp, err := http.Get(callback); err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}
	t.Cleanup(func() { openBrowser = orig })
	return &opened
}

func testConfig(t *testing.T, tokenURL string) *config.Config {
	t.Helper()
	_, work := isolate(t)
	credPath := filepath.Join(work, "client.json")
	require.NoError(t, os.WriteFile(credPath, []byte(clientSecretJSON(tokenURL)), 0o600))

	port := freePort(t, 38000, 38200)

	cfg := config.Default()
	cfg.CredentialsPath = credPath
	cfg.CallbackPort = port
	return cfg
}

func TestLogin_PersistsRefreshToken(t *testing.T) {
	tokens := newFakeTokenServer(t)
	cfg := testConfig(t, tokens.URL)
	opened := stubBrowser(t, cfg.CallbackPort, "test-code")

	a := New(cfg)
	stored, where, err := a.Login(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), opened.Load())
	assert.Equal(t, int32(1), tokens.exchanges.Load())
	assert.Equal(t, &StoredToken{RefreshToken: "refresh-1", Scope: "scope-a scope-b", TokenType: "Bearer"}, stored)
	assert.Equal(t, filepath.Join(".gtools", "token.json"), where)

	data, err := os.ReadFile(where)
	require.NoError(t, err)
	assert.JSONEq(t, `{"refresh_token":"refresh-1","scope":"scope-a scope-b","token_type":"Bearer"}`, string(data))
}

func TestLogin_StateMismatchFails(t *testing.T) {
	tokens := newFakeTokenServer(t)
	cfg := testConfig(t, tokens.URL)

	orig := openBrowser
	openBrowser = func(string) error {
		go func() {
			callback := fmt.Sprintf("http://127.0.0.1:%d%s?code=test-code&state=forged", cfg.CallbackPort, CallbackPath)
			if resp, err := http.Get(callback); err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}
	t.Cleanup(func() { openBrowser = orig })

	_, _, err := New(cfg).Login(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state mismatch")
	assert.Equal(t, int32(0), tokens.exchanges.Load())
}

func TestLogin_BadCodeFails(t *testing.T) {
	tokens := newFakeTokenServer(t)
	cfg := testConfig(t, tokens.URL)
	stubBrowser(t, cfg.CallbackPort, "wrong-code")

	_, _, err := New(cfg).Login(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to exchange authorization code")
}

func TestLogin_Timeout(t *testing.T) {
	tokens := newFakeTokenServer(t)
	cfg := testConfig(t, tokens.URL)

	orig := openBrowser
	openBrowser = func(string) error { return nil }
	t.Cleanup(func() { openBrowser = orig })

	a := New(cfg)
	a.timeout = 50 * time.Millisecond

	_, _, err := a.Login(context.Background())
	assert.ErrorIs(t, err, ErrCallbackTimeout)
}

func TestTokenSource_UsesStoredToken(t *testing.T) {
	tokens := newFakeTokenServer(t)
	cfg := testConfig(t, tokens.URL)
	opened := stubBrowser(t, cfg.CallbackPort, "test-code")
	require.NoError(t, os.WriteFile("token.json", []byte(`{"refresh_token":"stored","token_type":"Bearer"}`), 0o600))

	ts, err := New(cfg).TokenSource(context.Background())
	require.NoError(t, err)

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-refreshed", tok.AccessToken)
	assert.Equal(t, int32(0), opened.Load())
	assert.Equal(t, int32(1), tokens.refreshes.Load())
}

func TestTokenSource_LogsInWithoutToken(t *testing.T) {
	tokens := newFakeTokenServer(t)
	cfg := testConfig(t, tokens.URL)
	opened := stubBrowser(t, cfg.CallbackPort, "test-code")

	ts, err := New(cfg).TokenSource(context.Background())
	require.NoError(t, err)

	_, err = ts.Token()
	require.NoError(t, err)
	assert.Equal(t, int32(1), opened.Load())
	assert.FileExists(t, filepath.Join(".gtools", "token.json"))
}

func TestTokenSource_RevokedTokenTriggersLogin(t *testing.T) {
	tokens := newFakeTokenServer(t)
	cfg := testConfig(t, tokens.URL)
	opened := stubBrowser(t, cfg.CallbackPort, "test-code")
	require.NoError(t, os.WriteFile("token.json", []byte(`{"refresh_token":"revoked"}`), 0o600))

	ts, err := New(cfg).TokenSource(context.Background())
	require.NoError(t, err)

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-refreshed", tok.AccessToken)
	assert.Equal(t, int32(1), opened.Load())
	assert.Equal(t, int32(1), tokens.exchanges.Load())
}

func TestStatus(t *testing.T) {
	tokens := newFakeTokenServer(t)
	cfg := testConfig(t, tokens.URL)
	a := New(cfg)

	status, err := a.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Authenticated)
	assert.Equal(t, cfg.CredentialsPath, status.CredentialsPath)
	assert.Equal(t, filepath.Join(".gtools", "token.json"), status.TokenPath)

	require.NoError(t, os.WriteFile("token.json", []byte(`{"refresh_token":"r","scope":"s"}`), 0o600))
	status, err = a.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Authenticated)
	assert.Equal(t, "token.json", status.TokenPath)
	assert.Equal(t, "s", status.Scope)
	assert.Equal(t, int32(0), tokens.refreshes.Load())
}

func TestStatus_NoCredentials(t *testing.T) {
	isolate(t)

	status, err := New(config.Default()).Status(context.Background())
	require.NoError(t, err)
	assert.Empty(t, status.CredentialsPath)
	assert.False(t, status.Authenticated)
}

func TestLogout(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("token.json", []byte(`{"refresh_token":"r"}`), 0o600))

	removed, err := New(config.Default()).Logout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"token.json"}, removed)
	assert.NoFileExists(t, "token.json")
}
