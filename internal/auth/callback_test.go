//nolint:noctx // Tests use http.Get for convenience
package auth

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freePort returns the first port in [start, end] that can be bound.
func freePort(t *testing.T, start, end int) int {
	t.Helper()
	for port := start; port <= end; port++ {
		l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			l.Close()
			return port
		}
	}
	t.Fatalf("no free port in %d-%d", start, end)
	return 0
}

func startServer(t *testing.T, state string) *CallbackServer {
	t.Helper()
	port := freePort(t, 38300, 38500)

	server := NewCallbackServer(port, state)
	require.NoError(t, server.Start())
	t.Cleanup(func() { server.Stop() })
	return server
}

func get(t *testing.T, server *CallbackServer, query string) (int, string) {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d%s?%s", server.Port(), CallbackPath, query))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestNewCallbackServer(t *testing.T) {
	server := NewCallbackServer(9090, "state")

	require.NotNil(t, server)
	assert.Equal(t, 9090, server.Port())
	assert.Equal(t, "state", server.expectedState)
	assert.Nil(t, server.server)
}

func TestCallbackServer_EphemeralPort(t *testing.T) {
	server := NewCallbackServer(0, "state")
	require.NoError(t, server.Start())
	t.Cleanup(func() { server.Stop() })

	assert.NotZero(t, server.Port())
	code, _ := get(t, server, "state=state&code=c")
	assert.Equal(t, http.StatusOK, code)
}

func TestCallbackServer_PortInUse(t *testing.T) {
	first := startServer(t, "a")

	second := NewCallbackServer(first.Port(), "b")
	err := second.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

func TestCallbackServer_StopNotStarted(t *testing.T) {
	assert.NoError(t, NewCallbackServer(9090, "x").Stop())
}

func TestCallbackServer_Success(t *testing.T) {
	server := startServer(t, "good")

	status, body := get(t, server, "code=abc&state=good")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Authorization complete")

	code, err := server.WaitForCode(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "abc", code)
}

func TestCallbackServer_StateMismatch(t *testing.T) {
	server := startServer(t, "good")

	status, _ := get(t, server, "code=abc&state=bad")
	assert.Equal(t, http.StatusBadRequest, status)

	_, err := server.WaitForCode(context.Background(), time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state mismatch")
}

func TestCallbackServer_MissingCode(t *testing.T) {
	server := startServer(t, "good")

	status, _ := get(t, server, "state=good")
	assert.Equal(t, http.StatusBadRequest, status)

	_, err := server.WaitForCode(context.Background(), time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no code received")
}

func TestCallbackServer_ProviderError(t *testing.T) {
	server := startServer(t, "good")

	_, body := get(t, server, "error=access_denied&state=good")
	assert.Contains(t, body, "access_denied")

	_, err := server.WaitForCode(context.Background(), time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authorization denied: access_denied")
}

func TestCallbackServer_Timeout(t *testing.T) {
	server := startServer(t, "good")

	_, err := server.WaitForCode(context.Background(), 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrCallbackTimeout)
}

func TestCallbackServer_ContextCanceled(t *testing.T) {
	server := startServer(t, "good")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := server.WaitForCode(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedirectURL(t *testing.T) {
	assert.Equal(t, "http://localhost:3000/oauth2callback", RedirectURL(3000))
}

func TestCallbackHTML_Escapes(t *testing.T) {
	assert.Contains(t, callbackHTML("<script>"), "&lt;script&gt;")
}
