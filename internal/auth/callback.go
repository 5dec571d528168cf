package auth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

// ErrCallbackTimeout is returned when no redirect arrives in time.
var ErrCallbackTimeout = errors.New("timed out waiting for authorization callback")

// CallbackServer receives the OAuth redirect on a local port.
type CallbackServer struct {
	mu            sync.Mutex
	port          int
	expectedState string
	codeChan      chan string
	errChan       chan error
	server        *http.Server
	listener      net.Listener
}

// NewCallbackServer creates a callback server that accepts only redirects
// carrying expectedState.
func NewCallbackServer(port int, expectedState string) *CallbackServer {
	return &CallbackServer{
		port:          port,
		expectedState: expectedState,
		codeChan:      make(chan string, 1),
		errChan:       make(chan error, 1),
	}
}

// Start listens on 127.0.0.1 at the configured port.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, s.handleCallback)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.fail(err)
		}
	}()

	return nil
}

func (s *CallbackServer) fail(err error) {
	select {
	case s.errChan <- err:
	default:
	}
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if errParam := query.Get("error"); errParam != "" {
		s.fail(fmt.Errorf("authorization denied: %s", errParam))
		fmt.Fprint(w, callbackHTML("Authorization failed: "+errParam))
		return
	}

	if state := query.Get("state"); state != s.expectedState {
		s.fail(errors.New("authorization failed: state mismatch"))
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, callbackHTML("Authorization failed: invalid state parameter"))
		return
	}

	code := query.Get("code")
	if code == "" {
		s.fail(errors.New("authorization failed: no code received"))
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, callbackHTML("Authorization failed: no code received"))
		return
	}

	select {
	case s.codeChan <- code:
	default:
	}
	fmt.Fprint(w, callbackHTML("Authorization complete. You can close this window."))
}

// WaitForCode blocks until a code arrives, the callback fails, the timeout
// passes, or ctx is done.
func (s *CallbackServer) WaitForCode(ctx context.Context, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case code := <-s.codeChan:
		return code, nil
	case err := <-s.errChan:
		return "", err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrCallbackTimeout
		}
		return "", ctx.Err()
	}
}

// Stop shuts the server down. Safe to call on a server that never started.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Port returns the port the server listens on.
func (s *CallbackServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

func callbackHTML(message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>gtools</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 20vh;">
<h1>%s</h1>
</body>
</html>`, html.EscapeString(message))
}

// OpenBrowser opens url in the default browser.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
