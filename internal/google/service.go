// Package google wraps the generated Google API clients used by gtools and
// maps their responses into the flat structures printed in the envelope.
package google

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/bobuk/gtools/internal/config"
)

// HTTPClient builds the authenticated client every service shares. Requests
// are paced when the config sets requests_per_second.
func HTTPClient(ts oauth2.TokenSource, cfg *config.Config) *http.Client {
	var base http.RoundTripper = http.DefaultTransport
	if cfg.RequestsPerSecond > 0 {
		base = NewPacedTransport(base, cfg.RequestsPerSecond)
	}
	return &http.Client{
		Transport: &oauth2.Transport{Source: ts, Base: base},
		Timeout:   cfg.Timeout.Duration,
	}
}

// ClientOptions returns the options passed to every New* constructor.
func ClientOptions(_ context.Context, ts oauth2.TokenSource, cfg *config.Config) []option.ClientOption {
	return []option.ClientOption{
		option.WithHTTPClient(HTTPClient(ts, cfg)),
		option.WithUserAgent("gtools"),
	}
}

// thumbnailURL picks the best available thumbnail.
func thumbnailURL(high, medium, def string) string {
	switch {
	case high != "":
		return high
	case medium != "":
		return medium
	default:
		return def
	}
}
