package google

import (
	"net/http"

	"golang.org/x/time/rate"
)

// PacedTransport waits on a token bucket before each request. It never
// retries; a 429 from the API is returned to the caller as-is.
type PacedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

// NewPacedTransport allows requestsPerSecond sustained with a burst of one
// second's worth of requests.
func NewPacedTransport(base http.RoundTripper, requestsPerSecond float64) *PacedTransport {
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &PacedTransport{
		base:    base,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

func (t *PacedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
