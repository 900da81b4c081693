package sources

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// defaultFetchTimeout bounds every outbound request so a hung venue site
// cannot stall an orchestrator run.
const defaultFetchTimeout = 30 * time.Second

// politeTransport paces outbound requests through a rate limiter before
// handing them to the underlying transport. Venue sites are small; hammering
// them gets aggregators blocked.
type politeTransport struct {
	limiter *rate.Limiter
	next    http.RoundTripper
}

func (t *politeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(req)
}

// NewPoliteClient returns an HTTP client with a bounded timeout and a shared
// requests-per-second ceiling. A zero or negative rps disables pacing; a zero
// timeout falls back to the default.
func NewPoliteClient(rps float64, burst int, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	client := &http.Client{Timeout: timeout}
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		client.Transport = &politeTransport{
			limiter: rate.NewLimiter(rate.Limit(rps), burst),
			next:    http.DefaultTransport,
		}
	}
	return client
}
