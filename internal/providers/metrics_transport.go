package providers

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

type metricsTransport struct {
	metrics MetricsProviderInterface
	next    http.RoundTripper
}

// MetricsTransport instruments outbound requests. A nil next uses
// http.DefaultTransport.
func MetricsTransport(metrics MetricsProviderInterface, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &metricsTransport{metrics: metrics, next: next}
}

func (t *metricsTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	endpoint := EndpointLabel(r.URL.Path)

	resp, err := t.next.RoundTrip(r)

	t.metrics.ObserveRequestDuration(endpoint, time.Since(start))
	if err != nil {
		t.metrics.IncNetworkErrors(endpoint)
		return nil, err
	}
	t.metrics.IncRequestsTotal(endpoint, resp.StatusCode)
	if resp.StatusCode == http.StatusUnauthorized {
		t.metrics.IncUnauthorized()
	}
	return resp, nil
}

// EndpointLabel collapses numeric path segments so per-game URLs share a
// label: /games/12 becomes /games/:id.
func EndpointLabel(path string) string {
	if path == "" {
		return "/"
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if _, err := strconv.ParseUint(p, 10, 64); err == nil {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
