package proxy

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nvtuan/mmo-engine/pkg/core"
)

// Prober performs a reachability probe against one proxy endpoint.
type Prober interface {
	Probe(ctx context.Context, p core.Proxy) error
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, p core.Proxy) error

func (f ProberFunc) Probe(ctx context.Context, p core.Proxy) error { return f(ctx, p) }

// HTTPProber probes by issuing a GET to a stable external endpoint through
// the candidate proxy. Any 2xx response counts as reachable.
type HTTPProber struct {
	TestURL string
	Timeout time.Duration
}

// NewHTTPProber creates a prober against testURL with a 10 second timeout.
func NewHTTPProber(testURL string) *HTTPProber {
	return &HTTPProber{TestURL: testURL, Timeout: 10 * time.Second}
}

// Probe dials TestURL through p.
func (h *HTTPProber) Probe(ctx context.Context, p core.Proxy) error {
	client := &http.Client{
		Timeout: h.Timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyURL(p.URL()),
		},
	}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.TestURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("probe status %d", resp.StatusCode)
	}
	return nil
}
