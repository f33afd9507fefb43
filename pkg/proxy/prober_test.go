package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvtuan/mmo-engine/pkg/core"
)

// proxyFromServer turns an httptest server into a Proxy record pointing at
// it, so the prober's CONNECT/GET goes straight to the test handler.
func proxyFromServer(t *testing.T, srv *httptest.Server) core.Proxy {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return core.Proxy{Host: u.Hostname(), Port: port}
}

func TestHTTPProber_Reachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	pr := NewHTTPProber("http://example.com/ip")
	err := pr.Probe(context.Background(), proxyFromServer(t, srv))
	assert.NoError(t, err)
}

func TestHTTPProber_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	pr := NewHTTPProber("http://example.com/ip")
	err := pr.Probe(context.Background(), proxyFromServer(t, srv))
	assert.ErrorContains(t, err, "probe status 502")
}

func TestHTTPProber_UnreachableProxy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	pr := NewHTTPProber("http://example.com/ip")
	pr.Timeout = time.Second
	err := pr.Probe(context.Background(), proxyFromServer(t, srv))
	assert.Error(t, err)
}

func TestNewHTTPProber_DefaultTimeout(t *testing.T) {
	pr := NewHTTPProber("http://example.com/ip")
	assert.Equal(t, 10*time.Second, pr.Timeout)
}
