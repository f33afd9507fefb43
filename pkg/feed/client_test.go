package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvtuan/mmo-engine/pkg/core"
)

func platformFor(srv *httptest.Server) core.PlatformConfig {
	return core.PlatformConfig{
		Name:    "testplat",
		BaseURL: srv.URL,
		Enabled: true,
		APIKey:  "sekrit",
	}
}

func TestClient_AvailableJobs(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jobs":[
			{"id":"j1","title":"daily poll","description":"one click","reward":0.05,"type":"survey"},
			{"id":"j2","title":"watch video","reward":0.02,"type":"video"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient()
	jobs, err := c.AvailableJobs(context.Background(), platformFor(srv))
	require.NoError(t, err)

	assert.Equal(t, "Bearer sekrit", gotAuth)
	assert.Equal(t, "/api/jobs/available", gotPath)
	require.Len(t, jobs, 2)
	assert.Equal(t, "j1", jobs[0].ID)
	assert.Equal(t, "testplat", jobs[0].Platform)
	assert.Equal(t, core.JobAvailable, jobs[0].Status)
	assert.InDelta(t, 0.05, jobs[0].Reward, 1e-9)
}

func TestClient_History_ParsesCompletedAt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/jobs/history", r.URL.Path)
		_, _ = w.Write([]byte(`{"jobs":[
			{"id":"h1","title":"done","reward":0.10,"type":"survey","status":"Completed","completed_at":"2026-08-30T10:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient()
	jobs, err := c.History(context.Background(), platformFor(srv))
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	assert.Equal(t, core.JobCompleted, jobs[0].Status)
	require.NotNil(t, jobs[0].CompletedAt)
	assert.Equal(t, 2026, jobs[0].CompletedAt.Year())
}

func TestClient_Accept(t *testing.T) {
	var mu sync.Mutex
	var posts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		mu.Lock()
		posts = append(posts, r.URL.Path)
		mu.Unlock()
	}))
	defer srv.Close()

	c := NewClient()
	err := c.Accept(context.Background(), platformFor(srv), "j42")
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/jobs/j42/accept"}, posts)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient()
	pc := platformFor(srv)

	_, err := c.AvailableJobs(context.Background(), pc)
	require.Error(t, err)
	var rce *core.RemoteCallError
	require.ErrorAs(t, err, &rce)
	assert.Equal(t, "testplat", rce.Platform)

	err = c.Accept(context.Background(), pc, "j1")
	assert.ErrorAs(t, err, &rce)
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jobs": [`))
	}))
	defer srv.Close()

	c := NewClient()
	_, err := c.AvailableJobs(context.Background(), platformFor(srv))

	var rce *core.RemoteCallError
	assert.ErrorAs(t, err, &rce)
}

func TestClient_AcceptRateLimiterPerPlatform(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := NewClient(WithAcceptRate(100, 1))
	l1 := c.limiter("a")
	l2 := c.limiter("b")

	assert.NotSame(t, l1, l2)
	assert.Same(t, l1, c.limiter("a"))
}
