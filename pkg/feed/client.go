package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nvtuan/mmo-engine/pkg/core"
)

// API is the remote job-platform contract the feed polls against.
type API interface {
	AvailableJobs(ctx context.Context, pc core.PlatformConfig) ([]core.Job, error)
	Accept(ctx context.Context, pc core.PlatformConfig, jobID string) error
	History(ctx context.Context, pc core.PlatformConfig) ([]core.Job, error)
}

// Client talks HTTP to job platforms, authenticated with the platform's
// bearer credential. Accept calls go through a per-platform rate limiter so
// a burst of available jobs does not hammer one platform.
type Client struct {
	http       *http.Client
	acceptRate rate.Limit
	burst      int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// ClientOption configures a Client.
type ClientOption interface {
	apply(*Client)
}

type clientOptionFunc func(*Client)

func (f clientOptionFunc) apply(c *Client) { f(c) }

// WithHTTPClient replaces the default HTTP client, e.g. to route requests
// through the active proxy transport.
func WithHTTPClient(h *http.Client) ClientOption {
	return clientOptionFunc(func(c *Client) { c.http = h })
}

// WithAcceptRate tunes the per-platform accept limiter.
func WithAcceptRate(r rate.Limit, burst int) ClientOption {
	return clientOptionFunc(func(c *Client) {
		c.acceptRate = r
		c.burst = burst
	})
}

// NewClient creates a Client with a 15 second request timeout and a
// 5-per-second accept limiter per platform.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:       &http.Client{Timeout: 15 * time.Second},
		acceptRate: rate.Limit(5),
		burst:      5,
		limiters:   make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	return c
}

func (c *Client) limiter(platform string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[platform]
	if !ok {
		l = rate.NewLimiter(c.acceptRate, c.burst)
		c.limiters[platform] = l
	}
	return l
}

// jobsEnvelope is the wire shape of list responses.
type jobsEnvelope struct {
	Jobs []wireJob `json:"jobs"`
}

type wireJob struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Reward      float64 `json:"reward"`
	Type        string  `json:"type"`
	Status      string  `json:"status,omitempty"`
	CompletedAt string  `json:"completed_at,omitempty"`
}

func (w wireJob) toJob(platform string) core.Job {
	j := core.Job{
		ID:          w.ID,
		Platform:    platform,
		Title:       w.Title,
		Description: w.Description,
		Reward:      w.Reward,
		Type:        w.Type,
		Status:      core.JobAvailable,
	}
	if w.Status != "" {
		j.Status = core.JobStatus(w.Status)
	}
	if w.CompletedAt != "" {
		if t, err := time.Parse(time.RFC3339, w.CompletedAt); err == nil {
			j.CompletedAt = &t
		}
	}
	return j
}

// AvailableJobs fetches the platform's currently open jobs.
func (c *Client) AvailableJobs(ctx context.Context, pc core.PlatformConfig) ([]core.Job, error) {
	return c.list(ctx, pc, "/api/jobs/available", "available jobs")
}

// History fetches the platform's completed-job history.
func (c *Client) History(ctx context.Context, pc core.PlatformConfig) ([]core.Job, error) {
	return c.list(ctx, pc, "/api/jobs/history", "job history")
}

func (c *Client) list(ctx context.Context, pc core.PlatformConfig, path, op string) ([]core.Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(pc.BaseURL, "/")+path, nil)
	if err != nil {
		return nil, &core.RemoteCallError{Platform: pc.Name, Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+pc.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &core.RemoteCallError{Platform: pc.Name, Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &core.RemoteCallError{Platform: pc.Name, Op: op, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var env jobsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &core.RemoteCallError{Platform: pc.Name, Op: op, Err: err}
	}

	out := make([]core.Job, 0, len(env.Jobs))
	for _, w := range env.Jobs {
		out = append(out, w.toJob(pc.Name))
	}
	return out, nil
}

// Accept claims one job. A non-2xx response or transport error leaves the
// job available on the remote side.
func (c *Client) Accept(ctx context.Context, pc core.PlatformConfig, jobID string) error {
	if err := c.limiter(pc.Name).Wait(ctx); err != nil {
		return &core.RemoteCallError{Platform: pc.Name, Op: "accept", Err: err}
	}

	url := fmt.Sprintf("%s/api/jobs/%s/accept", strings.TrimSuffix(pc.BaseURL, "/"), jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return &core.RemoteCallError{Platform: pc.Name, Op: "accept", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+pc.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return &core.RemoteCallError{Platform: pc.Name, Op: "accept", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &core.RemoteCallError{Platform: pc.Name, Op: "accept", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	return nil
}
