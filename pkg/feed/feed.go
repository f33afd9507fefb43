// Package feed polls remote job platforms and accumulates earnings.
package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nvtuan/mmo-engine/pkg/core"
	"github.com/nvtuan/mmo-engine/pkg/schedule"
)

// Feed drives the job-earning loop. On each tick it fetches the open jobs
// of every enabled platform and tries to accept each one. Remote failures
// are never fatal: a failed fetch skips that platform for the tick, a
// failed accept leaves the job available on the remote side, and a
// persistently failing platform is simply retried every tick. The remote
// platform is the source of truth for what is still open, so the feed keeps
// no retry bookkeeping.
type Feed struct {
	api       API
	platforms []core.PlatformConfig
	sched     schedule.Schedule
	logger    *slog.Logger
	emitter   core.Emitter

	mu            sync.Mutex
	running       bool
	cancel        context.CancelFunc
	done          chan struct{}
	totalEarnings float64
	todayJobs     int
}

// Option configures a Feed.
type Option interface {
	apply(*Feed)
}

type optionFunc func(*Feed)

func (f optionFunc) apply(fd *Feed) { f(fd) }

// WithSchedule replaces the default 60-second poll schedule.
func WithSchedule(s schedule.Schedule) Option {
	return optionFunc(func(fd *Feed) { fd.sched = s })
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(fd *Feed) { fd.logger = l })
}

// WithEmitter sets the event sink for job and earnings events.
func WithEmitter(e core.Emitter) Option {
	return optionFunc(func(fd *Feed) { fd.emitter = e })
}

// New creates a Feed over the given platforms. api is typically a *Client;
// tests substitute fakes.
func New(api API, platforms []core.PlatformConfig, opts ...Option) *Feed {
	f := &Feed{
		api:       api,
		platforms: platforms,
		sched:     schedule.Every(60 * time.Second),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt.apply(f)
	}
	return f
}

// Start begins the poll loop. No-op if already running.
func (f *Feed) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	f.running = true
	f.cancel = cancel
	f.done = make(chan struct{})
	go f.run(ctx, f.done)
	f.logger.Info("job feed started", "platforms", len(f.platforms))
}

// Stop halts the poll loop. No-op if already stopped; a poll in flight
// completes but cannot re-arm the timer.
func (f *Feed) Stop() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}
	f.running = false
	cancel := f.cancel
	done := f.done
	f.cancel = nil
	f.done = nil
	f.mu.Unlock()

	cancel()
	<-done
	f.logger.Info("job feed stopped")
}

// Running reports whether the poll loop is active.
func (f *Feed) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *Feed) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	timer := time.NewTimer(time.Until(f.sched.Next(time.Now())))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			f.pollOnce(ctx)
			select {
			case <-ctx.Done():
				return
			default:
			}
			timer.Reset(time.Until(f.sched.Next(time.Now())))
		}
	}
}

// pollOnce runs one tick: fetch and process every enabled platform.
func (f *Feed) pollOnce(ctx context.Context) {
	for _, pc := range f.platforms {
		if !pc.Enabled {
			continue
		}
		jobs, err := f.api.AvailableJobs(ctx, pc)
		if err != nil {
			f.remoteFailure(err)
			continue
		}
		for _, job := range jobs {
			f.processJob(ctx, pc, job)
		}
	}
}

// processJob accepts a single job and, on success, collects its reward. A
// failed accept changes nothing: the job stays available remotely and the
// counters are untouched.
func (f *Feed) processJob(ctx context.Context, pc core.PlatformConfig, job core.Job) {
	if err := f.api.Accept(ctx, pc, job.ID); err != nil {
		f.remoteFailure(err)
		return
	}

	now := time.Now()
	job.Status = core.JobCompleted
	job.CompletedAt = &now

	f.mu.Lock()
	f.totalEarnings += job.Reward
	f.todayJobs++
	total := f.totalEarnings
	f.mu.Unlock()

	f.logger.Info("job completed", "platform", job.Platform, "title", job.Title, "reward", job.Reward)
	if f.emitter != nil {
		f.emitter.Emit(&core.JobDone{Job: job, Timestamp: now})
		f.emitter.Emit(&core.EarningsUpdated{Total: total, Timestamp: now})
	}
}

// remoteFailure logs a remote error and pushes it onto the event stream;
// per the engine's failure policy it is never propagated further.
func (f *Feed) remoteFailure(err error) {
	f.logger.Warn("remote call failed", "error", err)
	if f.emitter != nil {
		f.emitter.Emit(&core.LogMessage{Level: "warn", Source: "feed", Text: err.Error(), Timestamp: time.Now()})
	}
}

// Earnings returns the session's accumulated reward total. It only grows;
// a restart is the one reset.
func (f *Feed) Earnings() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalEarnings
}

// TodayJobs returns the session's completed-job count.
func (f *Feed) TodayJobs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.todayJobs
}

// History fetches every enabled platform's job history afresh and merges
// the results. There is no local cache; each call re-queries all platforms,
// in parallel, skipping the ones that fail.
func (f *Feed) History(ctx context.Context) []core.Job {
	var (
		mu  sync.Mutex
		out []core.Job
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, pc := range f.platforms {
		if !pc.Enabled {
			continue
		}
		pc := pc
		g.Go(func() error {
			jobs, err := f.api.History(gctx, pc)
			if err != nil {
				f.remoteFailure(err)
				return nil
			}
			mu.Lock()
			out = append(out, jobs...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
