// Package engine provides the orchestrator that owns the proxy pool, the
// account store, the job feed and the module registry, and publishes the
// aggregated status snapshot once per tick.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/nvtuan/mmo-engine/pkg/accounts"
	"github.com/nvtuan/mmo-engine/pkg/config"
	"github.com/nvtuan/mmo-engine/pkg/core"
	"github.com/nvtuan/mmo-engine/pkg/feed"
	"github.com/nvtuan/mmo-engine/pkg/metrics"
	"github.com/nvtuan/mmo-engine/pkg/proxy"
	"github.com/nvtuan/mmo-engine/pkg/registry"
	"github.com/nvtuan/mmo-engine/pkg/schedule"
)

// State is the engine lifecycle state.
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "stopped"
	}
}

// Engine is the single coordinator for one process. Construct it with New
// and pass it to call sites; Default exists for callers that still want a
// process-wide accessor.
//
// Start and Stop in the wrong state are no-ops, never errors. Only
// initialization failures during Start propagate; every steady-state
// failure is logged on the event stream and does not halt sibling work.
type Engine struct {
	cfg     config.Config
	logger  *slog.Logger
	sampler *metrics.Sampler

	pool      *proxy.Pool
	store     core.AccountStorage
	ownsStore bool
	openStore func() (core.AccountStorage, error)
	feed      *feed.Feed
	registry  *registry.Registry

	statsSched schedule.Schedule

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
	stats  core.EngineStats

	hub hub
}

// Option configures an Engine.
type Option interface {
	apply(*Engine)
}

type optionFunc func(*Engine)

func (f optionFunc) apply(e *Engine) { f(e) }

// WithConfig supplies the engine configuration. Subsystems not injected
// explicitly are built from it.
func WithConfig(cfg config.Config) Option {
	return optionFunc(func(e *Engine) { e.cfg = cfg })
}

// WithLogger sets the structured logger shared with built subsystems.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(e *Engine) { e.logger = l })
}

// WithStore injects an account storage, bypassing the default SQLite open
// during Start. Migrate is still called on it.
func WithStore(s core.AccountStorage) Option {
	return optionFunc(func(e *Engine) { e.store = s })
}

// WithPool injects a proxy pool.
func WithPool(p *proxy.Pool) Option {
	return optionFunc(func(e *Engine) { e.pool = p })
}

// WithFeed injects a job feed.
func WithFeed(f *feed.Feed) Option {
	return optionFunc(func(e *Engine) { e.feed = f })
}

// WithRegistry injects a module registry.
func WithRegistry(r *registry.Registry) Option {
	return optionFunc(func(e *Engine) { e.registry = r })
}

// WithStatsSchedule replaces the 1-second stats schedule; tests use tight
// intervals here.
func WithStatsSchedule(s schedule.Schedule) Option {
	return optionFunc(func(e *Engine) { e.statsSched = s })
}

// New creates an Engine. Subsystems not supplied via options are built from
// the configuration, all wired to the engine's event stream.
func New(opts ...Option) *Engine {
	e := &Engine{
		cfg:    config.Default(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt.apply(e)
	}

	if e.sampler == nil {
		e.sampler = metrics.NewSampler()
	}
	if e.statsSched == nil {
		e.statsSched = schedule.Every(e.cfg.Stats.Interval.Std())
	}
	if e.registry == nil {
		e.registry = registry.New(registry.WithLogger(e.logger), registry.WithEmitter(e))
	}
	if e.pool == nil {
		e.pool = proxy.New(
			proxy.Static(e.cfg.Proxies.Entries),
			proxy.WithProber(proxy.NewHTTPProber(e.cfg.Proxies.TestURL)),
			proxy.WithSchedule(schedule.Every(e.cfg.Proxies.RotateEvery.Std())),
			proxy.WithLogger(e.logger),
			proxy.WithEmitter(e),
		)
	}
	if e.feed == nil {
		// Job traffic goes through the active proxy; an empty pool means
		// direct connections, matching the pool's valid no-proxy state.
		transport := &http.Transport{
			Proxy: func(*http.Request) (*url.URL, error) {
				u, err := e.pool.ActiveURL()
				if errors.Is(err, core.ErrNoProxy) {
					return nil, nil
				}
				return u, err
			},
		}
		e.feed = feed.New(
			feed.NewClient(feed.WithHTTPClient(&http.Client{
				Timeout:   15 * time.Second,
				Transport: transport,
			})),
			e.cfg.Jobs.Platforms,
			feed.WithSchedule(schedule.Every(e.cfg.Jobs.PollEvery.Std())),
			feed.WithLogger(e.logger),
			feed.WithEmitter(e),
		)
	}
	if e.openStore == nil {
		e.openStore = func() (core.AccountStorage, error) {
			return accounts.Open(e.cfg.Database.Path,
				accounts.WithLogger(e.logger),
				accounts.WithEmitter(e))
		}
	}
	return e
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Running reports whether the engine is in the Running state.
func (e *Engine) Running() bool { return e.State() == StateRunning }

// Start initializes the proxy pool, the account store and the job feed in
// order, then begins the stats tick. The first initialization failure
// aborts startup, tears down whatever already started, and leaves the
// engine Stopped. Calling Start while not Stopped is a no-op.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateStopped {
		e.mu.Unlock()
		return nil
	}
	e.state = StateStarting
	e.mu.Unlock()

	e.log("info", "starting engine")

	if err := e.pool.Initialize(ctx); err != nil {
		e.abortStart("proxy pool", err)
		return err
	}

	if e.store == nil {
		store, err := e.openStore()
		if err != nil {
			e.pool.Stop()
			e.abortStart("account store", err)
			return err
		}
		e.store = store
		e.ownsStore = true
	}
	if err := e.store.Migrate(ctx); err != nil {
		e.pool.Stop()
		e.releaseStore()
		e.abortStart("account store", err)
		return err
	}

	statsCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	e.mu.Lock()
	e.state = StateRunning
	e.cancel = cancel
	e.done = done
	e.mu.Unlock()

	go e.statsLoop(statsCtx, done)

	e.log("info", "engine started")
	return nil
}

func (e *Engine) abortStart(component string, err error) {
	e.mu.Lock()
	e.state = StateStopped
	e.mu.Unlock()
	e.logger.Error("engine start failed", "component", component, "error", err)
	e.log("error", "error starting engine: "+err.Error())
}

// Stop halts the stats tick, stops every registered module, then shuts the
// feed, the store and the pool down in that order. Calling Stop while not
// Running is a no-op. A stopped engine can be started again.
func (e *Engine) Stop(ctx context.Context) {
	e.mu.Lock()
	if e.state != StateRunning {
		e.mu.Unlock()
		return
	}
	e.state = StateStopping
	cancel := e.cancel
	done := e.done
	e.cancel = nil
	e.done = nil
	e.mu.Unlock()

	e.log("info", "stopping engine")

	cancel()
	<-done

	e.registry.StopAll(ctx)
	e.feed.Stop()
	e.releaseStore()
	e.pool.Stop()

	e.mu.Lock()
	e.state = StateStopped
	e.mu.Unlock()

	e.log("info", "engine stopped")
}

// releaseStore closes the store and, when the engine opened it itself,
// drops the reference so the next Start opens a fresh handle. An injected
// store is closed but kept; reuse across restarts is its owner's concern.
func (e *Engine) releaseStore() {
	if e.store == nil {
		return
	}
	if err := e.store.Close(); err != nil {
		e.logger.Error("store close failed", "error", err)
	}
	if e.ownsStore {
		e.store = nil
		e.ownsStore = false
	}
}

// RegisterModule adds a platform module. Allowed in any state.
func (e *Engine) RegisterModule(m core.Module) { e.registry.Register(m) }

// UnregisterModule removes a platform module.
func (e *Engine) UnregisterModule(m core.Module) { e.registry.Unregister(m) }

// StartAllModules starts every registered module; per-module failures are
// logged and do not stop the batch.
func (e *Engine) StartAllModules(ctx context.Context) { e.registry.StartAll(ctx) }

// StopAllModules stops every registered module; every module gets its stop
// attempt regardless of earlier failures.
func (e *Engine) StopAllModules(ctx context.Context) { e.registry.StopAll(ctx) }

// Pool returns the proxy pool.
func (e *Engine) Pool() *proxy.Pool { return e.pool }

// Feed returns the job feed. Its poll loop is toggled by the caller via
// Feed().Start and Feed().Stop; engine Stop always shuts it down.
func (e *Engine) Feed() *feed.Feed { return e.feed }

// Store returns the account storage. When the engine opens the store itself
// it is nil outside the Running state; an injected store is always
// returned.
func (e *Engine) Store() core.AccountStorage { return e.store }

// Registry returns the module registry.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// Stats returns the latest published snapshot.
func (e *Engine) Stats() core.EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// statsLoop publishes one snapshot per schedule tick until cancelled.
func (e *Engine) statsLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	timer := time.NewTimer(time.Until(e.statsSched.Next(time.Now())))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			e.tick(ctx)
			select {
			case <-ctx.Done():
				return
			default:
			}
			timer.Reset(time.Until(e.statsSched.Next(time.Now())))
		}
	}
}

// tick recomputes and publishes the snapshot. Every read it performs is of
// the degrade-to-zero kind, and the recover guard means nothing can kill
// the timer loop.
func (e *Engine) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("stats tick panic", "panic", r)
		}
	}()

	tickCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	snap := core.EngineStats{
		TotalAccounts:     e.store.CountTotal(tickCtx),
		ActiveAccounts:    e.store.CountActive(tickCtx),
		TodayJobs:         e.feed.TodayJobs(),
		TotalEarnings:     e.feed.Earnings(),
		Uptime:            e.sampler.Uptime(),
		MemoryMB:          e.sampler.MemoryMB(tickCtx),
		ProxyConnected:    e.pool.Connected(),
		DatabaseConnected: e.store.Connected(tickCtx),
	}

	e.mu.Lock()
	e.stats = snap
	e.mu.Unlock()

	e.Emit(&core.StatsUpdated{Stats: snap, Timestamp: time.Now()})
}

// log emits a LogMessage event sourced from the engine itself.
func (e *Engine) log(level, text string) {
	if level == "error" {
		e.logger.Error(text)
	} else {
		e.logger.Info(text)
	}
	e.Emit(&core.LogMessage{Level: level, Source: "engine", Text: text, Timestamp: time.Now()})
}
