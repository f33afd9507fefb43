// Package proxy manages the rotating outbound-proxy pool.
package proxy

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/nvtuan/mmo-engine/pkg/core"
	"github.com/nvtuan/mmo-engine/pkg/schedule"
)

// LoadFunc supplies the proxy list at initialization time.
type LoadFunc func(ctx context.Context) ([]core.Proxy, error)

// Static returns a LoadFunc serving a fixed list, the common case when the
// entries come straight from configuration.
func Static(entries []core.Proxy) LoadFunc {
	return func(context.Context) ([]core.Proxy, error) {
		out := make([]core.Proxy, len(entries))
		copy(out, entries)
		return out, nil
	}
}

// Pool holds an ordered list of proxies and a current index. The index is
// only ever advanced by Rotate — either explicitly or from the rotation
// loop — so the pool is single-writer by construction. Reachability
// failures flip the connected flag and nothing else; entries are never
// removed at runtime.
type Pool struct {
	load    LoadFunc
	prober  Prober
	sched   schedule.Schedule
	logger  *slog.Logger
	emitter core.Emitter

	mu        sync.Mutex
	proxies   []core.Proxy
	index     int
	connected bool
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// Option configures a Pool.
type Option interface {
	apply(*Pool)
}

type optionFunc func(*Pool)

func (f optionFunc) apply(p *Pool) { f(p) }

// WithProber replaces the default HTTP prober.
func WithProber(pr Prober) Option {
	return optionFunc(func(p *Pool) { p.prober = pr })
}

// WithSchedule replaces the default 5-minute rotation schedule.
func WithSchedule(s schedule.Schedule) Option {
	return optionFunc(func(p *Pool) { p.sched = s })
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(p *Pool) { p.logger = l })
}

// WithEmitter sets the event sink for ProxyChanged and log events.
func WithEmitter(e core.Emitter) Option {
	return optionFunc(func(p *Pool) { p.emitter = e })
}

// New creates a Pool that loads its entries from load. Call Initialize
// before use.
func New(load LoadFunc, opts ...Option) *Pool {
	p := &Pool{
		load:   load,
		prober: NewHTTPProber("https://httpbin.org/ip"),
		sched:  schedule.Every(5 * time.Minute),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt.apply(p)
	}
	return p
}

// Initialize loads the proxy list, probes the first entry and starts the
// rotation loop. A load failure is fatal; an empty list leaves the pool in
// a valid "no proxy" state with no loop and no error.
func (p *Pool) Initialize(ctx context.Context) error {
	entries, err := p.load(ctx)
	if err != nil {
		return core.NewConfigError("proxy", err)
	}

	p.mu.Lock()
	p.proxies = entries
	p.index = 0
	p.connected = false
	p.mu.Unlock()

	p.logger.Info("proxy pool loaded", "count", len(entries))
	if len(entries) == 0 {
		return nil
	}

	p.TestCurrent(ctx)
	p.startLoop()
	return nil
}

// startLoop launches the rotation goroutine. No-op if already running.
func (p *Pool) startLoop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.running = true
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
}

func (p *Pool) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	timer := time.NewTimer(time.Until(p.sched.Next(time.Now())))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			p.Rotate(ctx)
			// A cancelled pool must not re-arm even if the rotation's
			// probe was still in flight when Stop was called.
			select {
			case <-ctx.Done():
				return
			default:
			}
			timer.Reset(time.Until(p.sched.Next(time.Now())))
		}
	}
}

// Current returns the active proxy, or false if the pool is empty.
func (p *Pool) Current() (core.Proxy, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.proxies) == 0 {
		return core.Proxy{}, false
	}
	return p.proxies[p.index], true
}

// ActiveURL returns the active proxy's URL for transport wiring, or
// core.ErrNoProxy when the pool is empty.
func (p *Pool) ActiveURL() (*url.URL, error) {
	cur, ok := p.Current()
	if !ok {
		return nil, core.ErrNoProxy
	}
	return cur.URL(), nil
}

// Connected reports whether the last probe of the active proxy succeeded.
func (p *Pool) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Len returns the number of configured proxies.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}

// TestCurrent probes the active proxy and updates the connected flag. A
// failed probe marks the pool disconnected but keeps the proxy in place;
// transient failures are handled by rotation, not deletion.
func (p *Pool) TestCurrent(ctx context.Context) bool {
	cur, ok := p.Current()
	if !ok {
		return false
	}

	err := p.prober.Probe(ctx, cur)

	p.mu.Lock()
	p.connected = err == nil
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("proxy probe failed", "proxy", cur.Addr(), "error", err)
		p.emitLog("warn", "proxy test failed: "+cur.Addr())
		return false
	}
	p.logger.Info("proxy connected", "proxy", cur.Addr())
	return true
}

// Rotate advances the active index circularly and re-probes the new proxy.
// Pools of zero or one proxies are left untouched. The new proxy becomes
// active regardless of its probe result; subscribers observe both the proxy
// and its live status in the ProxyChanged event.
func (p *Pool) Rotate(ctx context.Context) {
	p.mu.Lock()
	if len(p.proxies) <= 1 {
		p.mu.Unlock()
		return
	}
	p.index = (p.index + 1) % len(p.proxies)
	cur := p.proxies[p.index]
	p.mu.Unlock()

	ok := p.TestCurrent(ctx)

	p.logger.Info("proxy rotated", "proxy", cur.Addr(), "connected", ok)
	if p.emitter != nil {
		p.emitter.Emit(&core.ProxyChanged{Proxy: cur, Connected: ok, Timestamp: time.Now()})
	}
}

// Stop halts the rotation loop and marks the pool disconnected. Safe to
// call repeatedly and while a probe from the previous tick is still in
// flight; such a probe completes but cannot re-arm the loop.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.connected = false
		p.mu.Unlock()
		return
	}
	p.running = false
	p.connected = false
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	cancel()
	<-done

	// A probe that was mid-flight when Stop ran may have flipped the flag
	// back; the loop has exited now, so settle it.
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	p.logger.Info("proxy pool stopped")
}

func (p *Pool) emitLog(level, text string) {
	if p.emitter == nil {
		return
	}
	p.emitter.Emit(&core.LogMessage{Level: level, Source: "proxy", Text: text, Timestamp: time.Now()})
}
