// Package registry holds the set of registered platform modules.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nvtuan/mmo-engine/pkg/core"
)

// Registry owns the registered platform modules for their lifetime. It is a
// plain list, not a keyed set: registering the same module twice is allowed
// and it is up to callers to deduplicate if they care.
type Registry struct {
	logger  *slog.Logger
	emitter core.Emitter

	mu      sync.Mutex
	modules []core.Module
}

// Option configures a Registry.
type Option interface {
	apply(*Registry)
}

type optionFunc func(*Registry)

func (f optionFunc) apply(r *Registry) { f(r) }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(r *Registry) { r.logger = l })
}

// WithEmitter sets the event sink for module lifecycle log events.
func WithEmitter(e core.Emitter) Option {
	return optionFunc(func(r *Registry) { r.emitter = e })
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{logger: slog.Default()}
	for _, opt := range opts {
		opt.apply(r)
	}
	return r
}

// Register appends a module.
func (r *Registry) Register(m core.Module) {
	r.mu.Lock()
	r.modules = append(r.modules, m)
	r.mu.Unlock()
	r.logger.Info("module registered", "platform", m.Platform())
	r.emitLog("info", "registered module: "+m.Platform())
}

// Unregister removes the first occurrence of m. Unknown modules are
// ignored silently.
func (r *Registry) Unregister(m core.Module) {
	r.mu.Lock()
	removed := false
	for i, reg := range r.modules {
		if reg == m {
			r.modules = append(r.modules[:i], r.modules[i+1:]...)
			removed = true
			break
		}
	}
	r.mu.Unlock()
	if !removed {
		return
	}
	r.logger.Info("module unregistered", "platform", m.Platform())
	r.emitLog("info", "unregistered module: "+m.Platform())
}

// Modules returns a copy of the registered modules.
func (r *Registry) Modules() []core.Module {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Module, len(r.modules))
	copy(out, r.modules)
	return out
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.modules)
}

// StartAll starts every registered module in registration order. A failing
// module is logged and skipped; every module gets its attempt.
func (r *Registry) StartAll(ctx context.Context) {
	for _, m := range r.Modules() {
		if err := m.Start(ctx); err != nil {
			r.logger.Error("module start failed", "platform", m.Platform(), "error", err)
			r.emitLog("error", fmt.Sprintf("error starting module %s: %v", m.Platform(), err))
			continue
		}
		r.emitLog("info", "started module: "+m.Platform())
	}
}

// StopAll stops every registered module in registration order. Stop is
// invoked on every module exactly once no matter how many individual stops
// fail.
func (r *Registry) StopAll(ctx context.Context) {
	for _, m := range r.Modules() {
		if err := m.Stop(ctx); err != nil {
			r.logger.Error("module stop failed", "platform", m.Platform(), "error", err)
			r.emitLog("error", fmt.Sprintf("error stopping module %s: %v", m.Platform(), err))
			continue
		}
		r.emitLog("info", "stopped module: "+m.Platform())
	}
}

func (r *Registry) emitLog(level, text string) {
	if r.emitter == nil {
		return
	}
	r.emitter.Emit(&core.LogMessage{Level: level, Source: "registry", Text: text, Timestamp: time.Now()})
}
