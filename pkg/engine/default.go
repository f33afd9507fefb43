package engine

import "sync"

var (
	defaultMu     sync.Mutex
	defaultOnce   *sync.Once = new(sync.Once)
	defaultEngine *Engine
	defaultOpts   []Option
)

// SetDefaultOptions sets the options the lazily built default engine will
// be constructed with. It must be called before the first Default call to
// have any effect.
func SetDefaultOptions(opts ...Option) {
	defaultMu.Lock()
	defaultOpts = opts
	defaultMu.Unlock()
}

// Default returns the process-wide engine, building it on first access.
// Construction happens exactly once even under concurrent first access.
// New engines passed around explicitly are the preferred style; Default
// exists for callers that need a global accessor.
func Default() *Engine {
	defaultMu.Lock()
	once := defaultOnce
	defaultMu.Unlock()

	once.Do(func() {
		defaultMu.Lock()
		opts := defaultOpts
		defaultMu.Unlock()
		e := New(opts...)
		defaultMu.Lock()
		defaultEngine = e
		defaultMu.Unlock()
	})

	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultEngine
}

// ResetDefault discards the default engine so the next Default call builds
// a fresh one. Callers own stopping the old engine first. Intended for
// tests.
func ResetDefault() {
	defaultMu.Lock()
	defaultOnce = new(sync.Once)
	defaultEngine = nil
	defaultMu.Unlock()
}
