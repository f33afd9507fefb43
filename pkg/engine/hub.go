package engine

import (
	"sync"

	"github.com/nvtuan/mmo-engine/pkg/core"
)

// recentLogCap bounds the in-memory log buffer.
const recentLogCap = 100

// hub fans events out to subscribers and keeps the recent-log window.
type hub struct {
	mu      sync.Mutex
	subs    []chan core.Event
	onLog   []func(core.LogMessage)
	onStats []func(core.EngineStats)
	recent  []core.LogMessage
}

// Events returns a channel receiving every engine event. The caller must
// call Unsubscribe when done to prevent resource leaks.
func (e *Engine) Events() <-chan core.Event {
	ch := make(chan core.Event, 100)
	e.hub.mu.Lock()
	e.hub.subs = append(e.hub.subs, ch)
	e.hub.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber channel created by Events. The channel
// is not closed; callers stop reading before unsubscribing.
func (e *Engine) Unsubscribe(ch <-chan core.Event) {
	e.hub.mu.Lock()
	defer e.hub.mu.Unlock()
	for i, sub := range e.hub.subs {
		if sub == ch {
			e.hub.subs = append(e.hub.subs[:i], e.hub.subs[i+1:]...)
			return
		}
	}
}

// OnLog registers a callback invoked for every LogMessage event.
func (e *Engine) OnLog(fn func(core.LogMessage)) {
	e.hub.mu.Lock()
	e.hub.onLog = append(e.hub.onLog, fn)
	e.hub.mu.Unlock()
}

// OnStats registers a callback invoked for every published snapshot.
func (e *Engine) OnStats(fn func(core.EngineStats)) {
	e.hub.mu.Lock()
	e.hub.onStats = append(e.hub.onStats, fn)
	e.hub.mu.Unlock()
}

// RecentLogs returns up to n of the most recent log events, newest last.
// At most the last 100 are retained.
func (e *Engine) RecentLogs(n int) []core.LogMessage {
	e.hub.mu.Lock()
	defer e.hub.mu.Unlock()
	if n <= 0 || n > len(e.hub.recent) {
		n = len(e.hub.recent)
	}
	out := make([]core.LogMessage, n)
	copy(out, e.hub.recent[len(e.hub.recent)-n:])
	return out
}

// Emit publishes an event to all subscribers and hooks. Slow subscribers
// have events dropped rather than blocking a timer goroutine.
func (e *Engine) Emit(ev core.Event) {
	e.hub.mu.Lock()
	if lm, ok := ev.(*core.LogMessage); ok {
		e.hub.recent = append(e.hub.recent, *lm)
		if len(e.hub.recent) > recentLogCap {
			e.hub.recent = e.hub.recent[len(e.hub.recent)-recentLogCap:]
		}
	}
	subs := make([]chan core.Event, len(e.hub.subs))
	copy(subs, e.hub.subs)
	logHooks := make([]func(core.LogMessage), len(e.hub.onLog))
	copy(logHooks, e.hub.onLog)
	statsHooks := make([]func(core.EngineStats), len(e.hub.onStats))
	copy(statsHooks, e.hub.onStats)
	e.hub.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			// drop if slow
		}
	}

	switch x := ev.(type) {
	case *core.LogMessage:
		for _, fn := range logHooks {
			fn(*x)
		}
	case *core.StatsUpdated:
		for _, fn := range statsHooks {
			fn(x.Stats)
		}
	}
}
