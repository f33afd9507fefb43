package core

import "time"

// Event is the interface for all engine events.
type Event interface {
	eventMarker()
}

// LogMessage carries one human-readable engine log line. The log stream is
// the only failure channel exposed to observers; steady-state errors appear
// here rather than propagating.
type LogMessage struct {
	Level     string
	Source    string
	Text      string
	Timestamp time.Time
}

func (*LogMessage) eventMarker() {}

// StatsUpdated is emitted once per stats tick with the fresh snapshot.
type StatsUpdated struct {
	Stats     EngineStats
	Timestamp time.Time
}

func (*StatsUpdated) eventMarker() {}

// ProxyChanged is emitted after every rotation with the newly active proxy.
// Connected reflects the reachability probe that followed the rotation; the
// proxy is active either way.
type ProxyChanged struct {
	Proxy     Proxy
	Connected bool
	Timestamp time.Time
}

func (*ProxyChanged) eventMarker() {}

// AccountAdded is emitted when a record is successfully inserted.
type AccountAdded struct {
	Account   *Account
	Timestamp time.Time
}

func (*AccountAdded) eventMarker() {}

// AccountUpdated is emitted when an existing record changes.
type AccountUpdated struct {
	Account   *Account
	Timestamp time.Time
}

func (*AccountUpdated) eventMarker() {}

// JobDone is emitted when a job is accepted and its reward collected.
type JobDone struct {
	Job       Job
	Timestamp time.Time
}

func (*JobDone) eventMarker() {}

// EarningsUpdated is emitted after every successful job with the running
// session total.
type EarningsUpdated struct {
	Total     float64
	Timestamp time.Time
}

func (*EarningsUpdated) eventMarker() {}

// Emitter receives engine events. The engine's event hub implements it;
// subsystems hold the narrow interface so they can be tested with fakes.
type Emitter interface {
	Emit(e Event)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(e Event)

func (f EmitterFunc) Emit(e Event) { f(e) }
