// Package mmo provides the orchestration engine for a set of pluggable
// platform-automation workers: a credential store, a rotating proxy pool, a
// polling job-earning feed and a once-per-second status snapshot.
//
// This is the main package users should import. It re-exports the public
// types from the pkg/ packages for a clean API surface.
//
// Basic usage:
//
//	cfg, _ := config.Load("mmo.yaml")
//	eng := mmo.NewEngine(mmo.WithConfig(cfg))
//	if err := eng.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Stop(ctx)
//
//	eng.RegisterModule(myModule)
//	eng.StartAllModules(ctx)
//
//	for ev := range eng.Events() {
//	    // stats snapshots, log lines, proxy changes, completed jobs
//	}
package mmo

import (
	"github.com/nvtuan/mmo-engine/pkg/accounts"
	"github.com/nvtuan/mmo-engine/pkg/config"
	"github.com/nvtuan/mmo-engine/pkg/core"
	"github.com/nvtuan/mmo-engine/pkg/engine"
	"github.com/nvtuan/mmo-engine/pkg/feed"
	"github.com/nvtuan/mmo-engine/pkg/proxy"
	"github.com/nvtuan/mmo-engine/pkg/registry"
)

// Type aliases re-exporting the public surface.
type (
	// Engine is the single coordinator owning all subsystems.
	Engine = engine.Engine

	// EngineOption configures an Engine.
	EngineOption = engine.Option

	// State is the engine lifecycle state.
	State = engine.State

	// Config is the full engine configuration.
	Config = config.Config

	// Account is a stored credential record for one platform account.
	Account = core.Account

	// AccountStatus is the lifecycle state of a platform account.
	AccountStatus = core.AccountStatus

	// AccountStorage is the persistence contract for account records.
	AccountStorage = core.AccountStorage

	// ExtraData is the typed key/value bag persisted with an account.
	ExtraData = core.ExtraData

	// ExtraValue is one entry of the extra-data bag.
	ExtraValue = core.ExtraValue

	// Proxy is one outbound proxy endpoint.
	Proxy = core.Proxy

	// ProxyPool holds the ordered proxy list and the active index.
	ProxyPool = proxy.Pool

	// Job is one task fetched from a remote job platform.
	Job = core.Job

	// JobStatus is the state of an earning job.
	JobStatus = core.JobStatus

	// PlatformConfig describes one remote job-platform endpoint.
	PlatformConfig = core.PlatformConfig

	// JobFeed drives the job-earning poll loop.
	JobFeed = feed.Feed

	// Module is a pluggable platform-automation worker.
	Module = core.Module

	// ModuleRegistry holds the registered platform modules.
	ModuleRegistry = registry.Registry

	// EngineStats is the aggregated per-tick status snapshot.
	EngineStats = core.EngineStats

	// Event is the interface for all engine events.
	Event = core.Event

	// LogMessage carries one human-readable engine log line.
	LogMessage = core.LogMessage

	// StatsUpdated is emitted once per stats tick.
	StatsUpdated = core.StatsUpdated

	// ProxyChanged is emitted after every proxy rotation.
	ProxyChanged = core.ProxyChanged

	// AccountAdded is emitted when a record is inserted.
	AccountAdded = core.AccountAdded

	// AccountUpdated is emitted when a record changes.
	AccountUpdated = core.AccountUpdated

	// JobDone is emitted when a job's reward is collected.
	JobDone = core.JobDone

	// EarningsUpdated follows every successful job with the session total.
	EarningsUpdated = core.EarningsUpdated

	// GormStore is the GORM-backed account storage.
	GormStore = accounts.GormStore

	// ConfigError is a fatal initialization failure.
	ConfigError = core.ConfigError

	// PersistenceError is a recoverable storage failure.
	PersistenceError = core.PersistenceError

	// RemoteCallError is a recoverable remote API failure.
	RemoteCallError = core.RemoteCallError
)

// Account status constants.
const (
	StatusActive    = core.StatusActive
	StatusInactive  = core.StatusInactive
	StatusCreated   = core.StatusCreated
	StatusBanned    = core.StatusBanned
	StatusSuspended = core.StatusSuspended
)

// Job status constants.
const (
	JobAvailable = core.JobAvailable
	JobCompleted = core.JobCompleted
	JobFailed    = core.JobFailed
)

// Engine lifecycle states.
const (
	StateStopped  = engine.StateStopped
	StateStarting = engine.StateStarting
	StateRunning  = engine.StateRunning
	StateStopping = engine.StateStopping
)

// NewEngine creates an Engine; see engine.New.
func NewEngine(opts ...EngineOption) *Engine { return engine.New(opts...) }

// DefaultEngine returns the process-wide engine, built exactly once on
// first access; see engine.Default.
func DefaultEngine() *Engine { return engine.Default() }

// Engine construction options.
var (
	WithConfig        = engine.WithConfig
	WithLogger        = engine.WithLogger
	WithStore         = engine.WithStore
	WithPool          = engine.WithPool
	WithFeed          = engine.WithFeed
	WithRegistry      = engine.WithRegistry
	WithStatsSchedule = engine.WithStatsSchedule
)

// LoadConfig reads and validates the YAML file at path.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// OpenStore opens the SQLite-backed account store at path.
func OpenStore(path string, opts ...accounts.Option) (*GormStore, error) {
	return accounts.Open(path, opts...)
}
