// Package core provides the fundamental types and interfaces for the engine.
//
// This package contains:
//   - Account, Proxy, Job and PlatformConfig data models (Account carries
//     GORM annotations)
//   - AccountStorage interface defining the persistence contract
//   - Module interface implemented by per-platform automation workers
//   - Event types published on the engine event stream
//   - Error types for configuration, persistence and remote-call failures
//
// Most users should import the root package github.com/nvtuan/mmo-engine
// instead of this package directly.
package core
