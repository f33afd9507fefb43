package core

import (
	"context"
)

// AccountStorage defines the persistence layer for account records.
//
// The contract deliberately mixes two failure styles: write paths report
// recoverable storage failure through their boolean return so callers can
// retry without crashing, while read and aggregate paths degrade to empty or
// zero results. Lifecycle and configuration failures surface as errors from
// Migrate and Close only.
type AccountStorage interface {
	// Migrate creates the necessary database tables.
	Migrate(ctx context.Context) error

	// Add inserts a new record. It reports true on success and false on a
	// storage-level failure; a false return is a retryable signal, never a
	// crash.
	Add(ctx context.Context, account *Account) bool

	// Update rewrites status, last login and extra data for the record
	// matched by (username, platform). It reports true only when at least
	// one row changed; no match and storage failure both report false.
	Update(ctx context.Context, account *Account) bool

	// List returns all active records, optionally filtered by platform
	// (empty string means no filter), in insertion order. It returns an
	// empty slice on failure.
	List(ctx context.Context, platform string) []Account

	// CountTotal and CountActive aggregate over active (is_active) rows
	// only. Both return 0 on any failure.
	CountTotal(ctx context.Context) int
	CountActive(ctx context.Context) int

	// SoftDelete marks the record matched by (email, platform) inactive and
	// reports whether a row was affected. The row is retained for audit but
	// excluded from every read and aggregate afterwards.
	SoftDelete(ctx context.Context, email, platform string) bool

	// Connected reports whether the underlying storage handle is usable.
	Connected(ctx context.Context) bool

	// Close releases the storage handle. Idempotent.
	Close() error
}
