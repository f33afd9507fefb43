package core

import "context"

// Module is a pluggable platform-automation worker bound to one named
// external service. Implementations own their browser or API drivers; the
// engine only drives the lifecycle and account operations below.
//
// Start and Stop must be safe to call in any order; the registry calls Stop
// on every registered module even when earlier stops fail.
type Module interface {
	// Platform returns the service name this module automates.
	Platform() string

	// Running reports whether the module's worker loop is active.
	Running() bool

	Initialize(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	// CreateAccount provisions a new account on the platform. username may
	// be empty, in which case the module derives one.
	CreateAccount(ctx context.Context, email, password, username string) (*Account, error)

	// Login authenticates an existing account and reports success.
	Login(ctx context.Context, email, password string) (bool, error)
}
