package core

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNoProxy is returned when the pool has no configured entries.
	ErrNoProxy = errors.New("mmo: no proxy configured")

	// ErrStoreClosed is returned from storage lifecycle calls after Close.
	ErrStoreClosed = errors.New("mmo: account store closed")
)

// ConfigError is a fatal initialization failure. It aborts Initialize and
// propagates out of Engine.Start; nothing else in the engine produces it.
type ConfigError struct {
	Component string
	Err       error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("mmo: %s configuration: %v", e.Component, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError wraps err as a fatal configuration failure of component.
func NewConfigError(component string, err error) error {
	return &ConfigError{Component: component, Err: err}
}

// PersistenceError is a recoverable storage failure. Write APIs surface it
// as a false return; read APIs swallow it and degrade to empty or zero.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("mmo: persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// RemoteCallError is a recoverable remote API failure. It is always logged
// and skipped; it never propagates past the polling loop that hit it.
type RemoteCallError struct {
	Platform string
	Op       string
	Err      error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("mmo: %s %s: %v", e.Platform, e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}
