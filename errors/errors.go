// Package errors provides error handling for MedLink.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrNotFound) {
//	    // handle not found
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Mark          = crdb.Mark
	Unwrap        = crdb.Unwrap
	UnwrapAll     = crdb.UnwrapAll
	GetAllDetails = crdb.GetAllDetails
	GetAllHints   = crdb.GetAllHints
)

// Common sentinel errors for use across MedLink.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = New("not found")

	// ErrPersistence indicates a batch save against the clinic store failed.
	// Job loops treat this as transient: log, back off, continue.
	ErrPersistence = New("persistence failure")

	// ErrBackupFailed indicates the backup-creation step failed.
	// The remaining steps of that cycle (cleanup) are skipped.
	ErrBackupFailed = New("backup failed")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsBackupError checks if an error is or wraps ErrBackupFailed.
func IsBackupError(err error) bool {
	return err != nil && Is(err, ErrBackupFailed)
}

// WrapPersistence marks an error as a persistence failure and adds
// context. The original cause stays in the chain, so Is/As checks against
// the underlying driver error still work through the wrapper.
func WrapPersistence(err error, context string) error {
	return Wrap(Mark(err, ErrPersistence), context)
}
