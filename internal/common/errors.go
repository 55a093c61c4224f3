// Package common defines shared constants and sentinel errors used across
// the sync layer. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrRemoteUnavailable marks a network or server failure. It triggers
	// the local fallback path and is never fatal on save/read operations.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrStorageUnavailable marks an inaccessible or corrupt cache medium.
	// Surfaced to the caller for reporting, never a process stop.
	ErrStorageUnavailable = errors.New("local storage unavailable")

	// ErrValidationFailed marks an entry rejected by the schema check
	// before it reaches the sync engine.
	ErrValidationFailed = errors.New("validation failed")
)
