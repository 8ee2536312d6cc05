// Package apperr holds the sentinel errors shared across notesman packages.
package apperr

import "errors"

var (
	// ErrInvalidInput is returned before any file is touched, e.g. when the
	// ledger path does not carry the configured extension.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRead marks a source document that is missing or unreadable.
	ErrRead = errors.New("read failed")
	// ErrWrite marks a failed backup copy or overwrite.
	ErrWrite = errors.New("write failed")
	// ErrConflict is returned when a caller-supplied checksum no longer
	// matches the current document.
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
)
