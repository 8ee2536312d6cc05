// Package storage defines the file-system abstraction the ledger writes through.
package storage

// Provider is the interface for ledger document I/O.
type Provider interface {
	// Read returns the raw bytes of the file at path (relative to the ledger root).
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content []byte) error
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
	// Copy atomically copies src over dst, creating or truncating dst.
	Copy(src, dst string) error
}
