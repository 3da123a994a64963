package ports

import "context"

// Ledger records which recipients already received a message.
// Implementations must allow Record to be called from many goroutines.
type Ledger interface {
	// Load reconstructs membership from durable storage.
	// Missing storage yields an empty ledger and a nil error.
	Load(ctx context.Context) error

	// Contains reports whether phone was recorded in this or a prior run.
	Contains(phone string) bool

	// Record durably adds phone. Recording the same phone twice is harmless.
	Record(ctx context.Context, phone string) error

	// Close releases the underlying storage.
	Close() error
}
