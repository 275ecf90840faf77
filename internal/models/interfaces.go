package models

import "context"

// StateStore persists per-URL check state. Put is atomic per key; no
// cross-key transaction is required by any caller.
type StateStore interface {
	// Get returns the stored state for a URL. The bool reports whether a
	// record exists; a missing record is not an error.
	Get(ctx context.Context, url string) (URLState, bool, error)
	// Put upserts the record keyed by state.URL.
	Put(ctx context.Context, state URLState) error
	Close() error
}

// Notifier delivers a completed digest. Implementations own their delivery
// mechanics and retries; callers never retry a failed delivery.
type Notifier interface {
	Notify(ctx context.Context, digest Digest) error
}
