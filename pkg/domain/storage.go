package domain

import "context"

// Session is an open, authenticated handle to one bucket of the document
// backend. Implementations must be safe for concurrent use and translate
// their own missing-document and missing-path conditions into ErrNotFound.
type Session interface {
	// Insert stores doc under id. It fails if id already exists.
	Insert(ctx context.Context, id string, doc Document) error

	// Get returns the stored payload for id.
	Get(ctx context.Context, id string) (Document, error)

	// ArrayAppend atomically appends value to the array at path, creating the
	// array when the path is absent.
	ArrayAppend(ctx context.Context, id, path string, value interface{}) error

	// LookupArray reads the array at path without fetching the whole document.
	LookupArray(ctx context.Context, id, path string) ([]interface{}, error)

	// Query executes a composed statement in one round trip and returns its rows.
	Query(ctx context.Context, stmt Statement) ([]Document, error)

	// EnsurePrimaryIndex creates the bucket's primary index if it does not exist.
	EnsurePrimaryIndex(ctx context.Context) error

	// Close releases the session.
	Close() error
}

// Dialer opens sessions against a configured backend.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context) (Session, error)

// Dial calls f(ctx).
func (f DialerFunc) Dial(ctx context.Context) (Session, error) {
	return f(ctx)
}
