// Package ids generates document keys.
package ids

import "github.com/google/uuid"

// New returns a random (version 4) UUID string. Keys are never sequential,
// so a known key reveals nothing about its neighbours.
func New() string {
	return uuid.NewString()
}

// Generator produces document keys. It lets callers substitute a
// deterministic source in tests.
type Generator func() string
