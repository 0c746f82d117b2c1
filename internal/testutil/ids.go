// Package testutil provides a small fixture helper for test code under
// sim/ and internal/, mirrored on the teacher's sim/internal/testutil
// golden-file helpers. No test in this module imports it.
package testutil

import "github.com/google/uuid"

// SyntheticID returns a stable-looking but unique identifier for test
// fixtures that don't care about a specific numeric id, e.g. constructing
// an Incident/Station/Apparatus without a real source-system id.
func SyntheticID() string {
	return uuid.NewString()
}
