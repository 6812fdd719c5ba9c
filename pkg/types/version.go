package types

import "sync/atomic"

// MutationCounter tracks committed transitions and appends so read models can
// detect staleness without polling the stores.
type MutationCounter struct {
	value atomic.Uint64
}

// Bump records a mutation and returns the new version.
func (c *MutationCounter) Bump() uint64 {
	if c == nil {
		return 0
	}
	return c.value.Add(1)
}

// Version implements VersionSource.
func (c *MutationCounter) Version() uint64 {
	if c == nil {
		return 0
	}
	return c.value.Load()
}
