package modelcache

import "time"

// State is the lifecycle state of one identifier's cache entry.
type State uint8

const (
	// StateAbsent means nothing is cached and no resolve is running.
	StateAbsent State = iota
	// StateLoading means a resolve is in flight; callers wait for it.
	StateLoading
	// StateReady means a handle is cached.
	StateReady
	// StateFailed means the last resolve failed and the cool-down has not elapsed.
	StateFailed
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "absent"
	}
}

// Snapshot is a read-only view of one cache entry.
type Snapshot struct {
	State      State
	Generation uint64
	Err        error
	FailedAt   time.Time
}
