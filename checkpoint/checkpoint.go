package checkpoint

import "fmt"

// At selects the step boundaries where the engine hands a snapshot to the
// configured Saver.
type At int

const (
	// EndOfRun saves a single checkpoint once the invocation reaches
	// quiescence.
	EndOfRun At = iota
	// EndOfStep saves a checkpoint at every step barrier.
	EndOfStep
)

// String returns the string representation of the save point.
func (a At) String() string {
	switch a {
	case EndOfRun:
		return "end-of-run"
	case EndOfStep:
		return "end-of-step"
	default:
		return "unknown"
	}
}

// Checkpoint is a snapshot of an invocation's channel state taken at a step
// barrier. Values holds the per-channel snapshots produced by each channel's
// Checkpoint method, keyed by channel name; channels that were empty at the
// barrier are absent.
type Checkpoint struct {
	// Step is the superstep after whose barrier the snapshot was taken.
	// Step 0 is the initial input commit.
	Step int
	// Values maps channel name to that channel's snapshot.
	Values map[string]any
}

// Empty returns a zero-step checkpoint with no channel values.
func Empty() *Checkpoint {
	return &Checkpoint{Values: map[string]any{}}
}

// Clone returns a copy sharing the (immutable by convention) channel
// snapshots but not the map.
func (c *Checkpoint) Clone() *Checkpoint {
	cp := &Checkpoint{Step: c.Step, Values: make(map[string]any, len(c.Values))}
	for k, v := range c.Values {
		cp.Values[k] = v
	}
	return cp
}

var (
	// ErrNotFound is returned when no checkpoint exists for the given
	// invocation id.
	ErrNotFound = fmt.Errorf("checkpoint not found")
)

// Saver stores and retrieves checkpoints keyed by invocation id. Save is
// called from inside the engine's step barrier and must not block for long;
// durable implementations should buffer internally.
type Saver interface {
	// Get returns the latest checkpoint for the id, or ErrNotFound.
	Get(id string) (*Checkpoint, error)

	// Put stores cp as the latest checkpoint for the id.
	Put(id string, cp *Checkpoint) error
}
