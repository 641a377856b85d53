// Package checkpoint defines the collaborator interface for persisting
// channel state at superstep boundaries. The engine's step barrier is the
// only point where channel state is mutated, so it is also the only point
// where a Saver is consulted. The core itself never requires a saver; the
// in-memory implementation here exists for tests and for resuming an
// invocation within one process.
package checkpoint
