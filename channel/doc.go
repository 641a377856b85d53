// Package channel provides the typed, stateful communication primitives that
// chains exchange values through. Each channel variant implements a distinct
// merge/read discipline applied at the superstep barrier:
//
//   - LastValue: keeps the most recent committed value
//   - Inbox: exposes the batch committed in the previous step
//   - UniqueInbox: Inbox with duplicates dropped, first occurrence kept
//   - Stream: append-only history with a sliding one-step read window
//   - BinaryOperatorAggregate: folds every write into an accumulator
//
// A channel's variant and element type are fixed at construction. Channels
// are owned by the engine; chains never touch them directly. The Copy method
// produces the fresh per-invocation instance the engine uses to keep
// concurrent invocations isolated from each other.
package channel
