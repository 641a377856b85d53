// Package pregel implements the bulk-synchronous-parallel execution engine
// driving networks of chains that communicate through channels.
//
// A graph is declared once from immutable chains and named channels, then
// invoked any number of times. Each invocation proceeds in supersteps:
//
//  1. The initial values are committed to the input channels (step 0).
//  2. Every chain subscribed to a channel committed in the previous step
//     becomes active. Active chains run in isolation against the state
//     committed at the previous barrier; their writes are buffered.
//  3. At the step barrier all buffered writes are committed under each
//     channel's merge policy, in chain registration order.
//  4. The loop ends when no chain is active or a step commits nothing
//     (quiescence), or fails once the step bound is exceeded.
//
// Because chains never observe writes from their own step, running them on
// parallel goroutines is indistinguishable from any sequential order.
package pregel
