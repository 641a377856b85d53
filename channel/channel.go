package channel

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned by Get when a channel has no readable value, i.e.
	// it was never written (LastValue, BinaryOperatorAggregate) or the
	// previous step committed nothing to it (Inbox, UniqueInbox, Stream).
	ErrEmpty = errors.New("channel is empty")

	// ErrInvalidUpdate is returned by Update when a committed value does not
	// match the channel's declared element type, or by Restore when a
	// checkpoint snapshot has the wrong shape.
	ErrInvalidUpdate = errors.New("invalid channel update")
)

// Channel is the variant-independent contract the engine drives. Values cross
// it as `any`; the concrete variants are generic and reject mistyped values
// at the commit barrier rather than carrying reflection at read time.
type Channel interface {
	// Update applies the batch of values committed to this channel in one
	// superstep, in write order. An empty (or nil) batch marks a step in
	// which nothing was written, which still advances step-scoped state
	// (inbox batches are replaced, stream windows slide).
	Update(values []any) error

	// Get returns the channel's readable content under the variant's read
	// discipline, or ErrEmpty.
	Get() (any, error)

	// Copy returns a fresh channel of the same variant and element type
	// carrying a deep copy of the current state. The engine copies every
	// declared channel at the start of an invocation.
	Copy() Channel

	// Checkpoint returns a snapshot of the channel's state suitable for a
	// checkpoint.Saver. It returns ErrEmpty when there is nothing to save.
	Checkpoint() (any, error)

	// Restore replaces the channel's state with a snapshot previously
	// produced by Checkpoint on a channel of the same variant and type.
	Restore(snapshot any) error
}

// Batch is implemented by channel variants whose readable content is an
// ordered sequence (Inbox, UniqueInbox, Stream). Elements returns the same
// content as Get but as []any, so a chain subscribed in per-element mode can
// be fed one element at a time without reflection.
type Batch interface {
	Channel
	Elements() ([]any, error)
}

func typeErr(channelType string, v any) error {
	return fmt.Errorf("%w: %s received %T", ErrInvalidUpdate, channelType, v)
}

func restoreErr(channelType string, v any) error {
	return fmt.Errorf("%w: cannot restore %s from %T", ErrInvalidUpdate, channelType, v)
}
