package channel

// Stream appends every committed value to a permanent history. Readers see
// only the slice appended during the immediately preceding step (a sliding
// window), while History exposes the full record for diagnostics.
type Stream[T any] struct {
	history []T
	window  int // values appended by the most recent committing step
}

// NewStream creates an empty stream channel carrying T.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{}
}

// StreamSnapshot is the checkpoint form of a Stream channel.
type StreamSnapshot[T any] struct {
	History []T
	Window  int
}

// Update implements Channel. Values are appended to the history and become
// the read window; committing nothing slides the window shut.
func (c *Stream[T]) Update(values []any) error {
	for _, v := range values {
		tv, ok := v.(T)
		if !ok {
			return typeErr("Stream", v)
		}
		c.history = append(c.history, tv)
	}
	c.window = len(values)
	return nil
}

// Get implements Channel. It returns the values appended during the previous
// step as a []T, or ErrEmpty if that step appended nothing.
func (c *Stream[T]) Get() (any, error) {
	if c.window == 0 {
		return nil, ErrEmpty
	}
	out := make([]T, c.window)
	copy(out, c.history[len(c.history)-c.window:])
	return out, nil
}

// Elements implements Batch.
func (c *Stream[T]) Elements() ([]any, error) {
	if c.window == 0 {
		return nil, ErrEmpty
	}
	out := make([]any, c.window)
	for i, v := range c.history[len(c.history)-c.window:] {
		out[i] = v
	}
	return out, nil
}

// History returns a copy of every value ever committed to the stream.
func (c *Stream[T]) History() []T {
	out := make([]T, len(c.history))
	copy(out, c.history)
	return out
}

// Copy implements Channel.
func (c *Stream[T]) Copy() Channel {
	cp := &Stream[T]{window: c.window}
	if c.history != nil {
		cp.history = make([]T, len(c.history))
		copy(cp.history, c.history)
	}
	return cp
}

// Checkpoint implements Channel.
func (c *Stream[T]) Checkpoint() (any, error) {
	if len(c.history) == 0 {
		return nil, ErrEmpty
	}
	return StreamSnapshot[T]{History: c.History(), Window: c.window}, nil
}

// Restore implements Channel.
func (c *Stream[T]) Restore(snapshot any) error {
	s, ok := snapshot.(StreamSnapshot[T])
	if !ok {
		return restoreErr("Stream", snapshot)
	}
	c.history = make([]T, len(s.History))
	copy(c.history, s.History)
	c.window = s.Window
	return nil
}
