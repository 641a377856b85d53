package channel

// LastValue stores the most recent committed value and keeps it until it is
// overwritten. When several chains write to the same LastValue channel within
// one step, the engine commits the writes in chain registration order, so the
// last-registered writer wins deterministically.
type LastValue[T any] struct {
	value T
	set   bool
}

// NewLastValue creates an empty last-value channel carrying T.
func NewLastValue[T any]() *LastValue[T] {
	return &LastValue[T]{}
}

// Update implements Channel. Each value overwrites the previous one; an empty
// batch leaves the channel untouched.
func (c *LastValue[T]) Update(values []any) error {
	for _, v := range values {
		tv, ok := v.(T)
		if !ok {
			return typeErr("LastValue", v)
		}
		c.value = tv
		c.set = true
	}
	return nil
}

// Get implements Channel. It returns the current value, or ErrEmpty if the
// channel was never written.
func (c *LastValue[T]) Get() (any, error) {
	if !c.set {
		return nil, ErrEmpty
	}
	return c.value, nil
}

// Copy implements Channel.
func (c *LastValue[T]) Copy() Channel {
	cp := *c
	return &cp
}

// Checkpoint implements Channel.
func (c *LastValue[T]) Checkpoint() (any, error) {
	if !c.set {
		return nil, ErrEmpty
	}
	return c.value, nil
}

// Restore implements Channel.
func (c *LastValue[T]) Restore(snapshot any) error {
	tv, ok := snapshot.(T)
	if !ok {
		return restoreErr("LastValue", snapshot)
	}
	c.value = tv
	c.set = true
	return nil
}
