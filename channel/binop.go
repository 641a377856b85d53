package channel

// BinaryOperatorAggregate folds every committed value into an accumulator
// with a caller-supplied binary operator. The first committed value seeds the
// accumulator; readers always see the current fold result. Useful for
// counters, sums and other order-insensitive reductions.
type BinaryOperatorAggregate[T any] struct {
	op    func(T, T) T
	value T
	set   bool
}

// NewBinaryOperatorAggregate creates an aggregate channel folding with op.
func NewBinaryOperatorAggregate[T any](op func(T, T) T) *BinaryOperatorAggregate[T] {
	return &BinaryOperatorAggregate[T]{op: op}
}

// Update implements Channel.
func (c *BinaryOperatorAggregate[T]) Update(values []any) error {
	for _, v := range values {
		tv, ok := v.(T)
		if !ok {
			return typeErr("BinaryOperatorAggregate", v)
		}
		if !c.set {
			c.value = tv
			c.set = true
			continue
		}
		c.value = c.op(c.value, tv)
	}
	return nil
}

// Get implements Channel.
func (c *BinaryOperatorAggregate[T]) Get() (any, error) {
	if !c.set {
		return nil, ErrEmpty
	}
	return c.value, nil
}

// Copy implements Channel.
func (c *BinaryOperatorAggregate[T]) Copy() Channel {
	cp := *c
	return &cp
}

// Checkpoint implements Channel.
func (c *BinaryOperatorAggregate[T]) Checkpoint() (any, error) {
	if !c.set {
		return nil, ErrEmpty
	}
	return c.value, nil
}

// Restore implements Channel.
func (c *BinaryOperatorAggregate[T]) Restore(snapshot any) error {
	tv, ok := snapshot.(T)
	if !ok {
		return restoreErr("BinaryOperatorAggregate", snapshot)
	}
	c.value = tv
	c.set = true
	return nil
}
