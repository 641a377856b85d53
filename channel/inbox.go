package channel

// Inbox collects the values written during one step and exposes them, in
// write order, to readers in the immediately following step. The batch is
// replaced (not merged) at every committing step, so content never survives
// longer than one step.
type Inbox[T any] struct {
	batch []T
}

// NewInbox creates an empty inbox channel carrying T.
func NewInbox[T any]() *Inbox[T] {
	return &Inbox[T]{}
}

// Update implements Channel. The previous batch is discarded and replaced by
// the committed values; committing nothing yields an empty batch.
func (c *Inbox[T]) Update(values []any) error {
	batch := make([]T, 0, len(values))
	for _, v := range values {
		tv, ok := v.(T)
		if !ok {
			return typeErr("Inbox", v)
		}
		batch = append(batch, tv)
	}
	c.batch = batch
	return nil
}

// Get implements Channel. It returns the batch committed in the previous
// step as a []T, or ErrEmpty if that batch is empty.
func (c *Inbox[T]) Get() (any, error) {
	if len(c.batch) == 0 {
		return nil, ErrEmpty
	}
	out := make([]T, len(c.batch))
	copy(out, c.batch)
	return out, nil
}

// Elements implements Batch.
func (c *Inbox[T]) Elements() ([]any, error) {
	if len(c.batch) == 0 {
		return nil, ErrEmpty
	}
	out := make([]any, len(c.batch))
	for i, v := range c.batch {
		out[i] = v
	}
	return out, nil
}

// Copy implements Channel.
func (c *Inbox[T]) Copy() Channel {
	cp := &Inbox[T]{}
	if c.batch != nil {
		cp.batch = make([]T, len(c.batch))
		copy(cp.batch, c.batch)
	}
	return cp
}

// Checkpoint implements Channel.
func (c *Inbox[T]) Checkpoint() (any, error) {
	if len(c.batch) == 0 {
		return nil, ErrEmpty
	}
	out := make([]T, len(c.batch))
	copy(out, c.batch)
	return out, nil
}

// Restore implements Channel.
func (c *Inbox[T]) Restore(snapshot any) error {
	batch, ok := snapshot.([]T)
	if !ok {
		return restoreErr("Inbox", snapshot)
	}
	c.batch = make([]T, len(batch))
	copy(c.batch, batch)
	return nil
}

// UniqueInbox behaves like Inbox but drops duplicate values within a batch,
// keeping the first occurrence order. The element type must be comparable.
type UniqueInbox[T comparable] struct {
	batch []T
}

// NewUniqueInbox creates an empty deduplicating inbox channel carrying T.
func NewUniqueInbox[T comparable]() *UniqueInbox[T] {
	return &UniqueInbox[T]{}
}

// Update implements Channel.
func (c *UniqueInbox[T]) Update(values []any) error {
	batch := make([]T, 0, len(values))
	seen := make(map[T]struct{}, len(values))
	for _, v := range values {
		tv, ok := v.(T)
		if !ok {
			return typeErr("UniqueInbox", v)
		}
		if _, dup := seen[tv]; dup {
			continue
		}
		seen[tv] = struct{}{}
		batch = append(batch, tv)
	}
	c.batch = batch
	return nil
}

// Get implements Channel.
func (c *UniqueInbox[T]) Get() (any, error) {
	if len(c.batch) == 0 {
		return nil, ErrEmpty
	}
	out := make([]T, len(c.batch))
	copy(out, c.batch)
	return out, nil
}

// Elements implements Batch.
func (c *UniqueInbox[T]) Elements() ([]any, error) {
	if len(c.batch) == 0 {
		return nil, ErrEmpty
	}
	out := make([]any, len(c.batch))
	for i, v := range c.batch {
		out[i] = v
	}
	return out, nil
}

// Copy implements Channel.
func (c *UniqueInbox[T]) Copy() Channel {
	cp := &UniqueInbox[T]{}
	if c.batch != nil {
		cp.batch = make([]T, len(c.batch))
		copy(cp.batch, c.batch)
	}
	return cp
}

// Checkpoint implements Channel.
func (c *UniqueInbox[T]) Checkpoint() (any, error) {
	if len(c.batch) == 0 {
		return nil, ErrEmpty
	}
	out := make([]T, len(c.batch))
	copy(out, c.batch)
	return out, nil
}

// Restore implements Channel.
func (c *UniqueInbox[T]) Restore(snapshot any) error {
	batch, ok := snapshot.([]T)
	if !ok {
		return restoreErr("UniqueInbox", snapshot)
	}
	c.batch = make([]T, len(batch))
	copy(c.batch, batch)
	return nil
}
