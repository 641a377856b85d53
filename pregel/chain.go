package pregel

import (
	"context"
	"fmt"
)

// Transform is one pipeline stage: a callable taking one input value and
// returning one output value or failing. Stages must be free of side effects
// on channel state; all channel writes go through the engine's buffer.
type Transform func(ctx context.Context, input any) (any, error)

// skip is the type of the SkipWrite sentinel.
type skip struct{}

// SkipWrite is the sentinel a write mapper returns to suppress the write to
// its target channel for this step. A suppressed write is not an error and
// does not trigger subscribers of the target channel.
var SkipWrite = skip{}

type subscribeMode int

const (
	subscribeSingle subscribeMode = iota
	subscribeJoin
	subscribeEach
)

type writeTarget struct {
	channel string
	mapper  Transform // nil writes the pipeline output unchanged
}

// Chain is an immutable reactive unit: one or more channel subscriptions, an
// ordered transform pipeline and an ordered list of conditional channel
// writes. Chains are built once via NewChain and reused across invocations.
type Chain struct {
	name          string
	subscriptions []string
	mode          subscribeMode
	pipeline      []Transform
	writes        []writeTarget
}

// Name returns the chain's unique name within its graph.
func (c *Chain) Name() string { return c.name }

// Subscriptions returns the channel names the chain is triggered by.
func (c *Chain) Subscriptions() []string {
	out := make([]string, len(c.subscriptions))
	copy(out, c.subscriptions)
	return out
}

// ChainBuilder assembles a Chain declaratively. Calls may be chained; Build
// validates the result. The zero value is not usable, start with NewChain.
type ChainBuilder struct {
	chain Chain
	err   error
}

// NewChain starts building a chain with the given name.
func NewChain(name string) *ChainBuilder {
	return &ChainBuilder{chain: Chain{name: name}}
}

// SubscribeTo declares the channels that trigger the chain. With a single
// channel the pipeline receives that channel's value directly; with several
// it receives a map[string]any keyed by channel name holding each channel's
// current content (empty channels are absent from the map).
func (b *ChainBuilder) SubscribeTo(channels ...string) *ChainBuilder {
	if b.err != nil {
		return b
	}
	if len(b.chain.subscriptions) > 0 {
		b.err = validationErrf("chain %q: subscription already declared", b.chain.name)
		return b
	}
	if len(channels) == 0 {
		b.err = validationErrf("chain %q: SubscribeTo requires at least one channel", b.chain.name)
		return b
	}
	b.chain.subscriptions = channels
	if len(channels) > 1 {
		b.chain.mode = subscribeJoin
	}
	return b
}

// SubscribeToEach declares a single batch channel (Inbox, UniqueInbox or
// Stream) and runs the pipeline once per element of the batch committed in
// the previous step. Each per-element result flows through the write targets
// independently.
func (b *ChainBuilder) SubscribeToEach(ch string) *ChainBuilder {
	if b.err != nil {
		return b
	}
	if len(b.chain.subscriptions) > 0 {
		b.err = validationErrf("chain %q: subscription already declared", b.chain.name)
		return b
	}
	b.chain.subscriptions = []string{ch}
	b.chain.mode = subscribeEach
	return b
}

// Then appends pipeline stages, executed in the order given.
func (b *ChainBuilder) Then(stages ...Transform) *ChainBuilder {
	if b.err != nil {
		return b
	}
	b.chain.pipeline = append(b.chain.pipeline, stages...)
	return b
}

// WriteTo appends write targets that receive the pipeline output unchanged.
func (b *ChainBuilder) WriteTo(channels ...string) *ChainBuilder {
	if b.err != nil {
		return b
	}
	for _, ch := range channels {
		b.chain.writes = append(b.chain.writes, writeTarget{channel: ch})
	}
	return b
}

// WriteToWith appends a write target whose value is derived from the
// pipeline output by mapper. Returning SkipWrite from mapper suppresses the
// write for that step.
func (b *ChainBuilder) WriteToWith(ch string, mapper Transform) *ChainBuilder {
	if b.err != nil {
		return b
	}
	b.chain.writes = append(b.chain.writes, writeTarget{channel: ch, mapper: mapper})
	return b
}

// Build validates and returns the immutable chain. A chain must subscribe to
// at least one channel and have a non-empty pipeline; a chain without write
// targets is legal and acts as a sink.
func (b *ChainBuilder) Build() (*Chain, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.chain.name == "" {
		return nil, validationErrf("chain name must not be empty")
	}
	if len(b.chain.subscriptions) == 0 {
		return nil, validationErrf("chain %q: no subscriptions", b.chain.name)
	}
	if len(b.chain.pipeline) == 0 {
		return nil, validationErrf("chain %q: empty pipeline", b.chain.name)
	}
	c := b.chain
	return &c, nil
}

// MustBuild is Build panicking on error, for statically correct declarations.
func (b *ChainBuilder) MustBuild() *Chain {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}

// pendingWrite is one buffered (channel, value) pair produced by a chain and
// held until the step barrier.
type pendingWrite struct {
	channel string
	value   any
}

// run executes the chain against its prepared input and returns the buffered
// writes. In per-element mode the input is the batch as []any and the
// pipeline runs once per element.
func (c *Chain) run(ctx context.Context, input any) ([]pendingWrite, error) {
	if c.mode != subscribeEach {
		return c.runOne(ctx, input)
	}
	elems, ok := input.([]any)
	if !ok {
		return nil, fmt.Errorf("chain %q: per-element input must be a batch, got %T", c.name, input)
	}
	var writes []pendingWrite
	for _, e := range elems {
		w, err := c.runOne(ctx, e)
		if err != nil {
			return nil, err
		}
		writes = append(writes, w...)
	}
	return writes, nil
}

func (c *Chain) runOne(ctx context.Context, v any) ([]pendingWrite, error) {
	var err error
	for i, stage := range c.pipeline {
		v, err = stage(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("pipeline stage %d: %w", i, err)
		}
	}
	writes := make([]pendingWrite, 0, len(c.writes))
	for _, t := range c.writes {
		out := v
		if t.mapper != nil {
			out, err = t.mapper(ctx, v)
			if err != nil {
				return nil, fmt.Errorf("write mapping for %q: %w", t.channel, err)
			}
		}
		if _, suppressed := out.(skip); suppressed {
			continue
		}
		writes = append(writes, pendingWrite{channel: t.channel, value: out})
	}
	return writes, nil
}
