package pregel

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/11zhouxuan/langgraph/channel"
	"github.com/11zhouxuan/langgraph/checkpoint"
)

// invocation is the transient per-call state: a private copy of every
// channel, the current step and the trigger set. Nothing here outlives one
// Invoke call, so concurrent invocations of the same graph never interfere.
type invocation struct {
	id       string
	graph    *Pregel
	channels map[string]channel.Channel
}

// task pairs an active chain with its input, fixed before any chain of the
// step runs so no chain can observe another's output from the same step.
type task struct {
	chain *Chain
	input any
}

// Invoke runs the graph to quiescence and returns the content of the output
// channel(s): the bare value for a single output channel, a map keyed by
// channel name for several. It fails with ErrInvalidInput, a *ChainError, a
// *StepLimitError or ErrOutputUnavailable.
func (p *Pregel) Invoke(ctx context.Context, input any) (any, error) {
	return p.invoke(ctx, uuid.NewString(), input)
}

// InvokeWithID runs the graph under a caller-chosen invocation id. With a
// checkpoint saver configured, channel state previously saved under the same
// id is restored before the input is committed, resuming the invocation.
func (p *Pregel) InvokeWithID(ctx context.Context, id string, input any) (any, error) {
	return p.invoke(ctx, id, input)
}

func (p *Pregel) invoke(ctx context.Context, id string, input any) (any, error) {
	inv := &invocation{
		id:       id,
		graph:    p,
		channels: make(map[string]channel.Channel, len(p.channels)),
	}
	for name, ch := range p.channels {
		inv.channels[name] = ch.Copy()
	}
	if err := inv.restore(); err != nil {
		return nil, err
	}

	writes, err := p.mapInput(input)
	if err != nil {
		return nil, err
	}

	// Step 0: the input commit.
	updated, err := inv.commit(0, writes)
	if err != nil {
		return nil, err
	}

	lastStep := 0
	for step := 1; ; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tasks, err := inv.prepareTasks(updated)
		if err != nil {
			return nil, err
		}
		if len(tasks) == 0 {
			p.logger.Debug("pregel.quiescent", "invocation_id", inv.id, "step", step, "reason", "no active chains")
			break
		}
		if step > p.maxSteps {
			return nil, &StepLimitError{Limit: p.maxSteps}
		}

		pending, err := inv.runTasks(ctx, step, tasks)
		if err != nil {
			return nil, err
		}
		if len(pending) == 0 {
			// Every write was suppressed; nothing can trigger the next
			// step and committed state is left as the previous barrier
			// produced it.
			p.logger.Debug("pregel.quiescent", "invocation_id", inv.id, "step", step, "reason", "no writes")
			break
		}

		updated, err = inv.commit(step, pending)
		if err != nil {
			return nil, err
		}
		lastStep = step
	}

	if p.saver != nil && p.saveAt == checkpoint.EndOfRun {
		if err := inv.save(lastStep); err != nil {
			return nil, err
		}
	}

	return inv.mapOutput()
}

// mapInput translates the caller's initial values into step-0 writes. With a
// single input channel the value is taken as-is; with several the value must
// be a map[string]any whose key set equals the input channel set exactly.
func (p *Pregel) mapInput(input any) ([]pendingWrite, error) {
	if len(p.input) == 1 {
		return []pendingWrite{{channel: p.input[0], value: input}}, nil
	}
	values, ok := input.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: want map[string]any for %d input channels, got %T", ErrInvalidInput, len(p.input), input)
	}
	if len(values) != len(p.input) {
		return nil, fmt.Errorf("%w: want values for %v", ErrInvalidInput, p.input)
	}
	writes := make([]pendingWrite, 0, len(p.input))
	for _, name := range p.input {
		v, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing value for input channel %q", ErrInvalidInput, name)
		}
		writes = append(writes, pendingWrite{channel: name, value: v})
	}
	return writes, nil
}

// prepareTasks computes the active set for the next step and fixes each
// active chain's input from the state committed at the last barrier.
func (inv *invocation) prepareTasks(updated []string) ([]task, error) {
	triggers := make(map[string]struct{}, len(updated))
	for _, name := range updated {
		triggers[name] = struct{}{}
	}

	var tasks []task
	for _, c := range inv.graph.chains {
		triggered := false
		for _, sub := range c.subscriptions {
			if _, ok := triggers[sub]; ok {
				triggered = true
				break
			}
		}
		if !triggered {
			continue
		}

		input, ok, err := inv.chainInput(c)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		tasks = append(tasks, task{chain: c, input: input})
	}
	return tasks, nil
}

func (inv *invocation) chainInput(c *Chain) (any, bool, error) {
	switch c.mode {
	case subscribeJoin:
		joined := make(map[string]any, len(c.subscriptions))
		for _, sub := range c.subscriptions {
			v, err := inv.channels[sub].Get()
			if errors.Is(err, channel.ErrEmpty) {
				continue
			}
			if err != nil {
				return nil, false, err
			}
			joined[sub] = v
		}
		return joined, true, nil
	case subscribeEach:
		batch := inv.channels[c.subscriptions[0]].(channel.Batch)
		elems, err := batch.Elements()
		if errors.Is(err, channel.ErrEmpty) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		return elems, true, nil
	default:
		v, err := inv.channels[c.subscriptions[0]].Get()
		if errors.Is(err, channel.ErrEmpty) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}
}

// runTasks executes every active chain of the step on its own goroutine and
// waits for all of them at the barrier. Writes are buffered per task and
// concatenated in registration order, so the outcome is identical for any
// execution order. On failure the first failing chain in registration order
// is reported and no writes survive.
func (inv *invocation) runTasks(ctx context.Context, step int, tasks []task) ([]pendingWrite, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([][]pendingWrite, len(tasks))
	errs := make([]error, len(tasks))

	start := time.Now()
	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t task) {
			defer wg.Done()
			chainStart := time.Now()
			writes, err := t.chain.run(runCtx, t.input)
			if err != nil {
				errs[i] = err
				cancel() // no point letting sibling chains run on
				return
			}
			results[i] = writes
			inv.graph.logger.Debug("pregel.chain.run",
				"invocation_id", inv.id, "chain", t.chain.name, "step", step,
				"duration", time.Since(chainStart))
		}(i, t)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			inv.graph.logger.Error("pregel.chain.failed",
				"invocation_id", inv.id, "chain", tasks[i].chain.name, "step", step, "error", err.Error())
			return nil, &ChainError{Chain: tasks[i].chain.name, Step: step, Err: err}
		}
	}

	var pending []pendingWrite
	for _, writes := range results {
		pending = append(pending, writes...)
	}
	inv.graph.logger.Debug("pregel.step.executed",
		"invocation_id", inv.id, "step", step, "active_chains", len(tasks),
		"buffered_writes", len(pending), "duration", time.Since(start))
	return pending, nil
}

// commit applies the buffered writes of one step under each channel's merge
// policy and returns the sorted set of channel names that received a write.
// Channels not written this step are notified with an empty batch so
// step-scoped state (inbox batches, stream windows) advances.
func (inv *invocation) commit(step int, writes []pendingWrite) ([]string, error) {
	byChannel := make(map[string][]any, len(writes))
	for _, w := range writes {
		byChannel[w.channel] = append(byChannel[w.channel], w.value)
	}

	updated := make([]string, 0, len(byChannel))
	for name, ch := range inv.channels {
		values := byChannel[name]
		if err := ch.Update(values); err != nil {
			return nil, fmt.Errorf("commit to channel %q at step %d: %w", name, step, err)
		}
		if len(values) > 0 {
			updated = append(updated, name)
		}
	}
	sort.Strings(updated)

	inv.graph.logger.Debug("pregel.step.committed",
		"invocation_id", inv.id, "step", step, "updated", updated)
	if inv.graph.stepHook != nil {
		inv.graph.stepHook(step, updated)
	}
	if inv.graph.saver != nil && inv.graph.saveAt == checkpoint.EndOfStep {
		if err := inv.save(step); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// save snapshots the channel state under the invocation id.
func (inv *invocation) save(step int) error {
	cp := checkpoint.Empty()
	cp.Step = step
	for name, ch := range inv.channels {
		snap, err := ch.Checkpoint()
		if errors.Is(err, channel.ErrEmpty) {
			continue
		}
		if err != nil {
			return err
		}
		cp.Values[name] = snap
	}
	if err := inv.graph.saver.Put(inv.id, cp); err != nil {
		return fmt.Errorf("checkpoint save at step %d: %w", step, err)
	}
	return nil
}

// restore loads previously saved channel state for the invocation id, if a
// saver is configured and has one.
func (inv *invocation) restore() error {
	if inv.graph.saver == nil {
		return nil
	}
	cp, err := inv.graph.saver.Get(inv.id)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	for name, snap := range cp.Values {
		ch, ok := inv.channels[name]
		if !ok {
			continue // channel removed from the graph since the snapshot
		}
		if err := ch.Restore(snap); err != nil {
			return fmt.Errorf("checkpoint restore of channel %q: %w", name, err)
		}
	}
	inv.graph.logger.Debug("pregel.checkpoint.restored", "invocation_id", inv.id, "step", cp.Step)
	return nil
}

// mapOutput reads the designated output channels at quiescence. A single
// output channel yields its bare value; several yield a map keyed by channel
// name containing the channels written at least once. Nothing readable at
// all surfaces as ErrOutputUnavailable.
func (inv *invocation) mapOutput() (any, error) {
	if len(inv.graph.output) == 1 {
		name := inv.graph.output[0]
		v, err := inv.channels[name].Get()
		if errors.Is(err, channel.ErrEmpty) {
			return nil, fmt.Errorf("%w: %q", ErrOutputUnavailable, name)
		}
		if err != nil {
			return nil, err
		}
		return v, nil
	}

	out := make(map[string]any, len(inv.graph.output))
	for _, name := range inv.graph.output {
		v, err := inv.channels[name].Get()
		if errors.Is(err, channel.ErrEmpty) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrOutputUnavailable, inv.graph.output)
	}
	return out, nil
}
