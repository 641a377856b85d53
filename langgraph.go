// Package langgraph provides a high-level façade over the pregel execution
// engine and its channel, checkpoint and logging services, enabling rapid
// construction of message-passing computation graphs. Most applications
// interact with this package by:
//  1. Creating a Graph via New() (optionally overriding the logger or
//     attaching a checkpoint saver)
//  2. Declaring channels and registering chains built with NewChain
//  3. Compiling the graph and invoking it with an input value
//
// The façade delegates execution to pregel.Pregel while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a durable checkpoint
// saver and a structured logger.
package langgraph

import (
	"context"

	"github.com/11zhouxuan/langgraph/channel"
	"github.com/11zhouxuan/langgraph/checkpoint"
	"github.com/11zhouxuan/langgraph/logging"
	"github.com/11zhouxuan/langgraph/pregel"
)

// Options configures a Graph.
type Options struct {
	// MaxSteps bounds the superstep loop of every invocation. Zero selects
	// pregel.DefaultMaxSteps.
	MaxSteps int

	// Logger receives structured engine logs (defaults to NoOp logger if nil).
	Logger logging.Logger

	// Saver, if set, receives channel-state snapshots so invocations can be
	// resumed under the same invocation id.
	Saver checkpoint.Saver

	// SaveAt selects whether snapshots are taken at every step barrier or
	// only once at the end of the run.
	SaveAt checkpoint.At

	// StepHook, if set, observes every committed superstep.
	StepHook pregel.StepHook
}

// Graph accumulates channel declarations and chain registrations and compiles
// them into an executable pregel graph.
type Graph struct {
	opts     Options
	chains   []*pregel.Chain
	channels map[string]channel.Channel
	input    []string
	output   []string
}

// New creates a new Graph with optional overrides.
func New(optFns ...func(o *Options)) *Graph {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Graph{
		opts:     opts,
		channels: make(map[string]channel.Channel),
	}
}

// NewChain starts a chain definition. It is a convenience alias for
// pregel.NewChain so simple programs only import this package.
func NewChain(name string) *pregel.ChainBuilder { return pregel.NewChain(name) }

// AddChannel declares a named channel. Declaring the same name twice
// replaces the earlier variant.
func (g *Graph) AddChannel(name string, ch channel.Channel) *Graph {
	g.channels[name] = ch
	return g
}

// AddChain registers a chain. Registration order decides same-step commit
// order and error precedence.
func (g *Graph) AddChain(c *pregel.Chain) *Graph {
	g.chains = append(g.chains, c)
	return g
}

// WithInput designates the channels initial invocation values are committed to.
func (g *Graph) WithInput(names ...string) *Graph {
	g.input = append(g.input, names...)
	return g
}

// WithOutput designates the channels read and returned at quiescence.
func (g *Graph) WithOutput(names ...string) *Graph {
	g.output = append(g.output, names...)
	return g
}

// Compile validates the accumulated definition and returns the executable
// graph. The Graph can keep being extended and recompiled; compiled graphs
// are immutable and safe for concurrent invocation.
func (g *Graph) Compile() (*pregel.Pregel, error) {
	return pregel.New(pregel.Config{
		Chains:   g.chains,
		Channels: g.channels,
		Input:    g.input,
		Output:   g.output,
		MaxSteps: g.opts.MaxSteps,
	}, func(o *pregel.Options) {
		o.Logger = g.opts.Logger
		o.StepHook = g.opts.StepHook
		o.Saver = g.opts.Saver
		o.SaveAt = g.opts.SaveAt
	})
}

// Invoke is a synchronous helper that compiles the graph and runs a single
// invocation. Programs invoking repeatedly should Compile once and call
// Invoke on the result instead.
func (g *Graph) Invoke(ctx context.Context, input any) (any, error) {
	p, err := g.Compile()
	if err != nil {
		return nil, err
	}
	return p.Invoke(ctx, input)
}
