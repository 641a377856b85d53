package pregel

import (
	"github.com/11zhouxuan/langgraph/channel"
	"github.com/11zhouxuan/langgraph/checkpoint"
	"github.com/11zhouxuan/langgraph/logging"
)

// DefaultMaxSteps bounds the superstep loop when Config.MaxSteps is zero.
const DefaultMaxSteps = 25

// StepHook observes one committed superstep: the step number and the names
// of the channels that received a committed write. It must treat the graph
// as read-only; it is called synchronously inside the step barrier.
type StepHook func(step int, updated []string)

// Config declares a graph: its chains, channels and input/output
// designations. All cross-references are validated by New; nothing is
// re-checked at run time.
type Config struct {
	// Chains in registration order. Registration order decides the commit
	// order of same-step writes to a shared channel and which chain's error
	// is reported when several fail in one step.
	Chains []*Chain

	// Channels maps each declared channel name to its variant. The declared
	// instances act as prototypes: every invocation works on copies.
	Channels map[string]channel.Channel

	// Input names the channels the initial values of an invocation are
	// committed to.
	Input []string

	// Output names the channels read and returned at quiescence.
	Output []string

	// MaxSteps bounds the superstep loop. Zero means DefaultMaxSteps.
	MaxSteps int
}

// Options carries the cross-cutting collaborators configured via functional
// options rather than Config fields.
type Options struct {
	// Logger receives structured engine logs. Defaults to NoOpLogger.
	Logger logging.Logger

	// StepHook, if set, is invoked once per committed superstep.
	StepHook StepHook

	// Saver, if set, receives a channel-state snapshot at every save point.
	Saver checkpoint.Saver

	// SaveAt selects the save points consulted when Saver is set.
	SaveAt checkpoint.At
}

// Pregel is a validated, immutable graph definition. It owns the channel
// prototypes and the chain set; all mutable state lives in per-invocation
// contexts, so a single Pregel value may be invoked concurrently.
type Pregel struct {
	chains   []*Chain
	channels map[string]channel.Channel
	input    []string
	output   []string
	maxSteps int

	logger   logging.Logger
	stepHook StepHook
	saver    checkpoint.Saver
	saveAt   checkpoint.At
}

// New validates the configuration and returns the graph. Validation covers:
// non-empty chain and channel sets, unique chain names, every subscription
// and write target referencing a declared channel, per-element subscriptions
// naming a batch channel, and input/output designations naming declared
// channels.
func New(cfg Config, optFns ...func(*Options)) (*Pregel, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	maxSteps := cfg.MaxSteps
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}

	return &Pregel{
		chains:   cfg.Chains,
		channels: cfg.Channels,
		input:    cfg.Input,
		output:   cfg.Output,
		maxSteps: maxSteps,
		logger:   opts.Logger,
		stepHook: opts.StepHook,
		saver:    opts.Saver,
		saveAt:   opts.SaveAt,
	}, nil
}

func validate(cfg Config) error {
	if len(cfg.Chains) == 0 {
		return validationErrf("no chains declared")
	}
	if len(cfg.Channels) == 0 {
		return validationErrf("no channels declared")
	}
	if cfg.MaxSteps < 0 {
		return validationErrf("MaxSteps must not be negative")
	}

	seen := make(map[string]struct{}, len(cfg.Chains))
	for _, c := range cfg.Chains {
		if c == nil {
			return validationErrf("nil chain declared")
		}
		if _, dup := seen[c.name]; dup {
			return validationErrf("duplicate chain name %q", c.name)
		}
		seen[c.name] = struct{}{}

		for _, sub := range c.subscriptions {
			ch, ok := cfg.Channels[sub]
			if !ok {
				return validationErrf("chain %q subscribes to undeclared channel %q", c.name, sub)
			}
			if c.mode == subscribeEach {
				if _, batch := ch.(channel.Batch); !batch {
					return validationErrf("chain %q subscribes per-element to %q which is not a batch channel", c.name, sub)
				}
			}
		}
		for _, w := range c.writes {
			if _, ok := cfg.Channels[w.channel]; !ok {
				return validationErrf("chain %q writes to undeclared channel %q", c.name, w.channel)
			}
		}
	}

	if len(cfg.Input) == 0 {
		return validationErrf("no input channels designated")
	}
	for _, name := range cfg.Input {
		if _, ok := cfg.Channels[name]; !ok {
			return validationErrf("input channel %q is not declared", name)
		}
	}
	if len(cfg.Output) == 0 {
		return validationErrf("no output channels designated")
	}
	for _, name := range cfg.Output {
		if _, ok := cfg.Channels[name]; !ok {
			return validationErrf("output channel %q is not declared", name)
		}
	}
	return nil
}
