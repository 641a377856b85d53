package testutil

import (
	"context"
	"fmt"

	"github.com/11zhouxuan/langgraph/pregel"
)

// AddOne returns a transform that increments an int input.
func AddOne() pregel.Transform {
	return func(_ context.Context, v any) (any, error) {
		n, ok := v.(int)
		if !ok {
			return nil, fmt.Errorf("want int, got %T", v)
		}
		return n + 1, nil
	}
}

// Constant returns a transform that ignores its input and yields v.
func Constant(v any) pregel.Transform {
	return func(context.Context, any) (any, error) { return v, nil }
}

// Passthrough returns a transform that yields its input unchanged.
func Passthrough() pregel.Transform {
	return func(_ context.Context, v any) (any, error) { return v, nil }
}

// Failing returns a transform that always fails with err.
func Failing(err error) pregel.Transform {
	return func(context.Context, any) (any, error) { return nil, err }
}

// DoubleString returns a transform that concatenates a string input with
// itself, the growth function used by the quiescence scenarios.
func DoubleString() pregel.Transform {
	return func(_ context.Context, v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("want string, got %T", v)
		}
		return s + s, nil
	}
}

// SuppressWhen returns a write mapper that suppresses the write whenever
// cond holds for the pipeline output, passing the value through otherwise.
func SuppressWhen(cond func(v any) bool) pregel.Transform {
	return func(_ context.Context, v any) (any, error) {
		if cond(v) {
			return pregel.SkipWrite, nil
		}
		return v, nil
	}
}
