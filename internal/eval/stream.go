package eval

import (
	"context"

	"github.com/roach88/triplestream/internal/binding"
)

// Stream is a lazy, pull-based sequence of solutions.
//
// Next advances to the next solution and reports whether one exists. Once
// Next returns false it keeps returning false; Err then reports whether
// the stream ended because of a failure. A stream that runs out closes its
// inputs itself, and a failure to close them is reported by Err. Close
// releases resources held by the stream and any inputs it is still
// reading; it is safe to call at any time and more than once.
type Stream interface {
	Next() bool
	Bindings() binding.Bindings
	Err() error
	Close() error
}

// Block is a stateless evaluation step.
type Block interface {
	// Evaluate returns the solutions of this block extending seed.
	// Every solution s satisfies: seed.Merge(s) == s.
	// Evaluate does no work until the returned stream is pulled.
	Evaluate(ctx context.Context, seed binding.Bindings) Stream

	// Variables lists the variables the block may bind, in first
	// occurrence order. Used for structural checks such as whether a
	// join side can ever bind its join variables.
	Variables() []string
}

// Collect pulls up to n solutions from s (all of them when n < 0) and
// closes it.
func Collect(s Stream, n int) ([]binding.Bindings, error) {
	defer s.Close()
	var out []binding.Bindings
	for n < 0 || len(out) < n {
		if !s.Next() {
			return out, s.Err()
		}
		out = append(out, s.Bindings())
	}
	return out, nil
}

// FromSlice returns a stream over fixed solutions.
func FromSlice(solutions ...binding.Bindings) Stream {
	return &sliceStream{items: solutions}
}

// Empty returns a stream with no solutions.
func Empty() Stream {
	return &sliceStream{}
}

// failed returns a stream that yields nothing and reports err.
func failed(err error) Stream {
	return &sliceStream{err: err}
}

type sliceStream struct {
	items  []binding.Bindings
	pos    int
	cur    binding.Bindings
	err    error
	closed bool
}

func (s *sliceStream) Next() bool {
	if s.closed || s.pos >= len(s.items) {
		return false
	}
	s.cur = s.items[s.pos]
	s.pos++
	return true
}

func (s *sliceStream) Bindings() binding.Bindings { return s.cur }

func (s *sliceStream) Err() error { return s.err }

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}

// unionVars appends the variables of each list, keeping first occurrences.
func unionVars(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range lists {
		for _, v := range l {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}
