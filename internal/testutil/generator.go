package testutil

import (
	"context"
	"errors"

	"github.com/roach88/triplestream/internal/binding"
	"github.com/roach88/triplestream/internal/eval"
	"github.com/roach88/triplestream/internal/rdf"
)

// Unbounded as a generator upper bound makes the sequence infinite.
const Unbounded int64 = -1

// GenBlock yields fn(k) merged with the seed for k = from, from+1, ...
// up to and including to. Values conflicting with the seed are skipped.
//
// An unbounded generator whose every value conflicts with the seed never
// terminates; tests bound such cases with Collect(stream, n).
type GenBlock struct {
	vars     []string
	from, to int64
	fn       func(k int64) binding.Bindings
}

// NewGenBlock creates a generator binding vars.
func NewGenBlock(vars []string, from, to int64, fn func(k int64) binding.Bindings) *GenBlock {
	return &GenBlock{vars: vars, from: from, to: to, fn: fn}
}

// Multiples yields {v: step*k} for k = 1, 2, ... forever.
func Multiples(v string, step int64) *GenBlock {
	return MultiplesUpTo(v, step, Unbounded)
}

// MultiplesUpTo yields {v: step*k} for k = 1..n (n == Unbounded: forever).
func MultiplesUpTo(v string, step, n int64) *GenBlock {
	return NewGenBlock([]string{v}, 1, n, func(k int64) binding.Bindings {
		return binding.Must(binding.P(v, rdf.Integer(step*k)))
	})
}

func (g *GenBlock) Variables() []string { return g.vars }

func (g *GenBlock) Evaluate(_ context.Context, seed binding.Bindings) eval.Stream {
	return &genStream{g: g, seed: seed, k: g.from}
}

type genStream struct {
	g    *GenBlock
	seed binding.Bindings
	k    int64
	cur  binding.Bindings
	done bool
}

func (s *genStream) Next() bool {
	for !s.done {
		if s.g.to != Unbounded && s.k > s.g.to {
			s.done = true
			return false
		}
		b, ok := s.seed.Merge(s.g.fn(s.k))
		s.k++
		if ok {
			s.cur = b
			return true
		}
	}
	return false
}

func (s *genStream) Bindings() binding.Bindings { return s.cur }

func (s *genStream) Err() error { return nil }

func (s *genStream) Close() error {
	s.done = true
	return nil
}

// ErrInjected is the failure produced by FailingBlock.
var ErrInjected = errors.New("injected failure")

// FailingBlock yields the solutions of inner, then fails with ErrInjected
// instead of ending.
type FailingBlock struct {
	inner eval.Block
}

// NewFailingBlock wraps inner.
func NewFailingBlock(inner eval.Block) *FailingBlock {
	return &FailingBlock{inner: inner}
}

func (f *FailingBlock) Variables() []string { return f.inner.Variables() }

func (f *FailingBlock) Evaluate(ctx context.Context, seed binding.Bindings) eval.Stream {
	return &failingStream{inner: f.inner.Evaluate(ctx, seed)}
}

type failingStream struct {
	inner eval.Stream
	err   error
}

func (s *failingStream) Next() bool {
	if s.err != nil {
		return false
	}
	if s.inner.Next() {
		return true
	}
	s.err = ErrInjected
	return false
}

func (s *failingStream) Bindings() binding.Bindings { return s.inner.Bindings() }

func (s *failingStream) Err() error { return s.err }

func (s *failingStream) Close() error { return s.inner.Close() }
