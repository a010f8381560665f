package testutil

import (
	"context"
	"sync/atomic"

	"github.com/roach88/triplestream/internal/binding"
	"github.com/roach88/triplestream/internal/eval"
)

// CountingBlock wraps a block and counts how many solutions were pulled
// from it across every stream it returned.
//
// Used to assert laziness: a consumer that stops after K results must not
// have forced more than a bounded number of pulls.
//
// Thread-safety: counters are atomic; streams themselves are not.
type CountingBlock struct {
	inner       eval.Block
	pulls       atomic.Int64
	evaluations atomic.Int64
	closes      atomic.Int64
}

// NewCountingBlock wraps inner.
func NewCountingBlock(inner eval.Block) *CountingBlock {
	return &CountingBlock{inner: inner}
}

// Pulls returns the number of successful Next calls across all streams.
func (c *CountingBlock) Pulls() int64 { return c.pulls.Load() }

// Evaluations returns how many times Evaluate was called.
func (c *CountingBlock) Evaluations() int64 { return c.evaluations.Load() }

// Closes returns how many streams were closed at least once.
func (c *CountingBlock) Closes() int64 { return c.closes.Load() }

func (c *CountingBlock) Variables() []string { return c.inner.Variables() }

func (c *CountingBlock) Evaluate(ctx context.Context, seed binding.Bindings) eval.Stream {
	c.evaluations.Add(1)
	return &countingStream{inner: c.inner.Evaluate(ctx, seed), block: c}
}

type countingStream struct {
	inner  eval.Stream
	block  *CountingBlock
	closed bool
}

func (s *countingStream) Next() bool {
	if s.inner.Next() {
		s.block.pulls.Add(1)
		return true
	}
	return false
}

func (s *countingStream) Bindings() binding.Bindings { return s.inner.Bindings() }

func (s *countingStream) Err() error { return s.inner.Err() }

func (s *countingStream) Close() error {
	if !s.closed {
		s.closed = true
		s.block.closes.Add(1)
	}
	return s.inner.Close()
}
