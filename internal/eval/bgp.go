package eval

import (
	"context"

	"github.com/roach88/triplestream/internal/binding"
	"github.com/roach88/triplestream/internal/dataset"
	"github.com/roach88/triplestream/internal/rdf"
)

// BGPBlock evaluates an ordered list of blocks by nested dependent
// evaluation: each solution of child i seeds child i+1, depth first.
// With no children it yields exactly the seed.
type BGPBlock struct {
	children []Block
	vars     []string
}

// NewBGPBlock creates a block over the given children, evaluated in order.
func NewBGPBlock(children ...Block) (*BGPBlock, error) {
	lists := make([][]string, 0, len(children))
	for i, c := range children {
		if c == nil {
			return nil, constructionErr(ErrCodeNilBlock, "bgp", "child %d is nil", i)
		}
		lists = append(lists, c.Variables())
	}
	return &BGPBlock{children: children, vars: unionVars(lists...)}, nil
}

// NewBGPFromPatterns creates a BGP of pattern blocks over ds.
func NewBGPFromPatterns(ds dataset.Dataset, patterns ...rdf.Pattern) (*BGPBlock, error) {
	children := make([]Block, 0, len(patterns))
	for _, p := range patterns {
		pb, err := NewPatternBlock(p, ds)
		if err != nil {
			return nil, err
		}
		children = append(children, pb)
	}
	return NewBGPBlock(children...)
}

// Children returns the child blocks in evaluation order.
func (b *BGPBlock) Children() []Block { return b.children }

func (b *BGPBlock) Variables() []string { return b.vars }

func (b *BGPBlock) Evaluate(ctx context.Context, seed binding.Bindings) Stream {
	return &bgpStream{ctx: ctx, children: b.children, seed: seed}
}

// bgpStream keeps one open stream per nesting level. The stream for
// child i+1 is evaluated only when child i yields a solution, so later
// children see new seeds only as the consumer pulls past earlier results.
type bgpStream struct {
	ctx      context.Context
	children []Block
	seed     binding.Bindings

	stack   []Stream
	started bool
	cur     binding.Bindings
	err     error
	done    bool
}

func (s *bgpStream) Next() bool {
	if s.done {
		return false
	}
	if !s.started {
		s.started = true
		if len(s.children) == 0 {
			s.cur = s.seed
			s.done = true
			return true
		}
		s.stack = append(s.stack, s.children[0].Evaluate(s.ctx, s.seed))
	}

	for len(s.stack) > 0 {
		if err := s.ctx.Err(); err != nil {
			s.fail(err)
			return false
		}
		top := s.stack[len(s.stack)-1]
		if !top.Next() {
			if err := top.Err(); err != nil {
				s.fail(err)
				return false
			}
			s.stack = s.stack[:len(s.stack)-1]
			if err := top.Close(); err != nil {
				s.fail(err)
				return false
			}
			continue
		}
		b := top.Bindings()
		if len(s.stack) == len(s.children) {
			s.cur = b
			return true
		}
		s.stack = append(s.stack, s.children[len(s.stack)].Evaluate(s.ctx, b))
	}

	s.done = true
	return false
}

func (s *bgpStream) Bindings() binding.Bindings { return s.cur }

func (s *bgpStream) Err() error { return s.err }

func (s *bgpStream) Close() error {
	s.done = true
	var first error
	for i := len(s.stack) - 1; i >= 0; i-- {
		if err := s.stack[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	s.stack = nil
	return first
}

func (s *bgpStream) fail(err error) {
	s.err = err
	s.Close()
}
