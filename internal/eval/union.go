package eval

import (
	"context"

	"github.com/roach88/triplestream/internal/binding"
)

// UnionBlock concatenates the solutions of its children in order. Child
// i+1 is evaluated only once child i is exhausted.
type UnionBlock struct {
	children []Block
	vars     []string
}

// NewUnionBlock creates a union of children. With no children the union
// is empty.
func NewUnionBlock(children ...Block) (*UnionBlock, error) {
	lists := make([][]string, 0, len(children))
	for i, c := range children {
		if c == nil {
			return nil, constructionErr(ErrCodeNilBlock, "union", "child %d is nil", i)
		}
		lists = append(lists, c.Variables())
	}
	return &UnionBlock{children: children, vars: unionVars(lists...)}, nil
}

func (b *UnionBlock) Variables() []string { return b.vars }

func (b *UnionBlock) Evaluate(ctx context.Context, seed binding.Bindings) Stream {
	return &unionStream{ctx: ctx, children: b.children, seed: seed}
}

type unionStream struct {
	ctx      context.Context
	children []Block
	seed     binding.Bindings

	pos  int
	cur  Stream
	err  error
	done bool
}

func (s *unionStream) Next() bool {
	for !s.done {
		if s.cur == nil {
			if s.pos >= len(s.children) {
				s.done = true
				return false
			}
			s.cur = s.children[s.pos].Evaluate(s.ctx, s.seed)
			s.pos++
		}
		if s.cur.Next() {
			return true
		}
		if err := s.cur.Err(); err != nil {
			s.err = err
			s.Close()
			return false
		}
		err := s.cur.Close()
		s.cur = nil
		if err != nil {
			s.err = err
			s.done = true
			return false
		}
	}
	return false
}

func (s *unionStream) Bindings() binding.Bindings {
	if s.cur == nil {
		return binding.Bindings{}
	}
	return s.cur.Bindings()
}

func (s *unionStream) Err() error { return s.err }

func (s *unionStream) Close() error {
	s.done = true
	if s.cur == nil {
		return nil
	}
	err := s.cur.Close()
	s.cur = nil
	return err
}
