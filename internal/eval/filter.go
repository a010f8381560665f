package eval

import (
	"context"

	"github.com/roach88/triplestream/internal/binding"
)

// FilterBlock keeps the child's solutions accepted by a predicate.
type FilterBlock struct {
	child Block
	pred  Predicate
}

// NewFilterBlock creates a filter over child.
func NewFilterBlock(child Block, pred Predicate) (*FilterBlock, error) {
	if child == nil {
		return nil, constructionErr(ErrCodeNilBlock, "filter", "child is nil")
	}
	if pred == nil {
		return nil, constructionErr(ErrCodeNilPredicate, "filter", "predicate is nil")
	}
	return &FilterBlock{child: child, pred: pred}, nil
}

func (b *FilterBlock) Variables() []string { return b.child.Variables() }

func (b *FilterBlock) Evaluate(ctx context.Context, seed binding.Bindings) Stream {
	return &filterStream{in: b.child.Evaluate(ctx, seed), pred: b.pred}
}

type filterStream struct {
	in   Stream
	pred Predicate
	cur  binding.Bindings
}

func (s *filterStream) Next() bool {
	for s.in.Next() {
		if b := s.in.Bindings(); s.pred(b) {
			s.cur = b
			return true
		}
	}
	return false
}

func (s *filterStream) Bindings() binding.Bindings { return s.cur }

func (s *filterStream) Err() error { return s.in.Err() }

func (s *filterStream) Close() error { return s.in.Close() }
