package eval

import (
	"context"

	"github.com/roach88/triplestream/internal/binding"
)

// NoLimit passed as a SliceBlock limit keeps every solution after the offset.
const NoLimit = -1

// SliceBlock skips offset solutions of its child and yields at most limit
// of the rest. The child is closed as soon as the limit is reached, so
// nothing beyond offset+limit solutions is ever pulled.
type SliceBlock struct {
	child  Block
	offset int
	limit  int
}

// NewSliceBlock creates a slice over child. limit may be NoLimit.
func NewSliceBlock(child Block, offset, limit int) (*SliceBlock, error) {
	if child == nil {
		return nil, constructionErr(ErrCodeNilBlock, "slice", "child is nil")
	}
	if offset < 0 {
		return nil, constructionErr(ErrCodeInvalidSlice, "slice", "offset must be non-negative, got %d", offset)
	}
	if limit < NoLimit {
		return nil, constructionErr(ErrCodeInvalidSlice, "slice", "limit must be non-negative or NoLimit, got %d", limit)
	}
	return &SliceBlock{child: child, offset: offset, limit: limit}, nil
}

func (b *SliceBlock) Variables() []string { return b.child.Variables() }

func (b *SliceBlock) Evaluate(ctx context.Context, seed binding.Bindings) Stream {
	return &sliceBlockStream{
		in:      b.child.Evaluate(ctx, seed),
		skip:    b.offset,
		remains: b.limit,
	}
}

type sliceBlockStream struct {
	in      Stream
	skip    int
	remains int // NoLimit for unbounded
	cur     binding.Bindings
	err     error
	done    bool
}

func (s *sliceBlockStream) Next() bool {
	if s.done {
		return false
	}
	if s.remains == 0 {
		s.finish()
		return false
	}
	for s.skip > 0 {
		if !s.in.Next() {
			s.finish()
			return false
		}
		s.skip--
	}
	if !s.in.Next() {
		s.finish()
		return false
	}
	s.cur = s.in.Bindings()
	if s.remains > 0 {
		s.remains--
	}
	return true
}

func (s *sliceBlockStream) Bindings() binding.Bindings { return s.cur }

func (s *sliceBlockStream) Err() error {
	if err := s.in.Err(); err != nil {
		return err
	}
	return s.err
}

func (s *sliceBlockStream) Close() error {
	s.done = true
	return s.in.Close()
}

// finish closes the child once the slice has nothing more to yield.
func (s *sliceBlockStream) finish() {
	if err := s.Close(); err != nil && s.err == nil {
		s.err = err
	}
}
