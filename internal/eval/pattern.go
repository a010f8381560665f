package eval

import (
	"context"

	"github.com/roach88/triplestream/internal/binding"
	"github.com/roach88/triplestream/internal/dataset"
	"github.com/roach88/triplestream/internal/rdf"
)

// PatternBlock matches a single triple pattern against a dataset.
type PatternBlock struct {
	pattern rdf.Pattern
	ds      dataset.Dataset
	vars    []string
}

// NewPatternBlock creates a block for pattern p over ds.
func NewPatternBlock(p rdf.Pattern, ds dataset.Dataset) (*PatternBlock, error) {
	if ds == nil {
		return nil, constructionErr(ErrCodeNilDataset, "pattern", "dataset is nil")
	}
	if err := p.Validate(); err != nil {
		return nil, constructionErr(ErrCodeInvalidPattern, "pattern", "%v", err)
	}
	return &PatternBlock{pattern: p, ds: ds, vars: p.Variables()}, nil
}

// Pattern returns the block's triple pattern.
func (b *PatternBlock) Pattern() rdf.Pattern { return b.pattern }

func (b *PatternBlock) Variables() []string { return b.vars }

// Evaluate substitutes seed-bound variables into the pattern, picks the
// dataset lookup matching the bound positions, and extends the seed with
// each retrieved triple. Triples that would bind one variable to two
// different terms are skipped.
func (b *PatternBlock) Evaluate(ctx context.Context, seed binding.Bindings) Stream {
	return &patternStream{ctx: ctx, block: b, seed: seed}
}

type patternStream struct {
	ctx   context.Context
	block *PatternBlock
	seed  binding.Bindings

	it   dataset.Iterator
	cur  binding.Bindings
	err  error
	done bool
}

func (s *patternStream) Next() bool {
	if s.done {
		return false
	}
	if s.it == nil {
		s.it = s.lookup()
	}
	for s.it.Next() {
		if b, ok := s.extend(s.it.Triple()); ok {
			s.cur = b
			return true
		}
	}
	s.err = s.it.Err()
	if err := s.Close(); err != nil && s.err == nil {
		s.err = err
	}
	return false
}

func (s *patternStream) Bindings() binding.Bindings { return s.cur }

func (s *patternStream) Err() error { return s.err }

func (s *patternStream) Close() error {
	s.done = true
	if s.it == nil {
		return nil
	}
	it := s.it
	s.it = nil
	return it.Close()
}

// bound returns the term fixed at a position, or nil when it is a free
// variable under the seed.
func (s *patternStream) bound(n rdf.Node) rdf.Term {
	if name, ok := rdf.IsVar(n); ok {
		t, _ := s.seed.Get(name)
		return t
	}
	return n.(rdf.Term)
}

// lookup selects among the eight bound/unbound combinations.
func (s *patternStream) lookup() dataset.Iterator {
	p := s.block.pattern
	subj, pred, obj := s.bound(p.Subject), s.bound(p.Predicate), s.bound(p.Object)
	ds := s.block.ds

	switch {
	case subj != nil && pred != nil && obj != nil:
		return &containsIterator{ctx: s.ctx, ds: ds, triple: rdf.NewTriple(subj, pred, obj)}
	case subj != nil && pred != nil:
		return ds.WithSubjectPredicate(s.ctx, subj, pred)
	case subj != nil && obj != nil:
		return ds.WithSubjectObject(s.ctx, subj, obj)
	case pred != nil && obj != nil:
		return ds.WithPredicateObject(s.ctx, pred, obj)
	case subj != nil:
		return ds.WithSubject(s.ctx, subj)
	case pred != nil:
		return ds.WithPredicate(s.ctx, pred)
	case obj != nil:
		return ds.WithObject(s.ctx, obj)
	default:
		return ds.Triples(s.ctx)
	}
}

// extend binds each variable position of the pattern to the triple's term.
func (s *patternStream) extend(t rdf.Triple) (binding.Bindings, bool) {
	p := s.block.pattern
	terms := [3]rdf.Term{t.Subject, t.Predicate, t.Object}
	out := s.seed
	for i, n := range p.Nodes() {
		name, isVar := rdf.IsVar(n)
		if !isVar {
			continue
		}
		var ok bool
		if out, ok = out.With(name, terms[i]); !ok {
			return binding.Bindings{}, false
		}
	}
	return out, true
}

// containsIterator serves the fully bound combination through
// Dataset.Contains, yielding the triple at most once.
type containsIterator struct {
	ctx    context.Context
	ds     dataset.Dataset
	triple rdf.Triple
	err    error
	done   bool
}

func (it *containsIterator) Next() bool {
	if it.done {
		return false
	}
	it.done = true
	ok, err := it.ds.Contains(it.ctx, it.triple)
	if err != nil {
		it.err = err
		return false
	}
	return ok
}

func (it *containsIterator) Triple() rdf.Triple { return it.triple }

func (it *containsIterator) Err() error { return it.err }

func (it *containsIterator) Close() error {
	it.done = true
	return nil
}
