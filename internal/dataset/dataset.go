// Package dataset defines the triple-retrieval capability consumed by the
// evaluation core, plus an indexed in-memory implementation.
//
// A Dataset answers lookups keyed by every combination of bound subject,
// predicate and object: six partial combinations, a full scan, and a
// containment check for the fully bound case. Results come back as lazy
// pull iterators; no lookup does any work until the first Next.
package dataset

import (
	"context"

	"github.com/roach88/triplestream/internal/rdf"
)

// Iterator is a lazy, pull-based sequence of triples.
//
// Usage mirrors database/sql.Rows:
//
//	it := ds.WithSubject(ctx, s)
//	defer it.Close()
//	for it.Next() {
//	    t := it.Triple()
//	}
//	if err := it.Err(); err != nil { ... }
//
// Next keeps returning false once the sequence is exhausted or closed.
type Iterator interface {
	Next() bool
	Triple() rdf.Triple
	Err() error
	Close() error
}

// Dataset is the retrieval capability used by pattern evaluation.
// Implementations must return independent iterators from every call.
type Dataset interface {
	// Triples returns every triple (full scan).
	Triples(ctx context.Context) Iterator
	WithSubject(ctx context.Context, s rdf.Term) Iterator
	WithPredicate(ctx context.Context, p rdf.Term) Iterator
	WithObject(ctx context.Context, o rdf.Term) Iterator
	WithSubjectPredicate(ctx context.Context, s, p rdf.Term) Iterator
	WithSubjectObject(ctx context.Context, s, o rdf.Term) Iterator
	WithPredicateObject(ctx context.Context, p, o rdf.Term) Iterator
	// Contains reports whether the fully bound triple is present.
	Contains(ctx context.Context, t rdf.Triple) (bool, error)
}

// Empty returns an iterator with no triples.
func Empty() Iterator {
	return &sliceIterator{}
}

// FromSlice returns an iterator over a copy-free view of triples.
// The caller must not modify the slice while the iterator is in use.
func FromSlice(triples []rdf.Triple) Iterator {
	return &sliceIterator{triples: triples}
}

// Collect drains it into a slice and closes it.
func Collect(it Iterator) ([]rdf.Triple, error) {
	defer it.Close()
	var out []rdf.Triple
	for it.Next() {
		out = append(out, it.Triple())
	}
	return out, it.Err()
}

type sliceIterator struct {
	triples []rdf.Triple
	pos     int
	cur     rdf.Triple
	closed  bool
}

func (it *sliceIterator) Next() bool {
	if it.closed || it.pos >= len(it.triples) {
		return false
	}
	it.cur = it.triples[it.pos]
	it.pos++
	return true
}

func (it *sliceIterator) Triple() rdf.Triple { return it.cur }

func (it *sliceIterator) Err() error { return nil }

func (it *sliceIterator) Close() error {
	it.closed = true
	return nil
}

// errIterator reports a failure on the first call to Next.
type errIterator struct{ err error }

// Failed returns an iterator that yields nothing and reports err.
func Failed(err error) Iterator { return &errIterator{err: err} }

func (it *errIterator) Next() bool         { return false }
func (it *errIterator) Triple() rdf.Triple { return rdf.Triple{} }
func (it *errIterator) Err() error         { return it.err }
func (it *errIterator) Close() error       { return nil }
