package dataset

import (
	"context"
	"sync"

	"github.com/roach88/triplestream/internal/rdf"
)

// Memory is an indexed in-memory Dataset.
//
// Triples keep insertion order; duplicates are ignored. Every index holds
// positions into the append-only triple slice, so an iterator captures a
// stable prefix at call time and later Adds are not visible to it.
//
// Thread-safety: Add and all lookups are safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	triples []rdf.Triple
	set     map[rdf.Triple]struct{}
	s       map[rdf.Term][]int
	p       map[rdf.Term][]int
	o       map[rdf.Term][]int
	sp      map[[2]rdf.Term][]int
	so      map[[2]rdf.Term][]int
	po      map[[2]rdf.Term][]int
}

// NewMemory creates a dataset holding the given triples.
func NewMemory(triples ...rdf.Triple) *Memory {
	m := &Memory{
		set: make(map[rdf.Triple]struct{}),
		s:   make(map[rdf.Term][]int),
		p:   make(map[rdf.Term][]int),
		o:   make(map[rdf.Term][]int),
		sp:  make(map[[2]rdf.Term][]int),
		so:  make(map[[2]rdf.Term][]int),
		po:  make(map[[2]rdf.Term][]int),
	}
	m.Add(triples...)
	return m
}

// Add inserts triples, skipping ones already present.
// Returns the number actually inserted.
func (m *Memory) Add(triples ...rdf.Triple) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	added := 0
	for _, t := range triples {
		if _, dup := m.set[t]; dup {
			continue
		}
		i := len(m.triples)
		m.triples = append(m.triples, t)
		m.set[t] = struct{}{}
		m.s[t.Subject] = append(m.s[t.Subject], i)
		m.p[t.Predicate] = append(m.p[t.Predicate], i)
		m.o[t.Object] = append(m.o[t.Object], i)
		m.sp[[2]rdf.Term{t.Subject, t.Predicate}] = append(m.sp[[2]rdf.Term{t.Subject, t.Predicate}], i)
		m.so[[2]rdf.Term{t.Subject, t.Object}] = append(m.so[[2]rdf.Term{t.Subject, t.Object}], i)
		m.po[[2]rdf.Term{t.Predicate, t.Object}] = append(m.po[[2]rdf.Term{t.Predicate, t.Object}], i)
		added++
	}
	return added
}

// Len returns the number of distinct triples.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.triples)
}

func (m *Memory) Triples(_ context.Context) Iterator {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return FromSlice(m.triples[:len(m.triples):len(m.triples)])
}

func (m *Memory) WithSubject(_ context.Context, s rdf.Term) Iterator {
	return m.lookup(func() []int { return m.s[s] })
}

func (m *Memory) WithPredicate(_ context.Context, p rdf.Term) Iterator {
	return m.lookup(func() []int { return m.p[p] })
}

func (m *Memory) WithObject(_ context.Context, o rdf.Term) Iterator {
	return m.lookup(func() []int { return m.o[o] })
}

func (m *Memory) WithSubjectPredicate(_ context.Context, s, p rdf.Term) Iterator {
	return m.lookup(func() []int { return m.sp[[2]rdf.Term{s, p}] })
}

func (m *Memory) WithSubjectObject(_ context.Context, s, o rdf.Term) Iterator {
	return m.lookup(func() []int { return m.so[[2]rdf.Term{s, o}] })
}

func (m *Memory) WithPredicateObject(_ context.Context, p, o rdf.Term) Iterator {
	return m.lookup(func() []int { return m.po[[2]rdf.Term{p, o}] })
}

func (m *Memory) Contains(_ context.Context, t rdf.Triple) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.set[t]
	return ok, nil
}

// lookup snapshots an index posting list and the triple slice under the read lock.
func (m *Memory) lookup(postings func() []int) Iterator {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := postings()
	return &indexIterator{
		triples: m.triples[:len(m.triples):len(m.triples)],
		ids:     ids[:len(ids):len(ids)],
	}
}

type indexIterator struct {
	triples []rdf.Triple
	ids     []int
	pos     int
	cur     rdf.Triple
	closed  bool
}

func (it *indexIterator) Next() bool {
	if it.closed || it.pos >= len(it.ids) {
		return false
	}
	it.cur = it.triples[it.ids[it.pos]]
	it.pos++
	return true
}

func (it *indexIterator) Triple() rdf.Triple { return it.cur }

func (it *indexIterator) Err() error { return nil }

func (it *indexIterator) Close() error {
	it.closed = true
	return nil
}
