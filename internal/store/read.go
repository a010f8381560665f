package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/triplestream/internal/dataset"
	"github.com/roach88/triplestream/internal/querysql"
	"github.com/roach88/triplestream/internal/rdf"
)

var _ dataset.Dataset = (*Store)(nil)

func (s *Store) Triples(ctx context.Context) dataset.Iterator {
	return s.match(ctx, nil, nil, nil)
}

func (s *Store) WithSubject(ctx context.Context, subj rdf.Term) dataset.Iterator {
	return s.match(ctx, subj, nil, nil)
}

func (s *Store) WithPredicate(ctx context.Context, p rdf.Term) dataset.Iterator {
	return s.match(ctx, nil, p, nil)
}

func (s *Store) WithObject(ctx context.Context, o rdf.Term) dataset.Iterator {
	return s.match(ctx, nil, nil, o)
}

func (s *Store) WithSubjectPredicate(ctx context.Context, subj, p rdf.Term) dataset.Iterator {
	return s.match(ctx, subj, p, nil)
}

func (s *Store) WithSubjectObject(ctx context.Context, subj, o rdf.Term) dataset.Iterator {
	return s.match(ctx, subj, nil, o)
}

func (s *Store) WithPredicateObject(ctx context.Context, p, o rdf.Term) dataset.Iterator {
	return s.match(ctx, nil, p, o)
}

// Contains reports whether the fully bound triple is stored.
func (s *Store) Contains(ctx context.Context, t rdf.Triple) (bool, error) {
	sel, err := encodeSelection(t.Subject, t.Predicate, t.Object)
	if err != nil {
		return false, fmt.Errorf("contains: %w", err)
	}
	query, params, err := querysql.CompileExists(sel)
	if err != nil {
		return false, fmt.Errorf("contains: %w", err)
	}

	var one int
	err = s.db.QueryRowContext(ctx, query, params...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("contains: %w", err)
	}
	return true, nil
}

// match compiles the lookup now and defers the query to the first Next.
func (s *Store) match(ctx context.Context, subj, p, o rdf.Term) dataset.Iterator {
	sel, err := encodeSelection(subj, p, o)
	if err != nil {
		return dataset.Failed(fmt.Errorf("lookup: %w", err))
	}
	query, params, err := querysql.Compile(sel)
	if err != nil {
		return dataset.Failed(fmt.Errorf("lookup: %w", err))
	}
	return &rowIterator{ctx: ctx, db: s.db, query: query, params: params}
}

// rowIterator scans one triple per Next from a lazily opened *sql.Rows.
type rowIterator struct {
	ctx    context.Context
	db     *sql.DB
	query  string
	params []any

	rows *sql.Rows
	cur  rdf.Triple
	err  error
	done bool
}

func (it *rowIterator) Next() bool {
	if it.done {
		return false
	}
	if it.rows == nil {
		rows, err := it.db.QueryContext(it.ctx, it.query, it.params...)
		if err != nil {
			it.fail(fmt.Errorf("query triples: %w", err))
			return false
		}
		it.rows = rows
	}

	if !it.rows.Next() {
		if err := it.rows.Err(); err != nil {
			it.fail(fmt.Errorf("iterate triples: %w", err))
			return false
		}
		it.Close()
		return false
	}

	t, err := scanTriple(it.rows)
	if err != nil {
		it.fail(err)
		return false
	}
	it.cur = t
	return true
}

func (it *rowIterator) Triple() rdf.Triple { return it.cur }

func (it *rowIterator) Err() error { return it.err }

// Close releases the underlying rows. Safe to call more than once.
func (it *rowIterator) Close() error {
	it.done = true
	if it.rows == nil {
		return nil
	}
	err := it.rows.Close()
	it.rows = nil
	return err
}

func (it *rowIterator) fail(err error) {
	it.err = err
	it.Close()
}

// scanTriple decodes the twelve columns emitted by querysql.Compile.
func scanTriple(rows *sql.Rows) (rdf.Triple, error) {
	var c [3]querysql.Term
	if err := rows.Scan(
		&c[0].Kind, &c[0].Value, &c[0].Datatype, &c[0].Lang,
		&c[1].Kind, &c[1].Value, &c[1].Datatype, &c[1].Lang,
		&c[2].Kind, &c[2].Value, &c[2].Datatype, &c[2].Lang,
	); err != nil {
		return rdf.Triple{}, fmt.Errorf("scan triple: %w", err)
	}

	var terms [3]rdf.Term
	for i := range c {
		t, err := decodeTerm(c[i])
		if err != nil {
			return rdf.Triple{}, fmt.Errorf("scan triple: %w", err)
		}
		terms[i] = t
	}
	return rdf.NewTriple(terms[0], terms[1], terms[2]), nil
}
