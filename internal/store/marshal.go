package store

import (
	"fmt"
	"strconv"

	"github.com/roach88/triplestream/internal/querysql"
	"github.com/roach88/triplestream/internal/rdf"
)

// encodeTerm converts a term to its terms-table columns.
func encodeTerm(t rdf.Term) (querysql.Term, error) {
	switch v := t.(type) {
	case rdf.IRI:
		return querysql.Term{Kind: rdf.Kind(v), Value: string(v)}, nil
	case rdf.Blank:
		return querysql.Term{Kind: rdf.Kind(v), Value: string(v)}, nil
	case rdf.Literal:
		return querysql.Term{Kind: rdf.Kind(v), Value: v.Lexical, Datatype: v.Datatype, Lang: v.Lang}, nil
	case rdf.Integer:
		return querysql.Term{Kind: rdf.Kind(v), Value: strconv.FormatInt(int64(v), 10)}, nil
	case rdf.Boolean:
		return querysql.Term{Kind: rdf.Kind(v), Value: strconv.FormatBool(bool(v))}, nil
	default:
		return querysql.Term{}, fmt.Errorf("cannot encode term of type %T", t)
	}
}

// decodeTerm is the inverse of encodeTerm.
func decodeTerm(c querysql.Term) (rdf.Term, error) {
	switch c.Kind {
	case "iri":
		return rdf.IRI(c.Value), nil
	case "bnode":
		return rdf.Blank(c.Value), nil
	case "literal":
		return rdf.Literal{Lexical: c.Value, Datatype: c.Datatype, Lang: c.Lang}, nil
	case "integer":
		n, err := strconv.ParseInt(c.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode integer term %q: %w", c.Value, err)
		}
		return rdf.Integer(n), nil
	case "boolean":
		b, err := strconv.ParseBool(c.Value)
		if err != nil {
			return nil, fmt.Errorf("decode boolean term %q: %w", c.Value, err)
		}
		return rdf.Boolean(b), nil
	default:
		return nil, fmt.Errorf("unknown term kind %q", c.Kind)
	}
}

// encodeSelection encodes the bound positions; nil terms stay free.
func encodeSelection(s, p, o rdf.Term) (querysql.Selection, error) {
	var sel querysql.Selection
	slots := []struct {
		term rdf.Term
		dst  **querysql.Term
	}{
		{s, &sel.Subject},
		{p, &sel.Predicate},
		{o, &sel.Object},
	}
	for _, slot := range slots {
		if slot.term == nil {
			continue
		}
		enc, err := encodeTerm(slot.term)
		if err != nil {
			return querysql.Selection{}, err
		}
		*slot.dst = &enc
	}
	return sel, nil
}
