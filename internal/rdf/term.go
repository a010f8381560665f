package rdf

import (
	"strconv"
	"strings"
)

// Node is anything that can occupy a triple-pattern position: a Term or a Var.
// Sealed - only types in this package implement it.
type Node interface {
	node()
	String() string
}

// Term is a concrete RDF term.
// Only IRI, Blank, Literal, Integer and Boolean implement this.
type Term interface {
	Node
	term()
}

// IRI is an IRI reference, stored without angle brackets.
type IRI string

func (IRI) node() {}
func (IRI) term() {}

func (i IRI) String() string { return "<" + string(i) + ">" }

// Blank is a blank node, stored without the "_:" prefix.
type Blank string

func (Blank) node() {}
func (Blank) term() {}

func (b Blank) String() string { return "_:" + string(b) }

// Literal is a plain, language-tagged, or datatyped literal.
// At most one of Datatype and Lang is set.
type Literal struct {
	Lexical  string
	Datatype string
	Lang     string
}

func (Literal) node() {}
func (Literal) term() {}

func (l Literal) String() string {
	s := strconv.Quote(l.Lexical)
	switch {
	case l.Lang != "":
		return s + "@" + l.Lang
	case l.Datatype != "":
		return s + "^^<" + l.Datatype + ">"
	}
	return s
}

// Integer is a native integer term.
type Integer int64

func (Integer) node() {}
func (Integer) term() {}

func (n Integer) String() string { return strconv.FormatInt(int64(n), 10) }

// Boolean is a native boolean term.
type Boolean bool

func (Boolean) node() {}
func (Boolean) term() {}

func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }

// Var is a named variable placeholder. The name excludes the leading '?'.
type Var string

func (Var) node() {}

func (v Var) String() string { return "?" + string(v) }

// NewLiteral creates a plain literal.
func NewLiteral(lexical string) Literal {
	return Literal{Lexical: lexical}
}

// NewLangLiteral creates a language-tagged literal. The tag is lower-cased.
func NewLangLiteral(lexical, lang string) Literal {
	return Literal{Lexical: lexical, Lang: strings.ToLower(lang)}
}

// NewTypedLiteral creates a datatyped literal.
func NewTypedLiteral(lexical, datatype string) Literal {
	return Literal{Lexical: lexical, Datatype: datatype}
}

// Kind returns a short stable name for the term's type.
// Used by storage encodings and the JSON term form.
func Kind(t Term) string {
	switch t.(type) {
	case IRI:
		return "iri"
	case Blank:
		return "bnode"
	case Literal:
		return "literal"
	case Integer:
		return "integer"
	case Boolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// IsVar reports whether n is a variable and returns its name.
func IsVar(n Node) (string, bool) {
	v, ok := n.(Var)
	return string(v), ok
}
