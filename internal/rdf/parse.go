package rdf

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseNode parses a pattern position written in term notation.
// A leading '?' or '$' denotes a variable; anything else is a Term.
func ParseNode(s string) (Node, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "?") || strings.HasPrefix(s, "$") {
		name := s[1:]
		if name == "" {
			return nil, fmt.Errorf("empty variable name in %q", s)
		}
		if strings.ContainsAny(name, " \t\n") {
			return nil, fmt.Errorf("invalid variable name %q", s)
		}
		return Var(name), nil
	}
	return ParseTerm(s)
}

// ParseTerm parses a single term written in term notation.
//
// Supported forms:
//   - "<http://example.org/a>" → IRI
//   - "_:b0" → Blank
//   - `"text"`, `"text"@en`, `"5"^^<http://www.w3.org/2001/XMLSchema#int>` → Literal
//   - "42", "-7" → Integer
//   - "true", "false" → Boolean
//   - "ex:alice", "alice" → IRI (bare and prefixed names are taken verbatim)
func ParseTerm(s string) (Term, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty term")
	}

	switch {
	case strings.HasPrefix(s, "<"):
		if !strings.HasSuffix(s, ">") || len(s) < 3 {
			return nil, fmt.Errorf("unterminated IRI %q", s)
		}
		return IRI(s[1 : len(s)-1]), nil
	case strings.HasPrefix(s, "_:"):
		if len(s) == 2 {
			return nil, fmt.Errorf("empty blank node label")
		}
		return Blank(s[2:]), nil
	case strings.HasPrefix(s, `"`):
		return parseLiteral(s)
	case s == "true":
		return Boolean(true), nil
	case s == "false":
		return Boolean(false), nil
	}

	if isNumeric(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("integer out of range %q: %w", s, err)
		}
		return Integer(n), nil
	}

	if strings.ContainsAny(s, " \t\n\"<>") {
		return nil, fmt.Errorf("invalid term %q", s)
	}
	return IRI(s), nil
}

// MustParseNode is like ParseNode but panics on error.
// Use only in tests or for literals known to be valid.
func MustParseNode(s string) Node {
	n, err := ParseNode(s)
	if err != nil {
		panic(err)
	}
	return n
}

// MustParseTerm is like ParseTerm but panics on error.
func MustParseTerm(s string) Term {
	t, err := ParseTerm(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParsePattern parses three positions into a Pattern.
func ParsePattern(s, p, o string) (Pattern, error) {
	var nodes [3]Node
	for i, raw := range []string{s, p, o} {
		n, err := ParseNode(raw)
		if err != nil {
			return Pattern{}, fmt.Errorf("position %d: %w", i, err)
		}
		nodes[i] = n
	}
	return NewPattern(nodes[0], nodes[1], nodes[2]), nil
}

// parseLiteral handles the three quoted literal forms.
func parseLiteral(s string) (Term, error) {
	end := closingQuote(s)
	if end < 0 {
		return nil, fmt.Errorf("unterminated literal %q", s)
	}
	lexical, err := strconv.Unquote(s[:end+1])
	if err != nil {
		return nil, fmt.Errorf("invalid literal %q: %w", s, err)
	}

	rest := s[end+1:]
	switch {
	case rest == "":
		return NewLiteral(lexical), nil
	case strings.HasPrefix(rest, "@"):
		if len(rest) == 1 {
			return nil, fmt.Errorf("empty language tag in %q", s)
		}
		return NewLangLiteral(lexical, rest[1:]), nil
	case strings.HasPrefix(rest, "^^"):
		dt, err := ParseTerm(rest[2:])
		if err != nil {
			return nil, fmt.Errorf("datatype of %q: %w", s, err)
		}
		iri, ok := dt.(IRI)
		if !ok {
			return nil, fmt.Errorf("datatype of %q must be an IRI", s)
		}
		return NewTypedLiteral(lexical, string(iri)), nil
	default:
		return nil, fmt.Errorf("unexpected suffix %q after literal", rest)
	}
}

// closingQuote returns the index of the quote ending the literal that starts at s[0].
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// isNumeric checks if a string is a valid optionally signed integer.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	start := 0
	if s[0] == '-' || s[0] == '+' {
		start = 1
	}
	if start >= len(s) {
		return false
	}
	for i := start; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
