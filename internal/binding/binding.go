// Package binding provides the immutable solution mapping shared by every
// evaluation block.
//
// A Bindings value maps variable names to rdf terms. It is never mutated
// after construction: Merge, With and Project all return new values, so a
// Bindings can be shared freely between streams, indexes and consumers.
package binding

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/triplestream/internal/rdf"
)

// DomainBinding is the hash domain for Bindings.Hash.
const DomainBinding = "triplestream/binding/v1"

// ErrConflict is returned by From when a variable is given two different values.
var ErrConflict = errors.New("conflicting values for variable")

// Pair is a single variable/value assignment used to build Bindings.
type Pair struct {
	Var   string
	Value rdf.Term
}

// P is a shorthand for Pair.
// Example: From(P("x", rdf.Integer(3)), P("y", rdf.IRI("a")))
func P(v string, value rdf.Term) Pair {
	return Pair{Var: v, Value: value}
}

// Bindings is an immutable mapping from variable name to term.
// The zero value is the empty mapping.
type Bindings struct {
	m map[string]rdf.Term
}

// Empty returns Bindings with no variables.
func Empty() Bindings {
	return Bindings{}
}

// From builds Bindings from pairs. A variable repeated with the same value is
// accepted; repeated with a different value it is a contract violation and
// returns ErrConflict.
func From(pairs ...Pair) (Bindings, error) {
	if len(pairs) == 0 {
		return Empty(), nil
	}
	m := make(map[string]rdf.Term, len(pairs))
	for _, p := range pairs {
		if p.Var == "" {
			return Bindings{}, fmt.Errorf("empty variable name")
		}
		if p.Value == nil {
			return Bindings{}, fmt.Errorf("variable %q: nil value", p.Var)
		}
		if prev, ok := m[p.Var]; ok && prev != p.Value {
			return Bindings{}, fmt.Errorf("%w %q: %s vs %s", ErrConflict, p.Var, prev, p.Value)
		}
		m[p.Var] = p.Value
	}
	return Bindings{m: m}, nil
}

// Must is like From but panics on error.
// Use only in tests or when inputs are known to be valid.
func Must(pairs ...Pair) Bindings {
	b, err := From(pairs...)
	if err != nil {
		panic(err)
	}
	return b
}

// Get returns the value bound to v. An unbound variable is not an error.
func (b Bindings) Get(v string) (rdf.Term, bool) {
	t, ok := b.m[v]
	return t, ok
}

// Contains reports whether v is bound.
func (b Bindings) Contains(v string) bool {
	_, ok := b.m[v]
	return ok
}

// Len returns the number of bound variables.
func (b Bindings) Len() int {
	return len(b.m)
}

// IsEmpty reports whether no variable is bound.
func (b Bindings) IsEmpty() bool {
	return len(b.m) == 0
}

// Vars returns the bound variable names in sorted order.
func (b Bindings) Vars() []string {
	vars := make([]string, 0, len(b.m))
	for v := range b.m {
		vars = append(vars, v)
	}
	slices.Sort(vars)
	return vars
}

// Merge returns the union of b and other. Every variable bound in both must
// carry equal values, otherwise there is no result and ok is false.
// A failed merge is the normal "no match" outcome of a join, never an error.
func (b Bindings) Merge(other Bindings) (Bindings, bool) {
	if len(other.m) == 0 {
		return b, true
	}
	if len(b.m) == 0 {
		return other, true
	}

	small, large := b.m, other.m
	if len(small) > len(large) {
		small, large = large, small
	}
	for v, t := range small {
		if lt, ok := large[v]; ok && lt != t {
			return Bindings{}, false
		}
	}

	merged := make(map[string]rdf.Term, len(b.m)+len(other.m))
	for v, t := range b.m {
		merged[v] = t
	}
	for v, t := range other.m {
		merged[v] = t
	}
	return Bindings{m: merged}, true
}

// Compatible reports whether b and other agree on every shared variable.
func (b Bindings) Compatible(other Bindings) bool {
	small, large := b.m, other.m
	if len(small) > len(large) {
		small, large = large, small
	}
	for v, t := range small {
		if lt, ok := large[v]; ok && lt != t {
			return false
		}
	}
	return true
}

// With returns b extended by v=t. ok is false when v is already bound to a
// different value.
func (b Bindings) With(v string, t rdf.Term) (Bindings, bool) {
	if prev, exists := b.m[v]; exists {
		return b, prev == t
	}
	m := make(map[string]rdf.Term, len(b.m)+1)
	for k, val := range b.m {
		m[k] = val
	}
	m[v] = t
	return Bindings{m: m}, true
}

// Project returns the restriction of b to vars. Unbound names are skipped.
func (b Bindings) Project(vars []string) Bindings {
	m := make(map[string]rdf.Term, len(vars))
	for _, v := range vars {
		if t, ok := b.m[v]; ok {
			m[v] = t
		}
	}
	return Bindings{m: m}
}

// Equal reports whether both bind the same variables to equal values.
func (b Bindings) Equal(other Bindings) bool {
	if len(b.m) != len(other.m) {
		return false
	}
	for v, t := range b.m {
		if ot, ok := other.m[v]; !ok || ot != t {
			return false
		}
	}
	return true
}

// Key encodes the projection of b onto vars as a string usable as a hash
// key. The encoding is injective for a fixed vars slice. ok is false when any
// of vars is unbound.
func (b Bindings) Key(vars []string) (string, bool) {
	var sb strings.Builder
	for _, v := range vars {
		t, ok := b.m[v]
		if !ok {
			return "", false
		}
		s := t.String()
		sb.WriteString(strconv.Itoa(len(s)))
		sb.WriteByte(':')
		sb.WriteString(s)
	}
	return sb.String(), true
}

// Canonical returns the map form used for canonical JSON encoding.
func (b Bindings) Canonical() map[string]any {
	obj := make(map[string]any, len(b.m))
	for v, t := range b.m {
		obj[v] = rdf.TermJSON(t)
	}
	return obj
}

// Hash computes a content hash of b: SHA-256 over the domain, a 0x00
// separator, and the canonical JSON encoding.
func (b Bindings) Hash() (string, error) {
	canonical, err := rdf.MarshalCanonical(b.Canonical())
	if err != nil {
		return "", fmt.Errorf("binding hash: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(DomainBinding))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// String renders b deterministically, e.g. {?friend=<bob>, ?person=<alice>}.
func (b Bindings) String() string {
	vars := b.Vars()
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = "?" + v + "=" + b.m[v].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
