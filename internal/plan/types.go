package plan

import (
	"github.com/roach88/triplestream/internal/rdf"
)

// Node is a plan tree node.
//
// Node types:
//   - Pattern: one triple pattern
//   - BGP: conjunction by nested dependent evaluation
//   - Join / LeftJoin: windowed hash join of two independent subplans
//   - Union: concatenation
//   - Filter: per-solution predicate
//   - Slice: offset and limit
type Node interface {
	planNode() // Marker method - seals interface to this package
}

// Predicate is a filter condition over one solution.
//
// Predicate types:
//   - Equals: ?var = term
//   - SameVar: ?a = ?b
//   - And: all predicates hold (empty = always true)
//
// An unbound variable never satisfies Equals or SameVar.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Pattern matches a single triple pattern.
type Pattern struct {
	Triple rdf.Pattern
}

func (*Pattern) planNode() {}

// BGP evaluates Children in order, each seeded by the solutions of the
// previous ones. An empty BGP yields the seed unchanged.
type BGP struct {
	Children []Node
}

func (*BGP) planNode() {}

// Join is the natural join of Left and Right on the variables in On.
//
// Left and Right are evaluated independently with the same seed. Zero
// windows fall back to the build defaults.
type Join struct {
	Left      Node
	Right     Node
	On        []string
	LHSWindow int
	RHSWindow int
}

func (*Join) planNode() {}

// LeftJoin keeps every Left solution, extended by matching Right solutions
// when any exist. Filter, if set, must accept a merged candidate for it
// to count as a match.
type LeftJoin struct {
	Left      Node
	Right     Node
	On        []string
	Filter    Predicate
	LHSWindow int
	RHSWindow int
}

func (*LeftJoin) planNode() {}

// Union yields the solutions of each branch in turn.
type Union struct {
	Branches []Node
}

func (*Union) planNode() {}

// Filter keeps the solutions of Input satisfying Where.
type Filter struct {
	Input Node
	Where Predicate
}

func (*Filter) planNode() {}

// Slice skips Offset solutions of Input and keeps at most Limit of the
// rest. Limit NoLimit keeps all of them.
type Slice struct {
	Input  Node
	Offset int
	Limit  int
}

func (*Slice) planNode() {}

// NoLimit as a Slice limit keeps every solution after the offset.
const NoLimit = -1

// Equals holds when Var is bound to Value.
type Equals struct {
	Var   string
	Value rdf.Term
}

func (*Equals) predicateNode() {}

// SameVar holds when Left and Right are bound to the same term.
type SameVar struct {
	Left  string
	Right string
}

func (*SameVar) predicateNode() {}

// And holds when every predicate holds.
type And struct {
	Predicates []Predicate
}

func (*And) predicateNode() {}

// Variables lists the variables a node may bind, in first occurrence order.
func Variables(n Node) []string {
	seen := make(map[string]bool)
	var out []string
	var walk func(Node)
	add := func(vs []string) {
		for _, v := range vs {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	walk = func(n Node) {
		switch n := n.(type) {
		case *Pattern:
			add(n.Triple.Variables())
		case *BGP:
			for _, c := range n.Children {
				walk(c)
			}
		case *Join:
			walk(n.Left)
			walk(n.Right)
		case *LeftJoin:
			walk(n.Left)
			walk(n.Right)
		case *Union:
			for _, b := range n.Branches {
				walk(b)
			}
		case *Filter:
			walk(n.Input)
		case *Slice:
			walk(n.Input)
		}
	}
	walk(n)
	return out
}

// PredicateVariables lists the variables a predicate reads.
func PredicateVariables(p Predicate) []string {
	switch p := p.(type) {
	case *Equals:
		return []string{p.Var}
	case *SameVar:
		return []string{p.Left, p.Right}
	case *And:
		var out []string
		for _, sub := range p.Predicates {
			out = append(out, PredicateVariables(sub)...)
		}
		return out
	default:
		return nil
	}
}
