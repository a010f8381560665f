package rdf

import "fmt"

// Triple is a fully bound subject/predicate/object statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewTriple creates a triple.
func NewTriple(s, p, o Term) Triple {
	return Triple{Subject: s, Predicate: p, Object: o}
}

func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.Subject, t.Predicate, t.Object)
}

// Pattern is a triple pattern. Each position holds a Term or a Var.
type Pattern struct {
	Subject   Node
	Predicate Node
	Object    Node
}

// NewPattern creates a triple pattern.
func NewPattern(s, p, o Node) Pattern {
	return Pattern{Subject: s, Predicate: p, Object: o}
}

// Nodes returns the three positions in subject, predicate, object order.
func (p Pattern) Nodes() [3]Node {
	return [3]Node{p.Subject, p.Predicate, p.Object}
}

// Variables returns the distinct variable names in position order.
func (p Pattern) Variables() []string {
	var vars []string
	seen := make(map[string]bool, 3)
	for _, n := range p.Nodes() {
		name, ok := IsVar(n)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		vars = append(vars, name)
	}
	return vars
}

// Validate checks that every position is set.
func (p Pattern) Validate() error {
	for i, n := range p.Nodes() {
		if n == nil {
			return fmt.Errorf("pattern position %d is empty", i)
		}
	}
	return nil
}

func (p Pattern) String() string {
	return fmt.Sprintf("%s %s %s", p.Subject, p.Predicate, p.Object)
}
