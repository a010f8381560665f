package plan

import (
	"fmt"

	"github.com/roach88/triplestream/internal/binding"
	"github.com/roach88/triplestream/internal/eval"
)

// CompilePredicate turns a plan predicate into an evaluable one.
func CompilePredicate(p Predicate) (eval.Predicate, error) {
	switch p := p.(type) {
	case *Equals:
		if p.Value == nil {
			return nil, fmt.Errorf("equals on ?%s has no value", p.Var)
		}
		return func(b binding.Bindings) bool {
			t, ok := b.Get(p.Var)
			return ok && t == p.Value
		}, nil
	case *SameVar:
		return func(b binding.Bindings) bool {
			l, lok := b.Get(p.Left)
			r, rok := b.Get(p.Right)
			return lok && rok && l == r
		}, nil
	case *And:
		subs := make([]eval.Predicate, 0, len(p.Predicates))
		for _, sp := range p.Predicates {
			f, err := CompilePredicate(sp)
			if err != nil {
				return nil, err
			}
			subs = append(subs, f)
		}
		return func(b binding.Bindings) bool {
			for _, f := range subs {
				if !f(b) {
					return false
				}
			}
			return true
		}, nil
	case nil:
		return nil, fmt.Errorf("nil predicate")
	default:
		return nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}
