package plan

import (
	"fmt"
	"slices"
)

// ValidationResult reports structural problems in a plan.
type ValidationResult struct {
	// Valid is false when Build would reject the plan.
	Valid bool

	// Errors lists problems that make the plan unbuildable.
	Errors []string

	// Warnings lists legal but suspicious constructs, such as cross
	// products or joins that can never match.
	Warnings []string
}

// Validate checks a plan without building it.
//
// Errors:
//   - nil nodes or patterns with an empty position
//   - joins without join variables, or on a variable neither side binds
//   - negative windows, offsets, or limits below NoLimit
//   - filters without a predicate
//
// Warnings:
//   - BGP children sharing no variable with earlier children (cross product)
//   - join variables bound by only one side
//   - filters reading variables their input never binds
//   - empty BGPs and unions
//
// Validate is a pure function with no side effects.
func Validate(n Node) ValidationResult {
	v := &validator{}
	v.validateNode("query", n)
	return ValidationResult{
		Valid:    len(v.errors) == 0,
		Errors:   v.errors,
		Warnings: v.warnings,
	}
}

// validator accumulates findings during traversal.
type validator struct {
	errors   []string
	warnings []string
}

func (v *validator) addError(path, format string, args ...any) {
	v.errors = append(v.errors, path+": "+fmt.Sprintf(format, args...))
}

func (v *validator) addWarning(path, format string, args ...any) {
	v.warnings = append(v.warnings, path+": "+fmt.Sprintf(format, args...))
}

func (v *validator) validateNode(path string, n Node) {
	switch n := n.(type) {
	case nil:
		v.addError(path, "missing plan node")
	case *Pattern:
		if err := n.Triple.Validate(); err != nil {
			v.addError(path, "%v", err)
		}
	case *BGP:
		v.validateBGP(path, n)
	case *Join:
		v.validateJoin(path+".join", "join", n.Left, n.Right, n.On, n.LHSWindow, n.RHSWindow)
	case *LeftJoin:
		v.validateJoin(path+".leftjoin", "leftjoin", n.Left, n.Right, n.On, n.LHSWindow, n.RHSWindow)
		if n.Filter != nil {
			v.validatePredicate(path+".leftjoin.filter", n.Filter, append(Variables(n.Left), Variables(n.Right)...))
		}
	case *Union:
		if len(n.Branches) == 0 {
			v.addWarning(path, "empty union never yields a solution")
		}
		for i, b := range n.Branches {
			v.validateNode(fmt.Sprintf("%s.union[%d]", path, i), b)
		}
	case *Filter:
		v.validateNode(path+".filter", n.Input)
		if n.Where == nil {
			v.addError(path+".filter", "missing predicate")
		} else {
			v.validatePredicate(path+".filter", n.Where, Variables(n.Input))
		}
	case *Slice:
		v.validateNode(path+".slice", n.Input)
		if n.Offset < 0 {
			v.addError(path+".slice", "offset must be non-negative, got %d", n.Offset)
		}
		if n.Limit < NoLimit {
			v.addError(path+".slice", "limit must be non-negative, got %d", n.Limit)
		}
	default:
		v.addError(path, "unknown plan node type %T", n)
	}
}

func (v *validator) validateBGP(path string, n *BGP) {
	if len(n.Children) == 0 {
		v.addWarning(path, "empty bgp yields only the seed")
	}
	var bound []string
	for i, c := range n.Children {
		childPath := fmt.Sprintf("%s.bgp[%d]", path, i)
		v.validateNode(childPath, c)
		if c == nil {
			continue
		}
		vars := Variables(c)
		if i > 0 && len(bound) > 0 && !slices.ContainsFunc(vars, func(s string) bool { return slices.Contains(bound, s) }) {
			v.addWarning(childPath, "shares no variable with earlier patterns (cross product)")
		}
		bound = append(bound, vars...)
	}
}

func (v *validator) validateJoin(path, kind string, left, right Node, on []string, lhsWindow, rhsWindow int) {
	v.validateNode(path+".lhs", left)
	v.validateNode(path+".rhs", right)

	if len(on) == 0 {
		v.addError(path, "no join variables")
	}
	if lhsWindow < 0 || rhsWindow < 0 {
		v.addError(path, "windows must be positive, got lhs=%d rhs=%d", lhsWindow, rhsWindow)
	}
	if left == nil || right == nil {
		return
	}

	lv, rv := Variables(left), Variables(right)
	for _, name := range on {
		inL, inR := slices.Contains(lv, name), slices.Contains(rv, name)
		switch {
		case !inL && !inR:
			v.addError(path, "join variable ?%s is bound by neither side", name)
		case !inR && kind == "leftjoin":
			v.addWarning(path, "rhs never binds ?%s; lhs rows pass through unmatched", name)
		case !inL || !inR:
			v.addWarning(path, "only one side binds ?%s; the join is empty unless the seed binds it", name)
		}
	}
}

func (v *validator) validatePredicate(path string, p Predicate, available []string) {
	switch p := p.(type) {
	case *Equals:
		if p.Value == nil {
			v.addError(path, "equals on ?%s has no value", p.Var)
		}
	case *SameVar:
	case *And:
		for i, sub := range p.Predicates {
			v.validatePredicate(fmt.Sprintf("%s.and[%d]", path, i), sub, available)
		}
		return
	default:
		v.addError(path, "unknown predicate type %T", p)
		return
	}
	for _, name := range PredicateVariables(p) {
		if name == "" {
			v.addError(path, "empty variable name")
		} else if !slices.Contains(available, name) {
			v.addWarning(path, "?%s is never bound by the input", name)
		}
	}
}
