package plan

import (
	"fmt"
	"strings"
)

// Describe renders a plan as an indented algebra tree, one node per line.
//
//	join on ?person
//	  bgp
//	    ?person <type> <Person>
//	  bgp
//	    ?person <knows> ?friend
func Describe(n Node) string {
	var sb strings.Builder
	describe(&sb, n, 0)
	return sb.String()
}

func describe(sb *strings.Builder, n Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	switch n := n.(type) {
	case *Pattern:
		sb.WriteString(n.Triple.String())
		sb.WriteString("\n")
	case *BGP:
		sb.WriteString("bgp\n")
		for _, c := range n.Children {
			describe(sb, c, depth+1)
		}
	case *Join:
		fmt.Fprintf(sb, "join on %s%s\n", varList(n.On), windowSuffix(n.LHSWindow, n.RHSWindow))
		describe(sb, n.Left, depth+1)
		describe(sb, n.Right, depth+1)
	case *LeftJoin:
		fmt.Fprintf(sb, "leftjoin on %s%s", varList(n.On), windowSuffix(n.LHSWindow, n.RHSWindow))
		if n.Filter != nil {
			fmt.Fprintf(sb, " filter %s", DescribePredicate(n.Filter))
		}
		sb.WriteString("\n")
		describe(sb, n.Left, depth+1)
		describe(sb, n.Right, depth+1)
	case *Union:
		sb.WriteString("union\n")
		for _, b := range n.Branches {
			describe(sb, b, depth+1)
		}
	case *Filter:
		fmt.Fprintf(sb, "filter %s\n", DescribePredicate(n.Where))
		describe(sb, n.Input, depth+1)
	case *Slice:
		if n.Limit == NoLimit {
			fmt.Fprintf(sb, "slice offset %d\n", n.Offset)
		} else {
			fmt.Fprintf(sb, "slice offset %d limit %d\n", n.Offset, n.Limit)
		}
		describe(sb, n.Input, depth+1)
	case nil:
		sb.WriteString("<nil>\n")
	default:
		fmt.Fprintf(sb, "<%T>\n", n)
	}
}

// DescribePredicate renders a predicate in infix form.
func DescribePredicate(p Predicate) string {
	switch p := p.(type) {
	case *Equals:
		if p.Value == nil {
			return "?" + p.Var + " = <nil>"
		}
		return "?" + p.Var + " = " + p.Value.String()
	case *SameVar:
		return "?" + p.Left + " = ?" + p.Right
	case *And:
		if len(p.Predicates) == 0 {
			return "true"
		}
		parts := make([]string, len(p.Predicates))
		for i, sub := range p.Predicates {
			parts[i] = DescribePredicate(sub)
		}
		return "(" + strings.Join(parts, " && ") + ")"
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("<%T>", p)
	}
}

func varList(vars []string) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = "?" + v
	}
	return strings.Join(parts, ", ")
}

func windowSuffix(lhs, rhs int) string {
	if lhs == 0 && rhs == 0 {
		return ""
	}
	return fmt.Sprintf(" windows %d/%d", lhs, rhs)
}
