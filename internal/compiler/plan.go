// Package compiler turns CUE plan documents into plan trees.
//
// A plan node is a struct with exactly one operator key:
//
//	pattern:  ["?s", "<knows>", "?o"]
//	bgp:      [["?p", "<type>", "<Person>"], ["?p", "<knows>", "?f"]]
//	join:     {on: ["p"], lhs: {...}, rhs: {...}, lhs_window?: int, rhs_window?: int}
//	leftjoin: {on: ["p"], lhs: {...}, rhs: {...}, filter?: {...}, lhs_window?: int, rhs_window?: int}
//	union:    [{...}, {...}]
//	filter:   {input: {...}, where: {...}}
//	slice:    {input: {...}, offset?: int, limit?: int}
//
// BGP elements are either triple lists or nested plan nodes. Predicates
// use the keys equals ({var, value}), same (["a", "b"]) and and ([...]).
// Join variables may be written with or without the leading '?'.
package compiler

import (
	"fmt"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/triplestream/internal/plan"
	"github.com/roach88/triplestream/internal/rdf"
)

var nodeKeys = []string{"pattern", "bgp", "join", "leftjoin", "union", "filter", "slice"}

// CompileQuery compiles the plan under the top-level "query" field of a
// CUE document.
func CompileQuery(doc cue.Value) (plan.Node, error) {
	if err := doc.Err(); err != nil {
		return nil, formatCUEError("cue", err)
	}
	q := doc.LookupPath(cue.ParsePath("query"))
	if !q.Exists() {
		return nil, errorf("query", doc.Pos(), "query is required")
	}
	return CompilePlan(q)
}

// CompileSource compiles a CUE plan document held in memory. filename is
// used for error positions only.
func CompileSource(filename string, src []byte) (plan.Node, error) {
	v := cuecontext.New().CompileBytes(src, cue.Filename(filename))
	return CompileQuery(v)
}

// CompilePlan compiles a single plan node value.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`query: pattern: ["?s", "<knows>", "?o"]`)
//	node, err := CompilePlan(v.LookupPath(cue.ParsePath("query")))
func CompilePlan(v cue.Value) (plan.Node, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError("cue", err)
	}
	return compileNode("query", v)
}

func compileNode(field string, v cue.Value) (plan.Node, error) {
	if v.IncompleteKind() != cue.StructKind {
		return nil, errorf(field, v.Pos(), "plan node must be a struct, got %v", v.IncompleteKind())
	}

	key, body, err := operator(field, v, nodeKeys)
	if err != nil {
		return nil, err
	}
	field = field + "." + key

	switch key {
	case "pattern":
		p, err := compileTriple(field, body)
		if err != nil {
			return nil, err
		}
		return &plan.Pattern{Triple: p}, nil

	case "bgp":
		children, err := compileList(field, body, compileBGPChild)
		if err != nil {
			return nil, err
		}
		return &plan.BGP{Children: children}, nil

	case "join":
		j, err := compileJoin(field, body, false)
		if err != nil {
			return nil, err
		}
		return &plan.Join{
			Left:      j.left,
			Right:     j.right,
			On:        j.on,
			LHSWindow: j.lhsWindow,
			RHSWindow: j.rhsWindow,
		}, nil

	case "leftjoin":
		j, err := compileJoin(field, body, true)
		if err != nil {
			return nil, err
		}
		return &plan.LeftJoin{
			Left:      j.left,
			Right:     j.right,
			On:        j.on,
			Filter:    j.filter,
			LHSWindow: j.lhsWindow,
			RHSWindow: j.rhsWindow,
		}, nil

	case "union":
		branches, err := compileList(field, body, compileNode)
		if err != nil {
			return nil, err
		}
		return &plan.Union{Branches: branches}, nil

	case "filter":
		if err := checkFields(field, body, "input", "where"); err != nil {
			return nil, err
		}
		input, err := compileRequiredNode(field, body, "input")
		if err != nil {
			return nil, err
		}
		whereVal := body.LookupPath(cue.ParsePath("where"))
		if !whereVal.Exists() {
			return nil, errorf(field+".where", body.Pos(), "where is required")
		}
		where, err := compilePredicate(field+".where", whereVal)
		if err != nil {
			return nil, err
		}
		return &plan.Filter{Input: input, Where: where}, nil

	case "slice":
		if err := checkFields(field, body, "input", "offset", "limit"); err != nil {
			return nil, err
		}
		input, err := compileRequiredNode(field, body, "input")
		if err != nil {
			return nil, err
		}
		offset, err := optionalInt(field, body, "offset", 0)
		if err != nil {
			return nil, err
		}
		limit, err := optionalInt(field, body, "limit", plan.NoLimit)
		if err != nil {
			return nil, err
		}
		return &plan.Slice{Input: input, Offset: offset, Limit: limit}, nil
	}

	return nil, errorf(field, v.Pos(), "unsupported operator")
}

// operator returns the single key of v, which must be one of allowed.
func operator(field string, v cue.Value, allowed []string) (string, cue.Value, error) {
	iter, err := v.Fields()
	if err != nil {
		return "", cue.Value{}, formatCUEError(field, err)
	}
	var keys []string
	var body cue.Value
	for iter.Next() {
		label := iter.Label()
		if !slices.Contains(allowed, label) {
			return "", cue.Value{}, errorf(field, iter.Value().Pos(),
				"unknown operator %q, must be one of %s", label, strings.Join(allowed, ", "))
		}
		keys = append(keys, label)
		body = iter.Value()
	}
	if len(keys) != 1 {
		return "", cue.Value{}, errorf(field, v.Pos(),
			"expected exactly one of %s, got %d", strings.Join(allowed, ", "), len(keys))
	}
	return keys[0], body, nil
}

// checkFields rejects keys of v outside allowed.
func checkFields(field string, v cue.Value, allowed ...string) error {
	if v.IncompleteKind() != cue.StructKind {
		return errorf(field, v.Pos(), "must be a struct, got %v", v.IncompleteKind())
	}
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(field, err)
	}
	for iter.Next() {
		label := iter.Label()
		if !slices.Contains(allowed, label) {
			return errorf(field+"."+label, iter.Value().Pos(), "unknown field")
		}
	}
	return nil
}

func compileList[T any](field string, v cue.Value, elem func(string, cue.Value) (T, error)) ([]T, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(field, err)
	}
	var out []T
	for i := 0; iter.Next(); i++ {
		x, err := elem(fmt.Sprintf("%s[%d]", field, i), iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

// compileBGPChild accepts a triple list as shorthand for a pattern node.
func compileBGPChild(field string, v cue.Value) (plan.Node, error) {
	if v.IncompleteKind() == cue.ListKind {
		p, err := compileTriple(field, v)
		if err != nil {
			return nil, err
		}
		return &plan.Pattern{Triple: p}, nil
	}
	return compileNode(field, v)
}

func compileRequiredNode(field string, v cue.Value, key string) (plan.Node, error) {
	sub := v.LookupPath(cue.ParsePath(key))
	if !sub.Exists() {
		return nil, errorf(field+"."+key, v.Pos(), "%s is required", key)
	}
	return compileNode(field+"."+key, sub)
}

func compileTriple(field string, v cue.Value) (rdf.Pattern, error) {
	parts, err := compileList(field, v, stringValue)
	if err != nil {
		return rdf.Pattern{}, err
	}
	if len(parts) != 3 {
		return rdf.Pattern{}, errorf(field, v.Pos(), "pattern must have 3 positions, got %d", len(parts))
	}
	p, err := rdf.ParsePattern(parts[0], parts[1], parts[2])
	if err != nil {
		return rdf.Pattern{}, errorf(field, v.Pos(), "%v", err)
	}
	return p, nil
}

type joinFields struct {
	left, right          plan.Node
	on                   []string
	filter               plan.Predicate
	lhsWindow, rhsWindow int
}

func compileJoin(field string, v cue.Value, optional bool) (joinFields, error) {
	allowed := []string{"on", "lhs", "rhs", "lhs_window", "rhs_window"}
	if optional {
		allowed = append(allowed, "filter")
	}
	if err := checkFields(field, v, allowed...); err != nil {
		return joinFields{}, err
	}

	var j joinFields
	var err error

	onVal := v.LookupPath(cue.ParsePath("on"))
	if !onVal.Exists() {
		return j, errorf(field+".on", v.Pos(), "join variables are required")
	}
	if j.on, err = compileList(field+".on", onVal, variableName); err != nil {
		return j, err
	}

	if j.left, err = compileRequiredNode(field, v, "lhs"); err != nil {
		return j, err
	}
	if j.right, err = compileRequiredNode(field, v, "rhs"); err != nil {
		return j, err
	}
	if j.lhsWindow, err = optionalInt(field, v, "lhs_window", 0); err != nil {
		return j, err
	}
	if j.rhsWindow, err = optionalInt(field, v, "rhs_window", 0); err != nil {
		return j, err
	}

	if optional {
		filterVal := v.LookupPath(cue.ParsePath("filter"))
		if filterVal.Exists() {
			if j.filter, err = compilePredicate(field+".filter", filterVal); err != nil {
				return j, err
			}
		}
	}
	return j, nil
}

func stringValue(field string, v cue.Value) (string, error) {
	s, err := v.String()
	if err != nil {
		return "", formatCUEError(field, err)
	}
	return s, nil
}

func variableName(field string, v cue.Value) (string, error) {
	s, err := stringValue(field, v)
	if err != nil {
		return "", err
	}
	name := strings.TrimPrefix(s, "?")
	if name == "" {
		return "", errorf(field, v.Pos(), "empty variable name")
	}
	return name, nil
}

// optionalInt reads an integer field. Floats are rejected.
func optionalInt(field string, v cue.Value, key string, def int) (int, error) {
	sub := v.LookupPath(cue.ParsePath(key))
	if !sub.Exists() {
		return def, nil
	}
	if sub.IncompleteKind() != cue.IntKind {
		return 0, errorf(field+"."+key, sub.Pos(), "must be an int, got %v", sub.IncompleteKind())
	}
	n, err := sub.Int64()
	if err != nil {
		return 0, formatCUEError(field+"."+key, err)
	}
	return int(n), nil
}
