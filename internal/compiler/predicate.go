package compiler

import (
	"cuelang.org/go/cue"

	"github.com/roach88/triplestream/internal/plan"
	"github.com/roach88/triplestream/internal/rdf"
)

var predicateKeys = []string{"equals", "same", "and"}

func compilePredicate(field string, v cue.Value) (plan.Predicate, error) {
	if v.IncompleteKind() != cue.StructKind {
		return nil, errorf(field, v.Pos(), "predicate must be a struct, got %v", v.IncompleteKind())
	}
	key, body, err := operator(field, v, predicateKeys)
	if err != nil {
		return nil, err
	}
	field = field + "." + key

	switch key {
	case "equals":
		if err := checkFields(field, body, "var", "value"); err != nil {
			return nil, err
		}
		varVal := body.LookupPath(cue.ParsePath("var"))
		if !varVal.Exists() {
			return nil, errorf(field+".var", body.Pos(), "var is required")
		}
		name, err := variableName(field+".var", varVal)
		if err != nil {
			return nil, err
		}
		valueVal := body.LookupPath(cue.ParsePath("value"))
		if !valueVal.Exists() {
			return nil, errorf(field+".value", body.Pos(), "value is required")
		}
		s, err := stringValue(field+".value", valueVal)
		if err != nil {
			return nil, err
		}
		term, err := rdf.ParseTerm(s)
		if err != nil {
			return nil, errorf(field+".value", valueVal.Pos(), "%v", err)
		}
		return &plan.Equals{Var: name, Value: term}, nil

	case "same":
		names, err := compileList(field, body, variableName)
		if err != nil {
			return nil, err
		}
		if len(names) != 2 {
			return nil, errorf(field, body.Pos(), "same takes 2 variables, got %d", len(names))
		}
		return &plan.SameVar{Left: names[0], Right: names[1]}, nil

	case "and":
		preds, err := compileList(field, body, compilePredicate)
		if err != nil {
			return nil, err
		}
		return &plan.And{Predicates: preds}, nil
	}

	return nil, errorf(field, v.Pos(), "unsupported predicate")
}
