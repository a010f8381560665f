package compiler

import (
	"errors"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/triplestream/internal/plan"
	"github.com/roach88/triplestream/internal/rdf"
)

func compile(t *testing.T, src string) (plan.Node, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename("plan.cue"))
	require.NoError(t, v.Err())
	return CompileQuery(v)
}

func TestCompileQuery_Join(t *testing.T) {
	node, err := compile(t, `
		query: {
			join: {
				on: ["person"]
				lhs: bgp: [["?person", "<type>", "<Person>"]]
				rhs: bgp: [["?person", "<knows>", "?friend"]]
			}
		}
	`)
	require.NoError(t, err)

	join, ok := node.(*plan.Join)
	require.True(t, ok, "got %T", node)
	assert.Equal(t, []string{"person"}, join.On)
	assert.Zero(t, join.LHSWindow)

	lhs := join.Left.(*plan.BGP)
	require.Len(t, lhs.Children, 1)
	assert.Equal(t, "?person <type> <Person>", lhs.Children[0].(*plan.Pattern).Triple.String())
	assert.Equal(t, []string{"person", "friend"}, plan.Variables(join.Right))
}

func TestCompileQuery_LeftJoinWithFilterAndWindows(t *testing.T) {
	node, err := compile(t, `
		query: leftjoin: {
			on: ["?p"]
			lhs: pattern: ["?p", "<type>", "<Person>"]
			rhs: pattern: ["?p", "<name>", "?n"]
			lhs_window: 4
			rhs_window: 32
			filter: and: [
				{equals: {var: "n", value: "\"Alice\""}},
				{same: ["p", "?p"]},
			]
		}
	`)
	require.NoError(t, err)

	lj := node.(*plan.LeftJoin)
	assert.Equal(t, []string{"p"}, lj.On)
	assert.Equal(t, 4, lj.LHSWindow)
	assert.Equal(t, 32, lj.RHSWindow)

	and := lj.Filter.(*plan.And)
	require.Len(t, and.Predicates, 2)
	assert.Equal(t, &plan.Equals{Var: "n", Value: rdf.NewLiteral("Alice")}, and.Predicates[0])
	assert.Equal(t, &plan.SameVar{Left: "p", Right: "p"}, and.Predicates[1])
}

func TestCompileQuery_UnionFilterSlice(t *testing.T) {
	node, err := compile(t, `
		query: slice: {
			offset: 1
			limit: 5
			input: filter: {
				where: equals: {var: "x", value: "<carol>"}
				input: union: [
					{pattern: ["?x", "<type>", "<Robot>"]},
					{bgp: [
						["?x", "<knows>", "?y"],
						{pattern: ["?y", "<type>", "<Person>"]},
					]},
				]
			}
		}
	`)
	require.NoError(t, err)

	want := "slice offset 1 limit 5\n" +
		"  filter ?x = <carol>\n" +
		"    union\n" +
		"      ?x <type> <Robot>\n" +
		"      bgp\n" +
		"        ?x <knows> ?y\n" +
		"        ?y <type> <Person>\n"
	assert.Equal(t, want, plan.Describe(node))
}

func TestCompileQuery_SliceDefaults(t *testing.T) {
	node, err := compile(t, `query: slice: input: pattern: ["?s", "?p", "?o"]`)
	require.NoError(t, err)

	s := node.(*plan.Slice)
	assert.Equal(t, 0, s.Offset)
	assert.Equal(t, plan.NoLimit, s.Limit)
}

func TestCompileQuery_Errors(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing query",
			src:       `other: 1`,
			wantField: "query",
			wantMsg:   "query is required",
		},
		{
			name:      "no operator",
			src:       `query: {}`,
			wantField: "query",
			wantMsg:   "expected exactly one of",
		},
		{
			name:      "two operators",
			src:       `query: {pattern: ["?s", "?p", "?o"], union: []}`,
			wantField: "query",
			wantMsg:   "got 2",
		},
		{
			name:      "unknown operator",
			src:       `query: minus: {}`,
			wantField: "query",
			wantMsg:   `unknown operator "minus"`,
		},
		{
			name:      "short pattern",
			src:       `query: pattern: ["?s", "?p"]`,
			wantField: "query.pattern",
			wantMsg:   "pattern must have 3 positions, got 2",
		},
		{
			name:      "bad term",
			src:       `query: pattern: ["?s", "<p", "?o"]`,
			wantField: "query.pattern",
		},
		{
			name:      "join without on",
			src:       `query: join: {lhs: pattern: ["?s", "?p", "?o"], rhs: pattern: ["?s", "?p", "?o"]}`,
			wantField: "query.join.on",
			wantMsg:   "join variables are required",
		},
		{
			name:      "join without rhs",
			src:       `query: join: {on: ["s"], lhs: pattern: ["?s", "?p", "?o"]}`,
			wantField: "query.join.rhs",
			wantMsg:   "rhs is required",
		},
		{
			name:      "filter on inner join",
			src:       `query: join: {on: ["s"], lhs: pattern: ["?s", "?p", "?o"], rhs: pattern: ["?s", "?p", "?o"], filter: same: ["s", "o"]}`,
			wantField: "query.join.filter",
			wantMsg:   "unknown field",
		},
		{
			name:      "float window",
			src:       `query: join: {on: ["s"], lhs: pattern: ["?s", "?p", "?o"], rhs: pattern: ["?s", "?p", "?o"], lhs_window: 1.5}`,
			wantField: "query.join.lhs_window",
			wantMsg:   "must be an int",
		},
		{
			name:      "empty variable",
			src:       `query: join: {on: ["?"], lhs: pattern: ["?s", "?p", "?o"], rhs: pattern: ["?s", "?p", "?o"]}`,
			wantField: "query.join.on[0]",
			wantMsg:   "empty variable name",
		},
		{
			name:      "nested error path",
			src:       `query: union: [{pattern: ["?s", "?p", "?o"]}, {bgp: [["?s"]]}]`,
			wantField: "query.union[1].bgp[0]",
			wantMsg:   "got 1",
		},
		{
			name:      "filter without where",
			src:       `query: filter: input: pattern: ["?s", "?p", "?o"]`,
			wantField: "query.filter.where",
			wantMsg:   "where is required",
		},
		{
			name:      "same with one variable",
			src:       `query: filter: {input: pattern: ["?s", "?p", "?o"], where: same: ["s"]}`,
			wantField: "query.filter.where.same",
			wantMsg:   "same takes 2 variables",
		},
		{
			name:      "equals without value",
			src:       `query: filter: {input: pattern: ["?s", "?p", "?o"], where: equals: var: "s"}`,
			wantField: "query.filter.where.equals.value",
			wantMsg:   "value is required",
		},
		{
			name:      "node is not a struct",
			src:       `query: "pattern"`,
			wantField: "query",
			wantMsg:   "plan node must be a struct",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(t, tt.src)
			require.Error(t, err)

			var ce *CompileError
			require.True(t, errors.As(err, &ce), "got %T: %v", err, err)
			assert.Equal(t, tt.wantField, ce.Field)
			if tt.wantMsg != "" {
				assert.Contains(t, ce.Message, tt.wantMsg)
			}
		})
	}
}

func TestCompileError_Position(t *testing.T) {
	_, err := compile(t, "query: {\n\tpattern: [\"?s\", \"?p\"]\n}\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan.cue:2:")
	assert.Contains(t, err.Error(), "query.pattern: pattern must have 3 positions")
}

func TestCompileError_NoPosition(t *testing.T) {
	err := &CompileError{Field: "query", Message: "query is required"}
	assert.Equal(t, "query: query is required", err.Error())
}

func TestCompilePlan_CompiledPlanBuilds(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		q: leftjoin: {
			on: ["p"]
			lhs: pattern: ["?p", "<type>", "<Person>"]
			rhs: pattern: ["?p", "<name>", "?n"]
		}
	`)
	node, err := CompilePlan(v.LookupPath(cue.ParsePath("q")))
	require.NoError(t, err)

	res := plan.Validate(node)
	assert.True(t, res.Valid, "errors: %v", res.Errors)
	assert.Empty(t, res.Warnings)
}
