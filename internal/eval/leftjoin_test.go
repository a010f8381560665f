package eval_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/triplestream/internal/binding"
	"github.com/roach88/triplestream/internal/eval"
	"github.com/roach88/triplestream/internal/rdf"
	"github.com/roach88/triplestream/internal/testutil"
)

// fives yields {x: 5k, y: k} for each k in ks.
func fives(ks ...int64) *testutil.GenBlock {
	return testutil.NewGenBlock([]string{"x", "y"}, 0, int64(len(ks)-1), func(i int64) binding.Bindings {
		k := ks[i]
		return binding.Must(binding.P("x", rdf.Integer(5*k)), binding.P("y", rdf.Integer(k)))
	})
}

func TestLeftJoin_UnboundedLHSNoCoincidingValues(t *testing.T) {
	// x = 5k never a multiple of 3, so no lhs row ever matches.
	rhs := fives(7, 8, 10, 11, 13, 14, 16, 17, 19, 20)
	lj, err := eval.NewLeftJoinBlock(testutil.Multiples("x", 3), rhs, []string{"x"})
	require.NoError(t, err)

	got := take(t, lj, 10)
	require.Len(t, got, 10)
	for _, b := range got {
		assert.True(t, b.Contains("x"))
		assert.False(t, b.Contains("y"), "unexpected match %s", b)
	}
	assert.Equal(t, []int64{3, 6, 9, 12, 15, 18, 21, 24, 27, 30}, testutil.Ints(t, got, "x"))
}

func TestLeftJoin_MatchedRowsEmittedEagerly(t *testing.T) {
	lj, err := eval.NewLeftJoinBlock(testutil.Multiples("x", 3), fives(7, 8, 9, 10, 11, 12, 13, 14, 15, 16), []string{"x"})
	require.NoError(t, err)

	got := take(t, lj, 10)
	require.Len(t, got, 10)
	first := got[0]
	assert.Equal(t, "{?x=45, ?y=9}", first.String(), "the match is emitted before any unmatched row")
	for _, b := range got[1:] {
		assert.False(t, b.Contains("y"))
	}
}

func TestLeftJoin_EveryLHSRowExactlyOnce(t *testing.T) {
	lhs := testutil.MultiplesUpTo("x", 1, 20)
	rhs := fives(1, 2, 3, 9)

	for _, w := range []int{1, 2, 16} {
		lj, err := eval.NewLeftJoinBlock(lhs, rhs, []string{"x"}, eval.WithLHSWindow(w), eval.WithRHSWindow(w))
		require.NoError(t, err)

		got := all(t, lj)
		require.Len(t, got, 20)
		assert.ElementsMatch(t, testutil.Ints(t, all(t, lhs), "x"), testutil.Ints(t, got, "x"))
		for _, b := range got {
			x, _ := b.Get("x")
			n := int64(x.(rdf.Integer))
			if n == 5 || n == 10 || n == 15 {
				y, ok := b.Get("y")
				require.True(t, ok, "x=%d must be joined", n)
				assert.Equal(t, rdf.Integer(n/5), y)
			} else {
				assert.False(t, b.Contains("y"), "x=%d must be unmatched", n)
			}
		}
	}
}

func TestLeftJoin_MultipleMatchesReplaceUnmatchedRow(t *testing.T) {
	rhs := testutil.NewGenBlock([]string{"x", "z"}, 1, 2, func(k int64) binding.Bindings {
		return binding.Must(binding.P("x", rdf.Integer(1)), binding.P("z", rdf.Integer(k)))
	})
	lj, err := eval.NewLeftJoinBlock(testutil.MultiplesUpTo("x", 1, 2), rhs, []string{"x"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"{?x=1, ?z=1}",
		"{?x=1, ?z=2}",
		"{?x=2}",
	}, testutil.Keys(all(t, lj)))
}

func TestLeftJoin_UnmatchedHeldUntilRHSExhausted(t *testing.T) {
	rhs := testutil.NewCountingBlock(testutil.MultiplesUpTo("x", 1000, 100))
	lj, err := eval.NewLeftJoinBlock(testutil.MultiplesUpTo("x", 1, 5), rhs, []string{"x"})
	require.NoError(t, err)

	s := lj.Evaluate(context.Background(), binding.Empty())
	defer s.Close()
	require.True(t, s.Next())
	assert.Equal(t, int64(100), rhs.Pulls(), "first unmatched row waits for rhs exhaustion")
	assert.Equal(t, "{?x=1}", s.Bindings().String())
}

func TestLeftJoin_RHSCannotBindJoinVariable(t *testing.T) {
	rhs := testutil.NewCountingBlock(testutil.Multiples("y", 1))
	lj, err := eval.NewLeftJoinBlock(testutil.Multiples("x", 2), rhs, []string{"x"})
	require.NoError(t, err)

	got := take(t, lj, 3)
	assert.Equal(t, []int64{2, 4, 6}, testutil.Ints(t, got, "x"))
	assert.Zero(t, rhs.Evaluations())
}

func TestLeftJoin_LHSRowMissingJoinVariablePassesThrough(t *testing.T) {
	lhs, err := eval.NewUnionBlock(testutil.MultiplesUpTo("y", 1, 2), testutil.Multiples("x", 1))
	require.NoError(t, err)
	lj, err := eval.NewLeftJoinBlock(lhs, testutil.Multiples("x", 7), []string{"x"})
	require.NoError(t, err)

	got := take(t, lj, 2)
	assert.Equal(t, []string{"{?y=1}", "{?y=2}"}, testutil.Keys(got), "emitted without waiting for the infinite rhs")
}

func TestLeftJoin_WithFilter(t *testing.T) {
	rhs := testutil.NewGenBlock([]string{"x", "score"}, 1, 10, func(k int64) binding.Bindings {
		return binding.Must(binding.P("x", rdf.Integer(k)), binding.P("score", rdf.Integer(k*10)))
	})
	highScore := func(b binding.Bindings) bool {
		s, _ := b.Get("score")
		return int64(s.(rdf.Integer)) >= 50
	}
	lj, err := eval.NewLeftJoinBlock(testutil.MultiplesUpTo("x", 2, 4), rhs, []string{"x"}, eval.WithFilter(highScore))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"{?score=60, ?x=6}",
		"{?score=80, ?x=8}",
		"{?x=2}",
		"{?x=4}",
	}, testutil.Keys(all(t, lj)))
}

func TestLeftJoin_ResultsExtendSeed(t *testing.T) {
	lj, err := eval.NewLeftJoinBlock(testutil.MultiplesUpTo("x", 3, 10), fives(1, 2, 3), []string{"x"})
	require.NoError(t, err)

	seed := binding.Must(binding.P("x", rdf.Integer(15)))
	got, err := eval.Collect(lj.Evaluate(context.Background(), seed), -1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "{?x=15, ?y=3}", got[0].String())
}

func TestLeftJoin_Exhaustion(t *testing.T) {
	lj, err := eval.NewLeftJoinBlock(testutil.MultiplesUpTo("x", 3, 10), fives(1, 2, 3), []string{"x"})
	require.NoError(t, err)
	assertExhausted(t, lj.Evaluate(context.Background(), binding.Empty()))
	assert.Equal(t, []string{"x", "y"}, lj.Variables())
}

func TestLeftJoin_EmptyLHSStopsPullingRHS(t *testing.T) {
	rhs := testutil.NewCountingBlock(testutil.Multiples("x", 5))
	lj, err := eval.NewLeftJoinBlock(testutil.MultiplesUpTo("x", 3, 0), rhs, []string{"x"})
	require.NoError(t, err)

	assert.Empty(t, all(t, lj))
	assert.Zero(t, rhs.Pulls())
	assert.Equal(t, int64(1), rhs.Closes())
}

func TestLeftJoin_EmptyRHSPassesUnboundedLHSThrough(t *testing.T) {
	lhs := testutil.NewCountingBlock(testutil.Multiples("x", 3))
	lj, err := eval.NewLeftJoinBlock(lhs, testutil.MultiplesUpTo("x", 5, 0), []string{"x"})
	require.NoError(t, err)

	got := take(t, lj, 20)
	assert.Equal(t, []int64{3, 6, 9, 12, 15, 18, 21, 24, 27, 30, 33, 36, 39, 42, 45, 48, 51, 54, 57, 60},
		testutil.Ints(t, got, "x"))
	assert.LessOrEqual(t, lhs.Pulls(), int64(20+eval.DefaultWindow))
}
