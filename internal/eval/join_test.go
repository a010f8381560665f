package eval_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/triplestream/internal/binding"
	"github.com/roach88/triplestream/internal/eval"
	"github.com/roach88/triplestream/internal/rdf"
	"github.com/roach88/triplestream/internal/testutil"
)

func TestJoin_LazinessBound(t *testing.T) {
	lhs := testutil.NewCountingBlock(testutil.Multiples("x", 3))
	rhs := testutil.NewCountingBlock(testutil.Multiples("x", 5))
	j, err := eval.NewJoinBlock(lhs, rhs, []string{"x"})
	require.NoError(t, err)

	got := take(t, j, 10)
	require.Len(t, got, 10)
	for _, x := range testutil.Ints(t, got, "x") {
		assert.Zero(t, x%15, "%d is not divisible by 15", x)
	}
	assert.Equal(t, []int64{15, 30, 45, 60, 75, 90, 105, 120, 135, 150}, testutil.Ints(t, got, "x"))
	assert.LessOrEqual(t, lhs.Pulls(), int64(1000))
	assert.LessOrEqual(t, rhs.Pulls(), int64(1000))
	assert.Equal(t, int64(1), lhs.Closes(), "inputs are closed with the join")
	assert.Equal(t, int64(1), rhs.Closes())
}

func TestJoin_FiniteLHSInfiniteRHS(t *testing.T) {
	j, err := eval.NewJoinBlock(testutil.MultiplesUpTo("x", 3, 10), testutil.Multiples("x", 5), []string{"x"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{15, 30}, testutil.Ints(t, take(t, j, 2), "x"))

	// A long but finite rhs drains to the same answer.
	j, err = eval.NewJoinBlock(testutil.MultiplesUpTo("x", 3, 10), testutil.MultiplesUpTo("x", 5, 10000), []string{"x"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{15, 30}, testutil.Ints(t, all(t, j), "x"))
}

func TestJoin_InfiniteLHSFiniteRHS(t *testing.T) {
	j, err := eval.NewJoinBlock(testutil.Multiples("x", 3), testutil.MultiplesUpTo("x", 5, 10), []string{"x"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{15, 30, 45}, testutil.Ints(t, take(t, j, 3), "x"))

	j, err = eval.NewJoinBlock(testutil.MultiplesUpTo("x", 3, 10000), testutil.MultiplesUpTo("x", 5, 10), []string{"x"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{15, 30, 45}, testutil.Ints(t, all(t, j), "x"))
}

func TestJoin_EmptySideStopsPullingOther(t *testing.T) {
	empty := testutil.MultiplesUpTo("x", 3, 0)

	t.Run("empty lhs", func(t *testing.T) {
		rhs := testutil.NewCountingBlock(testutil.Multiples("x", 5))
		j, err := eval.NewJoinBlock(empty, rhs, []string{"x"})
		require.NoError(t, err)

		assert.Empty(t, all(t, j))
		assert.Zero(t, rhs.Pulls())
		assert.Equal(t, int64(1), rhs.Closes())
	})

	t.Run("empty rhs", func(t *testing.T) {
		lhs := testutil.NewCountingBlock(testutil.Multiples("x", 5))
		j, err := eval.NewJoinBlock(lhs, empty, []string{"x"})
		require.NoError(t, err)

		assert.Empty(t, all(t, j))
		assert.Equal(t, int64(eval.DefaultWindow), lhs.Pulls(), "only the first lhs turn is pulled")
		assert.Equal(t, int64(1), lhs.Closes())
	})

	t.Run("rows without the join variable", func(t *testing.T) {
		ys := testutil.NewGenBlock([]string{"x", "y"}, 1, 4, func(k int64) binding.Bindings {
			return binding.Must(binding.P("y", rdf.Integer(k)))
		})
		rhs := testutil.NewCountingBlock(testutil.Multiples("x", 5))
		j, err := eval.NewJoinBlock(ys, rhs, []string{"x"})
		require.NoError(t, err)

		assert.Empty(t, all(t, j))
		assert.Zero(t, rhs.Pulls())
	})
}

// pairs yields {x: k, y: f(k)} for k = 1..n.
func pairs(n int64, f func(k int64) int64) *testutil.GenBlock {
	return testutil.NewGenBlock([]string{"x", "y"}, 1, n, func(k int64) binding.Bindings {
		return binding.Must(binding.P("x", rdf.Integer(k)), binding.P("y", rdf.Integer(f(k))))
	})
}

func TestJoin_SharedNonJoinVariablesMustAgree(t *testing.T) {
	lhs := pairs(10, func(k int64) int64 { return k % 2 })
	rhs := pairs(10, func(k int64) int64 { return 0 })
	j, err := eval.NewJoinBlock(lhs, rhs, []string{"x"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []int64{2, 4, 6, 8, 10}, testutil.Ints(t, all(t, j), "x"))
}

func TestJoin_MultiVariableKey(t *testing.T) {
	lhs := pairs(6, func(k int64) int64 { return k * k })
	rhs := testutil.NewGenBlock([]string{"x", "y", "z"}, 1, 6, func(k int64) binding.Bindings {
		y := k * k
		if k%3 == 0 {
			y = -1
		}
		return binding.Must(
			binding.P("x", rdf.Integer(k)),
			binding.P("y", rdf.Integer(y)),
			binding.P("z", rdf.Integer(100+k)),
		)
	})
	j, err := eval.NewJoinBlock(lhs, rhs, []string{"x", "y"})
	require.NoError(t, err)

	got := all(t, j)
	assert.ElementsMatch(t, []int64{1, 2, 4, 5}, testutil.Ints(t, got, "x"))
	for _, b := range got {
		assert.True(t, b.Contains("z"))
	}
	assert.Equal(t, []string{"x", "y", "z"}, j.Variables())
}

// naturalJoin is the reference nested-loop join used to check results.
func naturalJoin(t *testing.T, lhs, rhs eval.Block, vars []string) []string {
	t.Helper()
	var out []binding.Bindings
	for _, l := range all(t, lhs) {
		lk, ok := l.Key(vars)
		if !ok {
			continue
		}
		for _, r := range all(t, rhs) {
			if rk, ok := r.Key(vars); !ok || rk != lk {
				continue
			}
			if m, ok := l.Merge(r); ok {
				out = append(out, m)
			}
		}
	}
	return testutil.Keys(out)
}

func TestJoin_EqualsNaturalJoinForAnyWindows(t *testing.T) {
	lhs := pairs(60, func(k int64) int64 { return k % 4 })
	rhs := testutil.NewGenBlock([]string{"x", "z"}, 1, 90, func(k int64) binding.Bindings {
		return binding.Must(binding.P("x", rdf.Integer(k%45)), binding.P("z", rdf.Integer(k)))
	})
	want := naturalJoin(t, lhs, rhs, []string{"x"})
	require.NotEmpty(t, want)

	windows := []struct{ l, r, max int }{
		{1, 1, 1}, {1, 1, 4096}, {1, 64, 64}, {64, 1, 64}, {3, 7, 7}, {16, 16, 4096}, {500, 500, 500},
	}
	for _, w := range windows {
		t.Run(fmt.Sprintf("lhs=%d,rhs=%d,max=%d", w.l, w.r, w.max), func(t *testing.T) {
			opts := []eval.JoinOption{eval.WithLHSWindow(w.l), eval.WithRHSWindow(w.r), eval.WithMaxWindow(w.max)}

			j, err := eval.NewJoinBlock(lhs, rhs, []string{"x"}, opts...)
			require.NoError(t, err)
			assert.Equal(t, want, testutil.Keys(all(t, j)))

			swapped, err := eval.NewJoinBlock(rhs, lhs, []string{"x"}, opts...)
			require.NoError(t, err)
			assert.Equal(t, want, testutil.Keys(all(t, swapped)))
		})
	}
}

func TestJoin_ResultsExtendSeed(t *testing.T) {
	j, err := eval.NewJoinBlock(testutil.MultiplesUpTo("x", 3, 100), testutil.MultiplesUpTo("x", 5, 100), []string{"x"})
	require.NoError(t, err)

	seed := binding.Must(binding.P("x", rdf.Integer(30)), binding.P("w", rdf.IRI("tag")))
	got, err := eval.Collect(j.Evaluate(context.Background(), seed), -1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(seed))
}

func TestJoin_Restartable(t *testing.T) {
	j, err := eval.NewJoinBlock(testutil.Multiples("x", 3), testutil.Multiples("x", 5), []string{"x"})
	require.NoError(t, err)

	ctx := context.Background()
	s1 := j.Evaluate(ctx, binding.Empty())
	s2 := j.Evaluate(ctx, binding.Empty())
	defer s1.Close()
	defer s2.Close()

	var a, b []int64
	for i := 0; i < 5; i++ {
		require.True(t, s1.Next())
		a = append(a, testutil.Ints(t, []binding.Bindings{s1.Bindings()}, "x")...)
		if i%2 == 0 {
			require.True(t, s2.Next())
			b = append(b, testutil.Ints(t, []binding.Bindings{s2.Bindings()}, "x")...)
		}
	}
	assert.Equal(t, []int64{15, 30, 45, 60, 75}, a)
	assert.Equal(t, []int64{15, 30, 45}, b)
}

func TestJoin_UnbindableJoinVariableIsEmpty(t *testing.T) {
	rhs := testutil.NewCountingBlock(testutil.Multiples("y", 1))
	j, err := eval.NewJoinBlock(testutil.MultiplesUpTo("x", 1, 10), rhs, []string{"x"})
	require.NoError(t, err)

	assert.Empty(t, all(t, j))
	assert.Zero(t, rhs.Evaluations(), "rhs is never evaluated")

	// A seed binding the variable makes the join possible again.
	seed := binding.Must(binding.P("x", rdf.Integer(4)))
	got, err := eval.Collect(j.Evaluate(context.Background(), seed), 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestJoin_RowsMissingJoinVariableNeverJoin(t *testing.T) {
	onlyY := testutil.MultiplesUpTo("y", 1, 3)
	lhs, err := eval.NewUnionBlock(testutil.MultiplesUpTo("x", 1, 3), onlyY)
	require.NoError(t, err)
	rhs, err := eval.NewUnionBlock(testutil.MultiplesUpTo("x", 2, 3), onlyY)
	require.NoError(t, err)

	j, err := eval.NewJoinBlock(lhs, rhs, []string{"x"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{2}, testutil.Ints(t, all(t, j), "x"))
}

func TestJoin_WithFilter(t *testing.T) {
	even := func(b binding.Bindings) bool {
		x, _ := b.Get("x")
		return int64(x.(rdf.Integer))%2 == 0
	}
	j, err := eval.NewJoinBlock(testutil.MultiplesUpTo("x", 3, 20), testutil.MultiplesUpTo("x", 5, 20), []string{"x"},
		eval.WithFilter(even))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{30, 60}, testutil.Ints(t, all(t, j), "x"))
}

func TestJoin_PropagatesErrors(t *testing.T) {
	for _, failLeft := range []bool{true, false} {
		t.Run(fmt.Sprintf("failLeft=%v", failLeft), func(t *testing.T) {
			var lhs, rhs eval.Block = testutil.MultiplesUpTo("x", 1, 3), testutil.MultiplesUpTo("x", 1, 3)
			if failLeft {
				lhs = testutil.NewFailingBlock(lhs)
			} else {
				rhs = testutil.NewFailingBlock(rhs)
			}
			j, err := eval.NewJoinBlock(lhs, rhs, []string{"x"})
			require.NoError(t, err)

			_, err = eval.Collect(j.Evaluate(context.Background(), binding.Empty()), -1)
			assert.ErrorIs(t, err, testutil.ErrInjected)
		})
	}
}

func TestJoin_CancelledContext(t *testing.T) {
	j, err := eval.NewJoinBlock(testutil.Multiples("x", 3), testutil.Multiples("x", 5), []string{"x"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s := j.Evaluate(ctx, binding.Empty())
	require.True(t, s.Next())
	cancel()
	assert.False(t, s.Next())
	assert.ErrorIs(t, s.Err(), context.Canceled)
}

func TestJoin_Exhaustion(t *testing.T) {
	j, err := eval.NewJoinBlock(testutil.MultiplesUpTo("x", 3, 10), testutil.MultiplesUpTo("x", 5, 10), []string{"x"})
	require.NoError(t, err)
	assertExhausted(t, j.Evaluate(context.Background(), binding.Empty()))
}

func TestJoin_OverPatterns(t *testing.T) {
	ds := testutil.SocialGraph()
	people, err := eval.NewPatternBlock(testutil.Pattern("?p", "<type>", "<Person>"), ds)
	require.NoError(t, err)
	knows, err := eval.NewPatternBlock(testutil.Pattern("?p", "<knows>", "?f"), ds)
	require.NoError(t, err)

	j, err := eval.NewJoinBlock(people, knows, []string{"p"})
	require.NoError(t, err)
	bgp, err := eval.NewBGPBlock(people, knows)
	require.NoError(t, err)

	assert.Equal(t, testutil.Keys(all(t, bgp)), testutil.Keys(all(t, j)))
	assert.Equal(t, []string{"p"}, j.JoinVariables())
}

func TestJoin_ConstructionErrors(t *testing.T) {
	x := testutil.Multiples("x", 1)
	tests := []struct {
		name string
		lhs  eval.Block
		rhs  eval.Block
		vars []string
		opts []eval.JoinOption
		code eval.ConstructionErrorCode
	}{
		{"nil lhs", nil, x, []string{"x"}, nil, eval.ErrCodeNilBlock},
		{"nil rhs", x, nil, []string{"x"}, nil, eval.ErrCodeNilBlock},
		{"no join variables", x, x, nil, nil, eval.ErrCodeNoJoinVariables},
		{"empty variable name", x, x, []string{""}, nil, eval.ErrCodeNoJoinVariables},
		{"zero lhs window", x, x, []string{"x"}, []eval.JoinOption{eval.WithLHSWindow(0)}, eval.ErrCodeInvalidWindow},
		{"negative rhs window", x, x, []string{"x"}, []eval.JoinOption{eval.WithRHSWindow(-3)}, eval.ErrCodeInvalidWindow},
		{"max below initial", x, x, []string{"x"}, []eval.JoinOption{eval.WithMaxWindow(8)}, eval.ErrCodeInvalidWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eval.NewJoinBlock(tt.lhs, tt.rhs, tt.vars, tt.opts...)
			require.Error(t, err)
			assert.True(t, eval.IsConstructionError(err, tt.code), "got %v", err)

			_, err = eval.NewLeftJoinBlock(tt.lhs, tt.rhs, tt.vars, tt.opts...)
			assert.True(t, eval.IsConstructionError(err, tt.code), "got %v", err)
		})
	}
}
