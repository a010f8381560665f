package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/triplestream/internal/binding"
	"github.com/roach88/triplestream/internal/eval"
	"github.com/roach88/triplestream/internal/rdf"
)

func TestMultiples_FirstValues(t *testing.T) {
	got, err := eval.Collect(Multiples("x", 3).Evaluate(context.Background(), binding.Empty()), 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 6, 9, 12}, Ints(t, got, "x"))
}

func TestMultiplesUpTo_Finite(t *testing.T) {
	got, err := eval.Collect(MultiplesUpTo("x", 5, 3).Evaluate(context.Background(), binding.Empty()), -1)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 10, 15}, Ints(t, got, "x"))
}

func TestGenBlock_SkipsSeedConflicts(t *testing.T) {
	seed := binding.Must(binding.P("x", rdf.Integer(10)))
	got, err := eval.Collect(MultiplesUpTo("x", 5, 100).Evaluate(context.Background(), seed), -1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(seed))
}

func TestCountingBlock(t *testing.T) {
	c := NewCountingBlock(Multiples("x", 1))
	s := c.Evaluate(context.Background(), binding.Empty())
	_, err := eval.Collect(s, 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), c.Pulls())
	assert.Equal(t, int64(1), c.Evaluations())
	assert.Equal(t, int64(1), c.Closes())
	assert.Equal(t, []string{"x"}, c.Variables())
}

func TestFailingBlock(t *testing.T) {
	s := NewFailingBlock(MultiplesUpTo("x", 1, 2)).Evaluate(context.Background(), binding.Empty())
	got, err := eval.Collect(s, -1)
	assert.ErrorIs(t, err, ErrInjected)
	assert.Len(t, got, 2)
}

func TestKeys_SortsAndKeepsDuplicates(t *testing.T) {
	a := binding.Must(binding.P("x", rdf.Integer(2)))
	b := binding.Must(binding.P("x", rdf.Integer(1)))
	assert.Equal(t, []string{b.String(), a.String(), a.String()}, Keys([]binding.Bindings{a, b, a}))
}
