package eval_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/triplestream/internal/binding"
	"github.com/roach88/triplestream/internal/eval"
)

// all drains a block evaluated with an empty seed.
func all(t *testing.T, b eval.Block) []binding.Bindings {
	t.Helper()
	return take(t, b, -1)
}

// take pulls up to n solutions of a block evaluated with an empty seed.
func take(t *testing.T, b eval.Block, n int) []binding.Bindings {
	t.Helper()
	got, err := eval.Collect(b.Evaluate(context.Background(), binding.Empty()), n)
	require.NoError(t, err)
	return got
}

// assertExhausted checks that an exhausted stream stays exhausted.
func assertExhausted(t *testing.T, s eval.Stream) {
	t.Helper()
	for s.Next() {
	}
	require.NoError(t, s.Err())
	for i := 0; i < 3; i++ {
		require.False(t, s.Next(), "Next after exhaustion must keep returning false")
	}
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.False(t, s.Next())
}
