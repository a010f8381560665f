package testutil

import (
	"slices"
	"testing"

	"github.com/roach88/triplestream/internal/binding"
	"github.com/roach88/triplestream/internal/dataset"
	"github.com/roach88/triplestream/internal/rdf"
)

// Triple builds a triple from term notation. Panics on invalid input.
func Triple(s, p, o string) rdf.Triple {
	return rdf.NewTriple(rdf.MustParseTerm(s), rdf.MustParseTerm(p), rdf.MustParseTerm(o))
}

// Pattern builds a triple pattern from term notation. Panics on invalid input.
func Pattern(s, p, o string) rdf.Pattern {
	return rdf.NewPattern(rdf.MustParseNode(s), rdf.MustParseNode(p), rdf.MustParseNode(o))
}

// SocialGraph is a small dataset of people and who they know:
//
//	alice type Person, bob type Person, carol type Robot
//	alice knows bob, bob knows carol, alice knows carol
//	alice name "Alice", bob name "Bob"
func SocialGraph() *dataset.Memory {
	return dataset.NewMemory(
		Triple("<alice>", "<type>", "<Person>"),
		Triple("<bob>", "<type>", "<Person>"),
		Triple("<carol>", "<type>", "<Robot>"),
		Triple("<alice>", "<knows>", "<bob>"),
		Triple("<bob>", "<knows>", "<carol>"),
		Triple("<alice>", "<knows>", "<carol>"),
		Triple("<alice>", "<name>", `"Alice"`),
		Triple("<bob>", "<name>", `"Bob"`),
	)
}

// Keys renders solutions as sorted strings for order-insensitive
// comparison; duplicates are kept so multisets compare correctly.
func Keys(solutions []binding.Bindings) []string {
	out := make([]string, len(solutions))
	for i, b := range solutions {
		out[i] = b.String()
	}
	slices.Sort(out)
	return out
}

// Ints extracts the integer bound to v from each solution, in order.
// Fails the test if any solution lacks v or binds it to a non-integer.
func Ints(t *testing.T, solutions []binding.Bindings, v string) []int64 {
	t.Helper()
	out := make([]int64, 0, len(solutions))
	for i, b := range solutions {
		term, ok := b.Get(v)
		if !ok {
			t.Fatalf("solution %d does not bind ?%s: %s", i, v, b)
		}
		n, ok := term.(rdf.Integer)
		if !ok {
			t.Fatalf("solution %d binds ?%s to non-integer %s", i, v, term)
		}
		out = append(out, int64(n))
	}
	return out
}
