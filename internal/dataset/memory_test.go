package dataset

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/triplestream/internal/rdf"
)

func tr(s, p, o string) rdf.Triple {
	return rdf.NewTriple(rdf.MustParseTerm(s), rdf.MustParseTerm(p), rdf.MustParseTerm(o))
}

func fixture() *Memory {
	return NewMemory(
		tr("<alice>", "<type>", "<Person>"),
		tr("<bob>", "<type>", "<Person>"),
		tr("<alice>", "<knows>", "<bob>"),
		tr("<bob>", "<knows>", "<carol>"),
		tr("<alice>", "<age>", "42"),
	)
}

func TestMemory_Lookups(t *testing.T) {
	ctx := context.Background()
	m := fixture()
	alice := rdf.IRI("alice")
	knows := rdf.IRI("knows")
	person := rdf.IRI("Person")

	tests := []struct {
		name string
		it   Iterator
		want []rdf.Triple
	}{
		{"full scan", m.Triples(ctx), []rdf.Triple{
			tr("<alice>", "<type>", "<Person>"),
			tr("<bob>", "<type>", "<Person>"),
			tr("<alice>", "<knows>", "<bob>"),
			tr("<bob>", "<knows>", "<carol>"),
			tr("<alice>", "<age>", "42"),
		}},
		{"subject", m.WithSubject(ctx, alice), []rdf.Triple{
			tr("<alice>", "<type>", "<Person>"),
			tr("<alice>", "<knows>", "<bob>"),
			tr("<alice>", "<age>", "42"),
		}},
		{"predicate", m.WithPredicate(ctx, knows), []rdf.Triple{
			tr("<alice>", "<knows>", "<bob>"),
			tr("<bob>", "<knows>", "<carol>"),
		}},
		{"object", m.WithObject(ctx, person), []rdf.Triple{
			tr("<alice>", "<type>", "<Person>"),
			tr("<bob>", "<type>", "<Person>"),
		}},
		{"subject+predicate", m.WithSubjectPredicate(ctx, alice, knows), []rdf.Triple{
			tr("<alice>", "<knows>", "<bob>"),
		}},
		{"subject+object", m.WithSubjectObject(ctx, alice, rdf.Integer(42)), []rdf.Triple{
			tr("<alice>", "<age>", "42"),
		}},
		{"predicate+object", m.WithPredicateObject(ctx, rdf.IRI("type"), person), []rdf.Triple{
			tr("<alice>", "<type>", "<Person>"),
			tr("<bob>", "<type>", "<Person>"),
		}},
		{"no match", m.WithSubject(ctx, rdf.IRI("nobody")), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Collect(tt.it)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemory_Contains(t *testing.T) {
	ctx := context.Background()
	m := fixture()

	ok, err := m.Contains(ctx, tr("<alice>", "<knows>", "<bob>"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Contains(ctx, tr("<bob>", "<knows>", "<alice>"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_DuplicatesIgnored(t *testing.T) {
	m := NewMemory()
	assert.Equal(t, 1, m.Add(tr("<a>", "<p>", "<b>"), tr("<a>", "<p>", "<b>")))
	assert.Equal(t, 0, m.Add(tr("<a>", "<p>", "<b>")))
	assert.Equal(t, 1, m.Len())
}

func TestMemory_IteratorSnapshot(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(tr("<a>", "<p>", "<b>"))

	it := m.WithSubject(ctx, rdf.IRI("a"))
	m.Add(tr("<a>", "<p>", "<c>"))

	got, err := Collect(it)
	require.NoError(t, err)
	assert.Len(t, got, 1, "iterator must not observe triples added after the call")

	got, err = Collect(m.WithSubject(ctx, rdf.IRI("a")))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestIterator_ExhaustedStaysExhausted(t *testing.T) {
	it := FromSlice([]rdf.Triple{tr("<a>", "<p>", "<b>")})
	assert.True(t, it.Next())
	assert.False(t, it.Next())
	assert.False(t, it.Next())
	require.NoError(t, it.Err())
}

func TestIterator_CloseStops(t *testing.T) {
	m := fixture()
	it := m.Triples(context.Background())
	require.True(t, it.Next())
	require.NoError(t, it.Close())
	assert.False(t, it.Next())
}

func TestLoadYAML(t *testing.T) {
	src := `
triples:
  - ["<alice>", "<knows>", "<bob>"]
  - ["<alice>", "<age>", 42]
  - ["_:b0", "<label>", '"hello"@en']
`
	got, err := LoadYAML(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, tr("<alice>", "<knows>", "<bob>"), got[0])
	assert.Equal(t, rdf.Integer(42), got[1].Object)
	assert.Equal(t, rdf.NewLangLiteral("hello", "en"), got[2].Object)
	assert.Equal(t, rdf.Blank("b0"), got[2].Subject)
}

func TestLoadYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"short row", `triples: [["<a>", "<b>"]]`, "expected 3 positions"},
		{"bad term", `triples: [["<a", "<b>", "<c>"]]`, "unterminated IRI"},
		{"unknown field", `tripels: []`, "decode triples"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadYAML(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadYAML_Empty(t *testing.T) {
	got, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}
