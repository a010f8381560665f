package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/triplestream/internal/rdf"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func tr(s, p, o string) rdf.Triple {
	return rdf.NewTriple(rdf.MustParseTerm(s), rdf.MustParseTerm(p), rdf.MustParseTerm(o))
}
