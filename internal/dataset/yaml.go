package dataset

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/triplestream/internal/rdf"
)

// File is the YAML shape of a triple file:
//
//	triples:
//	  - ["<alice>", "<knows>", "<bob>"]
//	  - ["<alice>", "<age>", 42]
type File struct {
	Triples [][]string `yaml:"triples"`
}

// LoadYAML decodes a triple file from r. Every entry must have exactly three
// positions, each in term notation; variables are rejected.
func LoadYAML(r io.Reader) ([]rdf.Triple, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode triples: %w", err)
	}
	return ParseRows(f.Triples)
}

// LoadYAMLFile reads and decodes a triple file from disk.
func LoadYAMLFile(path string) ([]rdf.Triple, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open triple file: %w", err)
	}
	defer f.Close()

	triples, err := LoadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return triples, nil
}

// ParseRows converts rows of three term-notation strings into triples.
func ParseRows(rows [][]string) ([]rdf.Triple, error) {
	triples := make([]rdf.Triple, 0, len(rows))
	for i, row := range rows {
		if len(row) != 3 {
			return nil, fmt.Errorf("triple %d: expected 3 positions, got %d", i, len(row))
		}
		var terms [3]rdf.Term
		for j, s := range row {
			t, err := rdf.ParseTerm(s)
			if err != nil {
				return nil, fmt.Errorf("triple %d position %d: %w", i, j, err)
			}
			terms[j] = t
		}
		triples = append(triples, rdf.NewTriple(terms[0], terms[1], terms[2]))
	}
	return triples, nil
}
