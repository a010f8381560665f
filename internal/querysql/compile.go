// Package querysql compiles triple selections to parameterized SQL for the
// SQLite dataset.
//
// Every statement is ordered by insertion sequence so iteration order is
// deterministic, and every term is passed as a parameter, never interpolated.
package querysql

import (
	"fmt"
	"strings"
)

// Term is the storage encoding of a bound position: the four columns of the
// terms table.
type Term struct {
	Kind     string
	Value    string
	Datatype string
	Lang     string
}

// Selection names the bound positions of a lookup. Nil positions are free.
type Selection struct {
	Subject   *Term
	Predicate *Term
	Object    *Term
}

// Bound reports how many positions are bound.
func (s Selection) Bound() int {
	n := 0
	for _, t := range s.positions() {
		if t.term != nil {
			n++
		}
	}
	return n
}

type position struct {
	alias string
	term  *Term
}

func (s Selection) positions() []position {
	return []position{
		{alias: "s", term: s.Subject},
		{alias: "p", term: s.Predicate},
		{alias: "o", term: s.Object},
	}
}

// selectColumns decodes into (kind, value, datatype, lang) for s, p, o in order.
const selectColumns = `s.kind, s.value, s.datatype, s.lang,
	p.kind, p.value, p.datatype, p.lang,
	o.kind, o.value, o.datatype, o.lang`

const fromClause = `triples t
	JOIN terms s ON s.id = t.subject
	JOIN terms p ON p.id = t.predicate
	JOIN terms o ON o.id = t.object`

// Compile converts a selection to a SELECT over the triples table returning
// the twelve term columns of selectColumns.
// Returns (sql, params, error).
func Compile(sel Selection) (string, []any, error) {
	where, params, err := compileWhere(sel)
	if err != nil {
		return "", nil, err
	}
	sql := "SELECT " + selectColumns + "\nFROM " + fromClause + where + "\nORDER BY t.seq ASC"
	return sql, params, nil
}

// CompileExists converts a selection to a query returning a single row
// when at least one triple matches.
func CompileExists(sel Selection) (string, []any, error) {
	where, params, err := compileWhere(sel)
	if err != nil {
		return "", nil, err
	}
	sql := "SELECT 1\nFROM " + fromClause + where + "\nLIMIT 1"
	return sql, params, nil
}

// compileWhere emits one conjunct per column of each bound position.
func compileWhere(sel Selection) (string, []any, error) {
	var parts []string
	var params []any
	for _, pos := range sel.positions() {
		if pos.term == nil {
			continue
		}
		if pos.term.Kind == "" {
			return "", nil, fmt.Errorf("position %s: empty term kind", pos.alias)
		}
		parts = append(parts,
			pos.alias+".kind = ?",
			pos.alias+".value = ?",
			pos.alias+".datatype = ?",
			pos.alias+".lang = ?",
		)
		params = append(params, pos.term.Kind, pos.term.Value, pos.term.Datatype, pos.term.Lang)
	}
	if len(parts) == 0 {
		return "", nil, nil
	}
	return "\nWHERE " + strings.Join(parts, " AND "), params, nil
}
