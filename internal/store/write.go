package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/roach88/triplestream/internal/querysql"
	"github.com/roach88/triplestream/internal/rdf"
)

// Insert adds triples in a single transaction, stamping each new triple
// with the next clock value. Triples already stored are silently ignored.
// Returns the number of triples actually inserted.
func (s *Store) Insert(ctx context.Context, triples ...rdf.Triple) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("insert: begin: %w", err)
	}
	defer tx.Rollback()

	ids := make(map[rdf.Term]int64)
	inserted := 0
	for i, t := range triples {
		var spo [3]int64
		for j, term := range [3]rdf.Term{t.Subject, t.Predicate, t.Object} {
			id, err := termID(ctx, tx, ids, term)
			if err != nil {
				return 0, fmt.Errorf("insert triple %d: %w", i, err)
			}
			spo[j] = id
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO triples (seq, subject, predicate, object)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(subject, predicate, object) DO NOTHING
		`, s.clock.Next(), spo[0], spo[1], spo[2])
		if err != nil {
			return 0, fmt.Errorf("insert triple %d: %w", i, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert triple %d: %w", i, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("insert: commit: %w", err)
	}

	slog.Info("inserted triples", "requested", len(triples), "inserted", inserted)
	return inserted, nil
}

// termID returns the dictionary id of t, creating the row if needed.
// ids caches lookups within one transaction.
func termID(ctx context.Context, tx *sql.Tx, ids map[rdf.Term]int64, t rdf.Term) (int64, error) {
	if t == nil {
		return 0, fmt.Errorf("nil term")
	}
	if id, ok := ids[t]; ok {
		return id, nil
	}

	enc, err := encodeTerm(t)
	if err != nil {
		return 0, err
	}
	if err := upsertTerm(ctx, tx, enc); err != nil {
		return 0, err
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM terms
		WHERE kind = ? AND value = ? AND datatype = ? AND lang = ?
	`, enc.Kind, enc.Value, enc.Datatype, enc.Lang).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("lookup term %s: %w", t, err)
	}
	ids[t] = id
	return id, nil
}

func upsertTerm(ctx context.Context, tx *sql.Tx, enc querysql.Term) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO terms (kind, value, datatype, lang)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(kind, value, datatype, lang) DO NOTHING
	`, enc.Kind, enc.Value, enc.Datatype, enc.Lang)
	if err != nil {
		return fmt.Errorf("write term: %w", err)
	}
	return nil
}
