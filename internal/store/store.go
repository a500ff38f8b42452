// Package store is the PostgreSQL-backed corpus and postings store. The
// documents table is owned by the CRUD application and read here; the
// positional_index table is owned by the indexer and fully replaced on
// every rebuild.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/ahmeedHassan1/ir-iss-project/internal/index"
	"github.com/ahmeedHassan1/ir-iss-project/internal/index/snapshot"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/errors"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/postgres"
)

// Store reads documents and persists the positional index.
type Store struct {
	client *postgres.Client
	logger *slog.Logger
}

// New wraps a postgres client.
func New(client *postgres.Client) *Store {
	return &Store{
		client: client,
		logger: slog.Default().With("component", "store"),
	}
}

// LoadDocuments returns the full corpus, plaintext content included, in
// natural doc order. Decryption happens upstream of this table.
func (s *Store) LoadDocuments(ctx context.Context) ([]snapshot.Document, error) {
	rows, err := s.client.DB.QueryContext(ctx,
		`SELECT doc_id, content FROM documents ORDER BY doc_id`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []snapshot.Document
	for rows.Next() {
		var doc snapshot.Document
		if err := rows.Scan(&doc.ID, &doc.Text); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// FetchText returns one document's plaintext, for ranking and snippet
// construction. A missing row maps to ErrDocumentNotFound so callers can
// apply their fail-soft policy.
func (s *Store) FetchText(ctx context.Context, docID string) (string, error) {
	var text string
	err := s.client.DB.QueryRowContext(ctx,
		`SELECT content FROM documents WHERE doc_id = $1`, docID).Scan(&text)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: %s", errors.ErrDocumentNotFound, docID)
	}
	if err != nil {
		return "", fmt.Errorf("fetching document %s: %w", docID, err)
	}
	return text, nil
}

// ReplacePostings replaces the entire positional_index table with the
// given table's postings in a single transaction. Readers of the table
// never observe a partial index.
func (s *Store) ReplacePostings(ctx context.Context, table *index.Table) error {
	count := 0
	err := s.client.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM positional_index`); err != nil {
			return fmt.Errorf("clearing positional index: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO positional_index (term, doc_id, positions)
			VALUES ($1, $2, $3)
			ON CONFLICT (term, doc_id) DO UPDATE
			SET positions = EXCLUDED.positions`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for _, term := range table.Terms() {
			for _, posting := range table.Postings(term) {
				positions := make(pq.Int64Array, len(posting.Positions))
				for i, p := range posting.Positions {
					positions[i] = int64(p)
				}
				if _, err := stmt.ExecContext(ctx, posting.Term, posting.DocID, positions); err != nil {
					return fmt.Errorf("inserting posting (%s, %s): %w", posting.Term, posting.DocID, err)
				}
				count++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("positional index replaced",
		"postings", count,
		"terms", table.TermCount(),
		"documents", table.DocCount(),
	)
	return nil
}

// LoadPostings reads the persisted positional index back into a postings
// table, along with each document's stored word count.
func (s *Store) LoadPostings(ctx context.Context) (*index.Table, error) {
	table := index.NewTable()

	rows, err := s.client.DB.QueryContext(ctx,
		`SELECT term, doc_id, positions FROM positional_index`)
	if err != nil {
		return nil, fmt.Errorf("querying positional index: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			term      string
			docID     string
			positions pq.Int64Array
		)
		if err := rows.Scan(&term, &docID, &positions); err != nil {
			return nil, fmt.Errorf("scanning posting row: %w", err)
		}
		ints := make([]int, len(positions))
		for i, p := range positions {
			ints[i] = int(p)
		}
		table.Insert(term, docID, ints)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating postings: %w", err)
	}

	counts, err := s.client.DB.QueryContext(ctx,
		`SELECT doc_id, word_count FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("querying word counts: %w", err)
	}
	defer counts.Close()
	for counts.Next() {
		var (
			docID string
			n     int
		)
		if err := counts.Scan(&docID, &n); err != nil {
			return nil, fmt.Errorf("scanning word count row: %w", err)
		}
		table.SetWordCount(docID, n)
	}
	if err := counts.Err(); err != nil {
		return nil, fmt.Errorf("iterating word counts: %w", err)
	}
	return table, nil
}
