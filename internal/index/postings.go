// Package index holds the positional-index data model: postings, the
// per-corpus postings table, the per-document index builder, and the
// display formatting for a term's postings.
package index

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ahmeedHassan1/ir-iss-project/internal/index/tokenizer"
)

// Posting records every position at which one term occurs in one document.
// Positions are zero-based indices into the document's tokenized stream and
// are strictly increasing.
type Posting struct {
	Term      string `json:"term"`
	DocID     string `json:"doc_id"`
	Positions []int  `json:"positions"`
}

// Frequency is the number of occurrences of the posting's term in its
// document.
func (p Posting) Frequency() int {
	return len(p.Positions)
}

// DocumentIndex is the positional index of a single document: each distinct
// term mapped to the ordered positions at which it occurred.
type DocumentIndex struct {
	DocID     string
	WordCount int
	Terms     map[string][]int
}

// BuildDocument tokenizes text and groups the tokens of a single document
// by term. A single left-to-right pass guarantees ascending positions.
func BuildDocument(docID string, text string) DocumentIndex {
	tokens := tokenizer.Tokenize(text)
	terms := make(map[string][]int)
	for _, tok := range tokens {
		terms[tok.Term] = append(terms[tok.Term], tok.Position)
	}
	return DocumentIndex{
		DocID:     docID,
		WordCount: len(tokens),
		Terms:     terms,
	}
}

// Table is the aggregated postings table for a corpus: term → doc_id →
// positions. At most one posting exists per (term, doc_id) pair.
type Table struct {
	postings map[string]map[string][]int
	docs     map[string]int
}

// NewTable returns an empty postings table.
func NewTable() *Table {
	return &Table{
		postings: make(map[string]map[string][]int),
		docs:     make(map[string]int),
	}
}

// Add merges one document's positional index into the table. Adding the
// same document twice replaces its previous postings.
func (t *Table) Add(doc DocumentIndex) {
	for term, positions := range doc.Terms {
		byDoc, ok := t.postings[term]
		if !ok {
			byDoc = make(map[string][]int)
			t.postings[term] = byDoc
		}
		byDoc[doc.DocID] = positions
	}
	t.docs[doc.DocID] = doc.WordCount
}

// Insert records a raw posting, extending any existing posting for the
// same (term, doc_id) pair. Used when loading a persisted index.
func (t *Table) Insert(term string, docID string, positions []int) {
	byDoc, ok := t.postings[term]
	if !ok {
		byDoc = make(map[string][]int)
		t.postings[term] = byDoc
	}
	byDoc[docID] = append(byDoc[docID], positions...)
	if _, ok := t.docs[docID]; !ok {
		t.docs[docID] = 0
	}
}

// SetWordCount records the token count for a document, used when postings
// are loaded from storage rather than built from text.
func (t *Table) SetWordCount(docID string, count int) {
	t.docs[docID] = count
}

// Positions returns the stored positions for (term, docID), or nil when
// the pair has no posting.
func (t *Table) Positions(term string, docID string) []int {
	return t.postings[term][docID]
}

// Postings returns every posting for the given term, ordered by document
// in natural (numeric-suffix) order. An unknown term yields an empty
// slice, not an error.
func (t *Table) Postings(term string) []Posting {
	byDoc, ok := t.postings[term]
	if !ok {
		return nil
	}
	result := make([]Posting, 0, len(byDoc))
	for docID, positions := range byDoc {
		result = append(result, Posting{Term: term, DocID: docID, Positions: positions})
	}
	sort.Slice(result, func(i, j int) bool {
		return NaturalLess(result[i].DocID, result[j].DocID)
	})
	return result
}

// DocumentFrequency returns the number of distinct documents containing
// the term.
func (t *Table) DocumentFrequency(term string) int {
	return len(t.postings[term])
}

// Terms returns every indexed term in lexicographic order.
func (t *Table) Terms() []string {
	terms := make([]string, 0, len(t.postings))
	for term := range t.postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Documents returns every indexed doc_id in natural (numeric-suffix)
// order.
func (t *Table) Documents() []string {
	docs := make([]string, 0, len(t.docs))
	for docID := range t.docs {
		docs = append(docs, docID)
	}
	sort.Slice(docs, func(i, j int) bool {
		return NaturalLess(docs[i], docs[j])
	})
	return docs
}

// WordCount returns the stored token count for a document.
func (t *Table) WordCount(docID string) int {
	return t.docs[docID]
}

// DocCount returns N, the number of distinct indexed documents.
func (t *Table) DocCount() int {
	return len(t.docs)
}

// TermCount returns the number of distinct indexed terms.
func (t *Table) TermCount() int {
	return len(t.postings)
}

// PostingCount returns the total number of (term, doc_id) pairs.
func (t *Table) PostingCount() int {
	total := 0
	for _, byDoc := range t.postings {
		total += len(byDoc)
	}
	return total
}

// FormatPostings renders a term's postings in the display format
// < term doc_a: p1, p2; doc_b: p1 >, documents in natural order.
func (t *Table) FormatPostings(term string) string {
	postings := t.Postings(term)
	entries := make([]string, 0, len(postings))
	for _, p := range postings {
		positions := make([]string, len(p.Positions))
		for i, pos := range p.Positions {
			positions[i] = strconv.Itoa(pos)
		}
		entries = append(entries, fmt.Sprintf("%s: %s", p.DocID, strings.Join(positions, ", ")))
	}
	return fmt.Sprintf("< %s %s >", term, strings.Join(entries, "; "))
}

// NaturalLess orders doc_ids by their embedded integer suffix (doc2 before
// doc10). Identifiers without a numeric suffix fall back to lexicographic
// order and sort after numeric ones with the same prefix.
func NaturalLess(a, b string) bool {
	prefixA, numA, okA := splitNumericSuffix(a)
	prefixB, numB, okB := splitNumericSuffix(b)
	if okA && okB && prefixA == prefixB {
		if numA != numB {
			return numA < numB
		}
		return a < b
	}
	return a < b
}

func splitNumericSuffix(s string) (prefix string, num int, ok bool) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return s, 0, false
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return s, 0, false
	}
	return s[:i], n, true
}
