// Package weights derives the term-weight matrices from a postings table:
// term frequency, inverse document frequency, their product, and the
// document-normalized variant used for cosine ranking.
//
// The matrices are logically sparse (term × document), so they are stored
// as sparse containers keyed by integer term and document indices rather
// than nested string maps. A Space fixes the term and document orderings
// (terms lexicographic, documents in natural numeric-suffix order) and
// translates between strings and indices.
package weights

import (
	"math"
	"net/http"

	"github.com/ahmeedHassan1/ir-iss-project/internal/index"
	pkgerrors "github.com/ahmeedHassan1/ir-iss-project/pkg/errors"
)

// Space is the fixed term/document coordinate system of one set of
// matrices. It is built once per rebuild and never mutated.
type Space struct {
	Terms     []string
	Documents []string

	termID map[string]int
	docID  map[string]int
}

// NewSpace derives the coordinate system from a postings table.
func NewSpace(table *index.Table) *Space {
	terms := table.Terms()
	docs := table.Documents()
	s := &Space{
		Terms:     terms,
		Documents: docs,
		termID:    make(map[string]int, len(terms)),
		docID:     make(map[string]int, len(docs)),
	}
	for i, t := range terms {
		s.termID[t] = i
	}
	for i, d := range docs {
		s.docID[d] = i
	}
	return s
}

// TermID returns the integer index of a term, or -1 when the term is not
// in the space.
func (s *Space) TermID(term string) int {
	id, ok := s.termID[term]
	if !ok {
		return -1
	}
	return id
}

// DocID returns the integer index of a document, or -1 when the document
// is not in the space.
func (s *Space) DocID(doc string) int {
	id, ok := s.docID[doc]
	if !ok {
		return -1
	}
	return id
}

// Matrix is a sparse term × document matrix. Rows are indexed by term ID;
// each row holds only its nonzero cells, keyed by document ID.
type Matrix struct {
	space *Space
	rows  []map[int]float64
}

func newMatrix(space *Space) *Matrix {
	return &Matrix{
		space: space,
		rows:  make([]map[int]float64, len(space.Terms)),
	}
}

func (m *Matrix) set(termID, docID int, v float64) {
	if m.rows[termID] == nil {
		m.rows[termID] = make(map[int]float64, 4)
	}
	m.rows[termID][docID] = v
}

// At returns the cell value for (termID, docID); absent cells are 0.
func (m *Matrix) At(termID, docID int) float64 {
	if termID < 0 || termID >= len(m.rows) || m.rows[termID] == nil {
		return 0
	}
	return m.rows[termID][docID]
}

// Value looks a cell up by term and document name.
func (m *Matrix) Value(term, doc string) float64 {
	return m.At(m.space.TermID(term), m.space.DocID(doc))
}

// Column returns the nonzero cells of one document's column, keyed by
// term ID.
func (m *Matrix) Column(docID int) map[int]float64 {
	col := make(map[int]float64)
	for termID, row := range m.rows {
		if v, ok := row[docID]; ok {
			col[termID] = v
		}
	}
	return col
}

// Matrices is the complete derived weight set for one index snapshot.
// All four variants are recomputed in full from postings + N on each
// rebuild; nothing here is updated in place.
type Matrices struct {
	Space      *Space
	TF         *Matrix
	TFIDF      *Matrix
	Normalized *Matrix

	// IDF is term-indexed only; one value per term in Space.Terms order.
	IDF []float64

	// DocNorms holds each document's Euclidean norm over its TFIDF
	// column, in Space.Documents order.
	DocNorms []float64

	TotalDocuments int
}

// TermFrequency is the sub-linear TF weight: 1 + log10(freq) for freq > 0,
// else 0. Log scaling dampens heavily repeated terms.
func TermFrequency(freq int) float64 {
	if freq <= 0 {
		return 0
	}
	return 1 + math.Log10(float64(freq))
}

// InverseDocumentFrequency is log10(N/df).
func InverseDocumentFrequency(totalDocs, docFreq int) float64 {
	return math.Log10(float64(totalDocs) / float64(docFreq))
}

// Compute derives all four weight matrices from the postings table and the
// corpus size. A zero-document corpus yields empty matrices. A term whose
// document frequency is zero while postings exist for it means the index
// is inconsistent and is reported as a rebuild-required fault rather than
// silently skewing weights.
func Compute(table *index.Table, totalDocs int) (*Matrices, error) {
	space := NewSpace(table)
	m := &Matrices{
		Space:          space,
		TF:             newMatrix(space),
		TFIDF:          newMatrix(space),
		Normalized:     newMatrix(space),
		IDF:            make([]float64, len(space.Terms)),
		DocNorms:       make([]float64, len(space.Documents)),
		TotalDocuments: totalDocs,
	}
	if totalDocs == 0 {
		if len(space.Terms) > 0 {
			return nil, pkgerrors.Newf(pkgerrors.ErrIndexInconsistent, http.StatusServiceUnavailable,
				"postings contain %d terms but corpus size is 0", len(space.Terms))
		}
		return m, nil
	}

	for termID, term := range space.Terms {
		df := table.DocumentFrequency(term)
		if df == 0 {
			return nil, pkgerrors.Newf(pkgerrors.ErrIndexInconsistent, http.StatusServiceUnavailable,
				"term %q has postings but zero document frequency", term)
		}
		idf := InverseDocumentFrequency(totalDocs, df)
		m.IDF[termID] = idf
		for _, posting := range table.Postings(term) {
			docID := space.DocID(posting.DocID)
			tf := TermFrequency(posting.Frequency())
			m.TF.set(termID, docID, tf)
			m.TFIDF.set(termID, docID, tf*idf)
		}
	}

	for docID := range space.Documents {
		var sum float64
		for _, row := range m.TFIDF.rows {
			if v, ok := row[docID]; ok {
				sum += v * v
			}
		}
		m.DocNorms[docID] = math.Sqrt(sum)
	}
	for termID, row := range m.TFIDF.rows {
		for docID, v := range row {
			if norm := m.DocNorms[docID]; norm > 0 {
				m.Normalized.set(termID, docID, v/norm)
			}
		}
	}
	return m, nil
}

// DocumentVector returns the nonzero normalized-TFIDF entries of one
// document, keyed by term ID. Unknown documents yield an empty vector.
func (m *Matrices) DocumentVector(doc string) map[int]float64 {
	docID := m.Space.DocID(doc)
	if docID < 0 {
		return map[int]float64{}
	}
	return m.Normalized.Column(docID)
}
