package weights

// MatrixView is the wire shape for the TF, TFIDF, and Normalized matrices:
// a nested term → doc_id → weight map plus the term and document orderings.
type MatrixView struct {
	Matrix    map[string]map[string]float64 `json:"matrix"`
	Terms     []string                      `json:"terms"`
	Documents []string                      `json:"documents"`
}

// IDFView is the wire shape for the IDF values, which are term-indexed
// only.
type IDFView struct {
	IDF            map[string]float64 `json:"idf"`
	TotalDocuments int                `json:"totalDocuments"`
}

// TFView exports the term-frequency matrix.
func (m *Matrices) TFView() MatrixView {
	return m.view(m.TF)
}

// TFIDFView exports the combined TF×IDF matrix.
func (m *Matrices) TFIDFView() MatrixView {
	return m.view(m.TFIDF)
}

// NormalizedView exports the document-normalized TFIDF matrix.
func (m *Matrices) NormalizedView() MatrixView {
	return m.view(m.Normalized)
}

// IDFView exports the per-term IDF values along with the corpus size.
func (m *Matrices) IDFView() IDFView {
	idf := make(map[string]float64, len(m.Space.Terms))
	for termID, term := range m.Space.Terms {
		idf[term] = m.IDF[termID]
	}
	return IDFView{
		IDF:            idf,
		TotalDocuments: m.TotalDocuments,
	}
}

func (m *Matrices) view(matrix *Matrix) MatrixView {
	out := make(map[string]map[string]float64, len(m.Space.Terms))
	for termID, term := range m.Space.Terms {
		row := make(map[string]float64, len(matrix.rows[termID]))
		for docID, v := range matrix.rows[termID] {
			row[m.Space.Documents[docID]] = v
		}
		out[term] = row
	}
	return MatrixView{
		Matrix:    out,
		Terms:     append([]string(nil), m.Space.Terms...),
		Documents: append([]string(nil), m.Space.Documents...),
	}
}
