// Package ranker scores candidate documents against a query by cosine
// similarity between the query's TF-IDF vector and each document's
// normalized weight vector.
package ranker

import (
	"math"
	"sort"

	"github.com/ahmeedHassan1/ir-iss-project/internal/index"
	"github.com/ahmeedHassan1/ir-iss-project/internal/index/weights"
	"github.com/ahmeedHassan1/ir-iss-project/internal/search/matcher"
)

// ScoredDoc is one ranked result. Similarity is rounded to four decimal
// places and lies in [0, 1].
type ScoredDoc struct {
	DocID        string   `json:"doc_id"`
	Similarity   float64  `json:"similarity"`
	MatchedTerms []string `json:"matched_terms"`
}

// QueryVector builds the sparse weight vector for a query's own term
// list: the same sub-linear TF formula applied to each term's
// multiplicity within the query, combined with the corpus IDF. Terms
// absent from the corpus contribute zero weight.
func QueryVector(m *weights.Matrices, terms []string) map[int]float64 {
	counts := make(map[string]int, len(terms))
	for _, term := range terms {
		counts[term]++
	}
	vec := make(map[int]float64, len(counts))
	for term, freq := range counts {
		termID := m.Space.TermID(term)
		if termID < 0 {
			continue
		}
		w := weights.TermFrequency(freq) * m.IDF[termID]
		if w != 0 {
			vec[termID] = w
		}
	}
	return vec
}

// CosineSimilarity is dot(a, b) / (‖a‖·‖b‖) over the union of keys in
// either vector. When either magnitude is zero there is no matching
// signal and the similarity is defined as 0.
func CosineSimilarity(a, b map[int]float64) float64 {
	var dot, normA, normB float64
	for key, va := range a {
		normA += va * va
		if vb, ok := b[key]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores every candidate against the query terms and returns the
// results sorted by similarity descending. Ties break deterministically
// by ascending doc_id in natural order. A non-positive limit means no
// truncation.
func Rank(m *weights.Matrices, queryTerms []string, candidates []matcher.Candidate, limit int) []ScoredDoc {
	queryVec := QueryVector(m, queryTerms)

	result := make([]ScoredDoc, 0, len(candidates))
	for _, c := range candidates {
		docVec := m.DocumentVector(c.DocID)
		score := CosineSimilarity(queryVec, docVec)
		result = append(result, ScoredDoc{
			DocID:        c.DocID,
			Similarity:   math.Round(score*10000) / 10000,
			MatchedTerms: c.MatchedTerms,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Similarity != result[j].Similarity {
			return result[i].Similarity > result[j].Similarity
		}
		return index.NaturalLess(result[i].DocID, result[j].DocID)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}
