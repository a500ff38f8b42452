// Package matcher evaluates parsed queries against a postings table to
// produce the candidate document set handed to the ranker.
package matcher

import (
	"sort"

	"github.com/ahmeedHassan1/ir-iss-project/internal/index"
	"github.com/ahmeedHassan1/ir-iss-project/internal/search/parser"
)

// Candidate is one matching document along with the distinct query terms
// it contains.
type Candidate struct {
	DocID        string
	MatchedTerms []string
}

// Match returns the candidate documents for a parsed query, in natural
// doc order. Conjunctive queries require a document to contain every
// distinct include term; a document hitting only a subset is excluded no
// matter how well it would score. Free queries take the union over all
// terms, with no adjacency requirement. Any document containing any
// excluded term is removed. An empty include list yields no candidates.
func Match(table *index.Table, q *parser.Query) []Candidate {
	if q.IsEmpty() {
		return nil
	}

	distinct := distinctTerms(q.Include)
	matched := make(map[string]map[string]struct{})
	for _, term := range distinct {
		for _, posting := range table.Postings(term) {
			terms, ok := matched[posting.DocID]
			if !ok {
				terms = make(map[string]struct{}, len(distinct))
				matched[posting.DocID] = terms
			}
			terms[term] = struct{}{}
		}
	}

	conjunctive := q.Kind == parser.Conjunctive || q.Kind == parser.ConjunctiveNegated
	if conjunctive {
		for docID, terms := range matched {
			if len(terms) != len(distinct) {
				delete(matched, docID)
			}
		}
	}

	for _, term := range distinctTerms(q.Exclude) {
		for _, posting := range table.Postings(term) {
			delete(matched, posting.DocID)
		}
	}

	candidates := make([]Candidate, 0, len(matched))
	for docID, terms := range matched {
		matchedTerms := make([]string, 0, len(terms))
		for term := range terms {
			matchedTerms = append(matchedTerms, term)
		}
		sort.Strings(matchedTerms)
		candidates = append(candidates, Candidate{DocID: docID, MatchedTerms: matchedTerms})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return index.NaturalLess(candidates[i].DocID, candidates[j].DocID)
	})
	return candidates
}

func distinctTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	return out
}
