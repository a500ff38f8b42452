// Package parser classifies raw query strings into one of three typed
// forms: a free-term query, a conjunctive (AND) query, or a conjunctive
// query with negation (AND NOT).
//
// Classification is checked in strict priority order. A query containing
// the literal separator " AND NOT " is negated-conjunctive regardless of
// any other " AND " it contains; otherwise " AND " makes it conjunctive;
// otherwise it is a free query. No input is a syntax error: every string
// tokenizes to something, possibly an empty term list.
package parser

import (
	"strings"

	"github.com/ahmeedHassan1/ir-iss-project/internal/index/tokenizer"
)

// Kind tags the query variant.
type Kind int

const (
	// Free matches any document containing at least one query term
	// (implicit OR); ranking alone orders the results. Despite being
	// presented as a phrase query upstream, no positional adjacency is
	// checked.
	Free Kind = iota
	// Conjunctive requires a document to contain every distinct include
	// term.
	Conjunctive
	// ConjunctiveNegated is Conjunctive plus an exclusion list: any
	// document containing any excluded term is removed.
	ConjunctiveNegated
)

func (k Kind) String() string {
	switch k {
	case Conjunctive:
		return "conjunctive"
	case ConjunctiveNegated:
		return "conjunctive_negated"
	default:
		return "free"
	}
}

const (
	andNotSeparator = " AND NOT "
	andSeparator    = " AND "
)

// Query is a parsed, classified query. Include holds the positive terms
// for every kind; Exclude is only populated for ConjunctiveNegated. Term
// lists keep duplicates, which carry the query's own term frequencies
// into ranking.
type Query struct {
	Kind    Kind
	Include []string
	Exclude []string
	Raw     string
}

// IsEmpty reports whether the query has no positive terms. An empty query
// yields an empty candidate set, not an error.
func (q *Query) IsEmpty() bool {
	return len(q.Include) == 0
}

// Parse classifies a raw query string. The separators are matched
// literally and case-sensitively, before any tokenization. Only the
// matched separator occurrences are stripped; an operator word appearing
// elsewhere in the query is tokenized like any other text.
func Parse(raw string) *Query {
	q := &Query{Raw: raw}

	if left, right, found := strings.Cut(raw, andNotSeparator); found {
		q.Kind = ConjunctiveNegated
		q.Include = tokenize(left)
		q.Exclude = tokenize(right)
		return q
	}

	if strings.Contains(raw, andSeparator) {
		q.Kind = Conjunctive
		for _, part := range strings.Split(raw, andSeparator) {
			q.Include = append(q.Include, tokenize(part)...)
		}
		return q
	}

	q.Kind = Free
	q.Include = tokenize(raw)
	return q
}

// tokenize strips quote characters and normalises a query fragment into
// terms.
func tokenize(fragment string) []string {
	fragment = strings.ReplaceAll(fragment, `"`, "")
	fragment = strings.ReplaceAll(fragment, `'`, "")
	return tokenizer.Terms(fragment)
}
