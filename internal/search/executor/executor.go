// Package executor runs the per-query pipeline: parse → match → rank →
// fetch document text → snippet. Every query reads exactly one snapshot,
// so concurrent queries never contend on shared state.
package executor

import (
	"context"
	std "errors"
	"log/slog"

	"github.com/ahmeedHassan1/ir-iss-project/internal/index/snapshot"
	"github.com/ahmeedHassan1/ir-iss-project/internal/search/matcher"
	"github.com/ahmeedHassan1/ir-iss-project/internal/search/parser"
	"github.com/ahmeedHassan1/ir-iss-project/internal/search/ranker"
	"github.com/ahmeedHassan1/ir-iss-project/internal/search/snippet"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/errors"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/metrics"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/resilience"
)

// DocumentFetcher supplies a document's full text on demand for snippet
// construction. Implementations live outside the core (e.g. the Postgres
// store) and hand back plaintext.
type DocumentFetcher interface {
	FetchText(ctx context.Context, docID string) (string, error)
}

// Result is one entry of the ranked result list.
type Result struct {
	DocID        string   `json:"doc_id"`
	Similarity   float64  `json:"similarity"`
	MatchedTerms []string `json:"matched_terms"`
	Snippet      string   `json:"snippet"`
	WordCount    int      `json:"word_count"`
}

// SearchResult is the full response for one query.
type SearchResult struct {
	Query     string   `json:"query"`
	QueryKind string   `json:"query_kind"`
	TotalHits int      `json:"total_hits"`
	Results   []Result `json:"results"`
}

// Executor evaluates parsed queries against the current snapshot.
type Executor struct {
	store    *snapshot.Store
	fetcher  DocumentFetcher
	snippets *snippet.Extractor
	breaker  *resilience.Breaker
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates an Executor. fetcher may be nil, in which case snippets are
// empty.
func New(store *snapshot.Store, fetcher DocumentFetcher, snippets *snippet.Extractor) *Executor {
	return &Executor{
		store:    store,
		fetcher:  fetcher,
		snippets: snippets,
		breaker:  resilience.NewBreaker("document-fetch", 0, 0),
		logger:   slog.Default().With("component", "query-executor"),
	}
}

// SetMetrics attaches Prometheus counters. A nil receiver value leaves
// the executor uninstrumented.
func (e *Executor) SetMetrics(m *metrics.Metrics) {
	e.metrics = m
}

// Execute runs a parsed query against the latest completed snapshot. An
// empty query or an unbuilt index yields an empty result list, never an
// error. A document whose text cannot be fetched is dropped from the
// output rather than failing the whole query; a partial ranked list is
// more useful than none.
func (e *Executor) Execute(ctx context.Context, q *parser.Query, limit int) (*SearchResult, error) {
	result := &SearchResult{
		Query:     q.Raw,
		QueryKind: q.Kind.String(),
		Results:   []Result{},
	}

	snap := e.store.Current()
	if snap == nil || q.IsEmpty() {
		return result, nil
	}

	candidates := matcher.Match(snap.Table, q)
	result.TotalHits = len(candidates)
	if len(candidates) == 0 {
		return result, nil
	}

	ranked := ranker.Rank(snap.Matrices, q.Include, candidates, limit)
	for _, doc := range ranked {
		text, ok := e.fetchText(ctx, doc.DocID)
		if !ok {
			result.TotalHits--
			continue
		}
		result.Results = append(result.Results, Result{
			DocID:        doc.DocID,
			Similarity:   doc.Similarity,
			MatchedTerms: doc.MatchedTerms,
			Snippet:      e.snippets.Extract(text, doc.MatchedTerms),
			WordCount:    snap.Table.WordCount(doc.DocID),
		})
	}

	e.logger.Debug("query executed",
		"query", q.Raw,
		"kind", q.Kind.String(),
		"candidates", len(candidates),
		"returned", len(result.Results),
	)
	return result, nil
}

// fetchText retrieves one document's text behind the circuit breaker.
// ok is false when the document must be dropped from the results.
func (e *Executor) fetchText(ctx context.Context, docID string) (string, bool) {
	if e.fetcher == nil {
		return "", true
	}
	var text string
	var missing bool
	err := e.breaker.Execute(func() error {
		t, fetchErr := e.fetcher.FetchText(ctx, docID)
		if std.Is(fetchErr, errors.ErrDocumentNotFound) {
			// A document absent from the store is a stale posting,
			// not store trouble. It must not count toward opening
			// the breaker.
			missing = true
			return nil
		}
		if fetchErr != nil {
			return fetchErr
		}
		text = t
		return nil
	})
	if missing {
		err = errors.ErrDocumentNotFound
	}
	if err != nil {
		e.logger.Warn("dropping document from results, text fetch failed",
			"doc_id", docID,
			"error", err,
		)
		if e.metrics != nil {
			e.metrics.DroppedDocsTotal.Inc()
		}
		return "", false
	}
	return text, true
}
