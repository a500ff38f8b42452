package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ahmeedHassan1/ir-iss-project/internal/search/executor"
	"github.com/ahmeedHassan1/ir-iss-project/internal/search/parser"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/config"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/errors"
)

type fakeExecutor struct {
	lastQuery *parser.Query
	lastLimit int
	result    *executor.SearchResult
	err       error
}

func (f *fakeExecutor) Execute(ctx context.Context, q *parser.Query, limit int) (*executor.SearchResult, error) {
	f.lastQuery = q
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func searchConfig() config.SearchConfig {
	return config.SearchConfig{MaxResults: 50, DefaultLimit: 10, SnippetLength: 200, SnippetRadius: 50}
}

func doSearch(h *Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSearchRequiresQuery(t *testing.T) {
	h := New(&fakeExecutor{}, nil, nil, nil, searchConfig())
	if rec := doSearch(h, "/api/v1/search"); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSearchRejectsBadLimit(t *testing.T) {
	h := New(&fakeExecutor{}, nil, nil, nil, searchConfig())
	for _, limit := range []string{"0", "-3", "ten"} {
		if rec := doSearch(h, "/api/v1/search?q=angels&limit="+limit); rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want 400", limit, rec.Code)
		}
	}
}

func TestSearchCapsLimitAtMaxResults(t *testing.T) {
	exec := &fakeExecutor{result: &executor.SearchResult{Query: "angels", Results: []executor.Result{}}}
	h := New(exec, nil, nil, nil, searchConfig())

	if rec := doSearch(h, "/api/v1/search?q=angels&limit=9999"); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if exec.lastLimit != 50 {
		t.Errorf("limit = %d, want capped to 50", exec.lastLimit)
	}
}

func TestSearchDefaultsLimit(t *testing.T) {
	exec := &fakeExecutor{result: &executor.SearchResult{Query: "angels", Results: []executor.Result{}}}
	h := New(exec, nil, nil, nil, searchConfig())

	doSearch(h, "/api/v1/search?q=angels")
	if exec.lastLimit != 10 {
		t.Errorf("limit = %d, want default 10", exec.lastLimit)
	}
}

func TestSearchEmptyQueryTermsShortCircuits(t *testing.T) {
	exec := &fakeExecutor{}
	h := New(exec, nil, nil, nil, searchConfig())

	// Punctuation only: parses to no terms, executor never runs.
	rec := doSearch(h, "/api/v1/search?q=%21%21%21")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if exec.lastQuery != nil {
		t.Error("executor must not run for an empty parsed query")
	}
	var result executor.SearchResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if result.TotalHits != 0 || len(result.Results) != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
}

func TestSearchReturnsResults(t *testing.T) {
	exec := &fakeExecutor{result: &executor.SearchResult{
		Query:     "angels AND fear",
		QueryKind: "conjunctive",
		TotalHits: 1,
		Results: []executor.Result{
			{DocID: "doc1", Similarity: 0.8944, MatchedTerms: []string{"angels", "fear"}},
		},
	}}
	h := New(exec, nil, nil, nil, searchConfig())

	rec := doSearch(h, "/api/v1/search?q=angels+AND+fear")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if exec.lastQuery.Kind != parser.Conjunctive {
		t.Errorf("parsed kind = %v, want conjunctive", exec.lastQuery.Kind)
	}

	var result executor.SearchResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if result.TotalHits != 1 || result.Results[0].DocID != "doc1" {
		t.Errorf("result = %+v", result)
	}
}

func TestSearchMapsExecutorErrors(t *testing.T) {
	exec := &fakeExecutor{err: errors.ErrIndexInconsistent}
	h := New(exec, nil, nil, nil, searchConfig())

	if rec := doSearch(h, "/api/v1/search?q=angels"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestCacheStatsDisabled(t *testing.T) {
	h := New(&fakeExecutor{}, nil, nil, nil, searchConfig())
	rec := httptest.NewRecorder()
	h.CacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "disabled" {
		t.Errorf("status field = %q, want disabled", body["status"])
	}
}
