package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ahmeedHassan1/ir-iss-project/internal/index/snapshot"
	"github.com/ahmeedHassan1/ir-iss-project/internal/search/parser"
	"github.com/ahmeedHassan1/ir-iss-project/internal/search/snippet"
	pkgerrors "github.com/ahmeedHassan1/ir-iss-project/pkg/errors"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/resilience"
)

type fakeFetcher struct {
	texts   map[string]string
	failing map[string]bool
}

func (f *fakeFetcher) FetchText(ctx context.Context, docID string) (string, error) {
	if f.failing[docID] {
		return "", errors.New("decode failure")
	}
	text, ok := f.texts[docID]
	if !ok {
		return "", fmt.Errorf("fetch doc %s: %w", docID, pkgerrors.ErrDocumentNotFound)
	}
	return text, nil
}

func newTestExecutor(t *testing.T, fetcher DocumentFetcher, texts map[string]string) *Executor {
	t.Helper()
	docs := make([]snapshot.Document, 0, len(texts))
	for id, text := range texts {
		docs = append(docs, snapshot.Document{ID: id, Text: text})
	}
	snap, err := snapshot.Build(context.Background(), docs, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	store := snapshot.NewStore()
	store.Swap(snap)
	return New(store, fetcher, snippet.New(200, 50))
}

func TestExecuteRanksAndSnips(t *testing.T) {
	texts := map[string]string{
		"doc1": "fools rush in where angels fear to tread",
		"doc2": "angels sing all night",
		"doc3": "completely unrelated text",
	}
	exec := newTestExecutor(t, &fakeFetcher{texts: texts}, texts)

	result, err := exec.Execute(context.Background(), parser.Parse("angels fear"), 10)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.TotalHits != 2 {
		t.Errorf("TotalHits = %d, want 2", result.TotalHits)
	}
	if len(result.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(result.Results))
	}
	top := result.Results[0]
	if top.DocID != "doc1" {
		t.Errorf("top = %s, want doc1 (matches both terms)", top.DocID)
	}
	if !strings.Contains(top.Snippet, "angels") {
		t.Errorf("snippet %q should contain a matched term", top.Snippet)
	}
	if top.WordCount != 8 {
		t.Errorf("WordCount = %d, want 8", top.WordCount)
	}
	if result.QueryKind != "free" {
		t.Errorf("QueryKind = %q, want free", result.QueryKind)
	}
}

func TestExecuteFailSoftDropsDocument(t *testing.T) {
	texts := map[string]string{
		"doc1": "angels everywhere",
		"doc2": "angels here too",
	}
	fetcher := &fakeFetcher{texts: texts, failing: map[string]bool{"doc2": true}}
	exec := newTestExecutor(t, fetcher, texts)

	result, err := exec.Execute(context.Background(), parser.Parse("angels"), 10)
	if err != nil {
		t.Fatalf("fail-soft should not surface an error, got %v", err)
	}
	if len(result.Results) != 1 || result.Results[0].DocID != "doc1" {
		t.Errorf("results = %v, want only doc1", result.Results)
	}
	if result.TotalHits != 1 {
		t.Errorf("TotalHits = %d, want 1 after dropping doc2", result.TotalHits)
	}
}

func TestExecuteStalePostingsLeaveBreakerClosed(t *testing.T) {
	// Six documents vanished from the store between index builds, one
	// more than the breaker's failure threshold. Absence is not store
	// trouble, so the breaker stays closed and the surviving document
	// is still fetched and returned.
	indexed := map[string]string{
		"doc7": "angels fear to tread softly tonight extra words",
	}
	for i := 1; i <= 6; i++ {
		indexed[fmt.Sprintf("doc%d", i)] = "angels fear"
	}
	fetcher := &fakeFetcher{texts: map[string]string{
		"doc7": indexed["doc7"],
	}}
	exec := newTestExecutor(t, fetcher, indexed)

	result, err := exec.Execute(context.Background(), parser.Parse("angels fear"), 10)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := exec.breaker.State(); got != resilience.BreakerClosed {
		t.Fatalf("breaker state = %v, want closed after not-found fetches", got)
	}
	if len(result.Results) != 1 || result.Results[0].DocID != "doc7" {
		t.Errorf("results = %v, want only doc7", result.Results)
	}
	if result.TotalHits != 1 {
		t.Errorf("TotalHits = %d, want 1 after dropping stale postings", result.TotalHits)
	}
}

func TestExecuteEmptyQuery(t *testing.T) {
	texts := map[string]string{"doc1": "anything"}
	exec := newTestExecutor(t, &fakeFetcher{texts: texts}, texts)

	result, err := exec.Execute(context.Background(), parser.Parse(""), 10)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.TotalHits != 0 || len(result.Results) != 0 {
		t.Errorf("empty query should yield empty result, got %+v", result)
	}
}

func TestExecuteNoSnapshot(t *testing.T) {
	exec := New(snapshot.NewStore(), nil, snippet.New(200, 50))
	result, err := exec.Execute(context.Background(), parser.Parse("angels"), 10)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Results) != 0 {
		t.Errorf("no snapshot should yield empty result, got %+v", result)
	}
}

func TestExecuteNoMatches(t *testing.T) {
	texts := map[string]string{"doc1": "nothing relevant"}
	exec := newTestExecutor(t, &fakeFetcher{texts: texts}, texts)

	result, err := exec.Execute(context.Background(), parser.Parse("unicorns AND rainbows"), 10)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.TotalHits != 0 || len(result.Results) != 0 {
		t.Errorf("unmatched query should yield empty result, got %+v", result)
	}
}
