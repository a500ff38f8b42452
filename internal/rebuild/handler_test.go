package rebuild

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ahmeedHassan1/ir-iss-project/internal/index/snapshot"
)

func newTestHandler(t *testing.T, docs []snapshot.Document) (*Handler, *Rebuilder) {
	t.Helper()
	snapshots := snapshot.NewStore()
	corpus := &fakeCorpus{docs: docs}
	rebuilder := New(corpus, snapshots, nil, nil, nil, testConfig(t))
	return NewHandler(rebuilder, snapshots), rebuilder
}

func testMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/index/rebuild", h.Rebuild)
	mux.HandleFunc("GET /api/v1/index/stats", h.Stats)
	mux.HandleFunc("GET /api/v1/index/postings", h.Postings)
	mux.HandleFunc("GET /api/v1/weights/{matrix}", h.Weights)
	return mux
}

func TestStatsBeforeAndAfterRebuild(t *testing.T) {
	h, rebuilder := newTestHandler(t, []snapshot.Document{
		{ID: "doc1", Text: "angels fear to tread"},
	})
	mux := testMux(h)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/index/stats", nil))
	var before map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&before); err != nil {
		t.Fatalf("decoding stats: %v", err)
	}
	if before["index_loaded"] != false {
		t.Errorf("index_loaded before rebuild = %v, want false", before["index_loaded"])
	}

	if _, err := rebuilder.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/index/stats", nil))
	var after map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&after); err != nil {
		t.Fatalf("decoding stats: %v", err)
	}
	if after["index_loaded"] != true {
		t.Errorf("index_loaded after rebuild = %v, want true", after["index_loaded"])
	}
	if after["documents"] != float64(1) {
		t.Errorf("documents = %v, want 1", after["documents"])
	}
}

func TestRebuildEndpoint(t *testing.T) {
	h, _ := newTestHandler(t, []snapshot.Document{
		{ID: "doc1", Text: "angels fear"},
		{ID: "doc2", Text: "fools rush in"},
	})
	mux := testMux(h)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/index/rebuild", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("rebuild status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if result.Documents != 2 {
		t.Errorf("Documents = %d, want 2", result.Documents)
	}
}

func TestPostingsEndpoint(t *testing.T) {
	h, rebuilder := newTestHandler(t, []snapshot.Document{
		{ID: "doc1", Text: "Angels fear to tread where angels fly."},
		{ID: "doc2", Text: "fools rush in"},
	})
	if _, err := rebuilder.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	mux := testMux(h)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/index/postings?term=Angels", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("postings status = %d", rec.Code)
	}
	var resp PostingsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding postings: %v", err)
	}
	if resp.Term != "angels" {
		t.Errorf("Term = %q, want angels", resp.Term)
	}
	if resp.DocumentFrequency != 1 {
		t.Errorf("DocumentFrequency = %d, want 1", resp.DocumentFrequency)
	}
	if !strings.Contains(resp.Display, "angels doc1: 0, 5") {
		t.Errorf("Display = %q", resp.Display)
	}

	// Unknown term is an empty result, not an error.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/index/postings?term=zebra", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown term status = %d, want 200", rec.Code)
	}

	// Missing term parameter is a client error.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/index/postings", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing term status = %d, want 400", rec.Code)
	}
}

func TestWeightsEndpoint(t *testing.T) {
	h, rebuilder := newTestHandler(t, []snapshot.Document{
		{ID: "doc1", Text: "angels fear"},
		{ID: "doc2", Text: "angels rush"},
	})
	if _, err := rebuilder.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	mux := testMux(h)

	for _, matrix := range []string{"tf", "idf", "tfidf", "normalized"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/weights/"+matrix, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("weights/%s status = %d, want 200", matrix, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/weights/bogus", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("weights/bogus status = %d, want 404", rec.Code)
	}
}

func TestWeightsBeforeBuildIsUnavailable(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	mux := testMux(h)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/weights/tf", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
