package rebuild

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ahmeedHassan1/ir-iss-project/internal/index"
	"github.com/ahmeedHassan1/ir-iss-project/internal/index/snapshot"
	"github.com/ahmeedHassan1/ir-iss-project/internal/index/tokenizer"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/errors"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/logger"
)

// Handler exposes the indexer's HTTP surface: rebuild trigger, index
// stats, raw postings, and the four weight matrices.
type Handler struct {
	rebuilder *Rebuilder
	snapshots *snapshot.Store
	logger    *slog.Logger
}

func NewHandler(rebuilder *Rebuilder, snapshots *snapshot.Store) *Handler {
	return &Handler{
		rebuilder: rebuilder,
		snapshots: snapshots,
		logger:    logger.WithComponent("index-handler"),
	}
}

// Rebuild triggers a synchronous rebuild and returns its summary. A
// rebuild already in flight yields 409.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	result, err := h.rebuilder.Rebuild(r.Context())
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error("rebuild failed", "error", err)
		h.writeError(w, errors.HTTPStatusCode(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// Stats reports the live snapshot's shape and the last rebuild summary.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshots.Current()
	stats := map[string]any{
		"rebuild_in_progress": h.rebuilder.InProgress(),
	}
	if snap == nil {
		stats["index_loaded"] = false
	} else {
		stats["index_loaded"] = true
		stats["documents"] = snap.Table.DocCount()
		stats["terms"] = snap.Table.TermCount()
		stats["postings"] = snap.Table.PostingCount()
		stats["built_at"] = snap.BuiltAt.UTC().Format(time.RFC3339)
	}
	if last := h.rebuilder.LastRun(); last != nil {
		stats["last_rebuild"] = last
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// PostingsResponse is the payload for one term's postings lookup.
type PostingsResponse struct {
	Term              string          `json:"term"`
	DocumentFrequency int             `json:"document_frequency"`
	Postings          []index.Posting `json:"postings"`
	Display           string          `json:"display"`
}

// Postings returns the positional postings for a single term. The term
// is normalized the same way as indexed text, so "Angels" finds
// "angels". An indexed term that is absent yields an empty postings
// list, not an error.
func (h *Handler) Postings(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("term")
	if raw == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'term' is required")
		return
	}
	terms := tokenizer.Terms(raw)
	if len(terms) != 1 {
		h.writeError(w, http.StatusBadRequest, "'term' must normalize to a single term")
		return
	}

	snap, ok := h.requireSnapshot(w)
	if !ok {
		return
	}

	term := terms[0]
	h.writeJSON(w, http.StatusOK, PostingsResponse{
		Term:              term,
		DocumentFrequency: snap.Table.DocumentFrequency(term),
		Postings:          snap.Table.Postings(term),
		Display:           snap.Table.FormatPostings(term),
	})
}

// Weights serves one of the four weight matrices, selected by the final
// path segment: tf, idf, tfidf, or normalized.
func (h *Handler) Weights(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.requireSnapshot(w)
	if !ok {
		return
	}

	switch r.PathValue("matrix") {
	case "tf":
		h.writeJSON(w, http.StatusOK, snap.Matrices.TFView())
	case "idf":
		h.writeJSON(w, http.StatusOK, snap.Matrices.IDFView())
	case "tfidf":
		h.writeJSON(w, http.StatusOK, snap.Matrices.TFIDFView())
	case "normalized":
		h.writeJSON(w, http.StatusOK, snap.Matrices.NormalizedView())
	default:
		h.writeError(w, http.StatusNotFound, "unknown matrix; expected tf, idf, tfidf, or normalized")
	}
}

// requireSnapshot writes 503 and returns false when no snapshot has
// been built yet.
func (h *Handler) requireSnapshot(w http.ResponseWriter) (*snapshot.Snapshot, bool) {
	snap := h.snapshots.Current()
	if snap == nil {
		h.writeError(w, http.StatusServiceUnavailable, "index not built yet")
		return nil, false
	}
	return snap, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
