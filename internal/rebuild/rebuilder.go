// Package rebuild drives full index rebuilds: load the corpus from
// Postgres, build a fresh snapshot, persist the postings and a disk
// snapshot, then swap the live snapshot atomically. Rebuilds never
// mutate the index in place; queries keep reading the previous snapshot
// until the swap.
package rebuild

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ahmeedHassan1/ir-iss-project/internal/analytics"
	"github.com/ahmeedHassan1/ir-iss-project/internal/index"
	"github.com/ahmeedHassan1/ir-iss-project/internal/index/snapshot"
	"github.com/ahmeedHassan1/ir-iss-project/internal/index/snapshotfile"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/config"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/errors"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/kafka"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/logger"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/metrics"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/resilience"
	"github.com/ahmeedHassan1/ir-iss-project/pkg/tracing"
)

// CorpusStore provides the document corpus and receives the rebuilt
// postings. Satisfied by the Postgres store.
type CorpusStore interface {
	LoadDocuments(ctx context.Context) ([]snapshot.Document, error)
	ReplacePostings(ctx context.Context, table *index.Table) error
}

// Result summarises one completed rebuild.
type Result struct {
	Documents  int       `json:"documents"`
	Terms      int       `json:"terms"`
	Postings   int       `json:"postings"`
	DurationMs int64     `json:"duration_ms"`
	Snapshot   string    `json:"snapshot"`
	BuiltAt    time.Time `json:"built_at"`
}

// Rebuilder coordinates rebuilds of the live snapshot. At most one
// rebuild runs at a time; a second trigger while one is running fails
// with ErrRebuildInProgress.
type Rebuilder struct {
	corpus    CorpusStore
	snapshots *snapshot.Store
	producer  *kafka.Producer
	collector *analytics.Collector
	metrics   *metrics.Metrics
	cfg       config.IndexerConfig
	logger    *slog.Logger

	busy atomic.Bool

	mu      sync.RWMutex
	lastRun *Result
}

func New(corpus CorpusStore, snapshots *snapshot.Store, producer *kafka.Producer, collector *analytics.Collector, m *metrics.Metrics, cfg config.IndexerConfig) *Rebuilder {
	return &Rebuilder{
		corpus:    corpus,
		snapshots: snapshots,
		producer:  producer,
		collector: collector,
		metrics:   m,
		cfg:       cfg,
		logger:    logger.WithComponent("rebuilder"),
	}
}

// Rebuild runs one full rebuild cycle and returns its summary.
func (r *Rebuilder) Rebuild(ctx context.Context) (*Result, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return nil, errors.New(errors.ErrRebuildInProgress, http.StatusConflict, "a rebuild is already running")
	}
	defer r.busy.Store(false)

	if r.cfg.RebuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.RebuildTimeout)
		defer cancel()
	}

	started := time.Now()
	ctx, trace := tracing.New(ctx, "index-rebuild", fmt.Sprintf("rebuild-%d", started.UnixNano()))
	defer trace.End()

	result, err := r.run(ctx, trace)
	if err != nil {
		if r.metrics != nil {
			r.metrics.RebuildsTotal.WithLabelValues("failure").Inc()
		}
		r.logger.Error("rebuild failed", "error", err)
		return nil, err
	}

	result.DurationMs = time.Since(started).Milliseconds()
	r.mu.Lock()
	r.lastRun = result
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.RebuildsTotal.WithLabelValues("success").Inc()
		r.metrics.RebuildDuration.Observe(time.Since(started).Seconds())
		r.metrics.DocsIndexed.Set(float64(result.Documents))
		r.metrics.TermsIndexed.Set(float64(result.Terms))
		r.metrics.PostingsStored.Set(float64(result.Postings))
	}

	r.announce(ctx, result)
	r.logger.Info("rebuild complete",
		"documents", result.Documents,
		"terms", result.Terms,
		"postings", result.Postings,
		"snapshot", result.Snapshot,
		"duration_ms", result.DurationMs,
	)
	return result, nil
}

func (r *Rebuilder) run(ctx context.Context, trace *tracing.Trace) (*Result, error) {
	phase := trace.Phase("load-corpus")
	var docs []snapshot.Document
	err := resilience.Retry(ctx, "load-corpus", resilience.RetryConfig{}, func() error {
		var loadErr error
		docs, loadErr = r.corpus.LoadDocuments(ctx)
		return loadErr
	})
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	phase.SetAttr("documents", len(docs))

	trace.Phase("build-index")
	snap, err := snapshot.Build(ctx, docs, r.cfg.RebuildWorkers)
	if err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}

	trace.Phase("persist-postings")
	err = resilience.Retry(ctx, "persist-postings", resilience.RetryConfig{}, func() error {
		return r.corpus.ReplacePostings(ctx, snap.Table)
	})
	if err != nil {
		return nil, fmt.Errorf("persisting postings: %w", err)
	}

	phase = trace.Phase("write-snapshot")
	name, err := snapshotfile.Write(r.cfg.DataDir, snap.Table)
	if err != nil {
		return nil, fmt.Errorf("writing snapshot file: %w", err)
	}
	phase.SetAttr("snapshot", name)
	if err := snapshotfile.Prune(r.cfg.DataDir, r.cfg.RetainSnapshots); err != nil {
		r.logger.Warn("failed to prune old snapshots", "error", err)
	}

	trace.Phase("swap")
	r.snapshots.Swap(snap)

	return &Result{
		Documents: snap.Table.DocCount(),
		Terms:     snap.Table.TermCount(),
		Postings:  snap.Table.PostingCount(),
		Snapshot:  name,
		BuiltAt:   snap.BuiltAt,
	}, nil
}

// LoadFromDisk restores the newest on-disk snapshot into the live store.
// Used at startup so the service can answer queries before the first
// rebuild. Returns false when no snapshot file exists.
func (r *Rebuilder) LoadFromDisk(ctx context.Context) (bool, error) {
	path, err := snapshotfile.Latest(r.cfg.DataDir)
	if err != nil {
		return false, fmt.Errorf("finding latest snapshot: %w", err)
	}
	if path == "" {
		return false, nil
	}
	table, err := snapshotfile.Load(path)
	if err != nil {
		return false, fmt.Errorf("loading snapshot %s: %w", path, err)
	}
	snap, err := snapshot.FromTable(table)
	if err != nil {
		return false, fmt.Errorf("restoring snapshot %s: %w", path, err)
	}
	r.snapshots.Swap(snap)
	r.logger.Info("snapshot restored from disk",
		"snapshot", path,
		"documents", snap.DocCount(),
		"terms", table.TermCount(),
	)
	return true, nil
}

// LastRun returns the most recent successful rebuild summary, or nil.
func (r *Rebuilder) LastRun() *Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastRun
}

// InProgress reports whether a rebuild is currently running.
func (r *Rebuilder) InProgress() bool {
	return r.busy.Load()
}

// announce publishes the rebuild completion event and tracks it for
// analytics. Both targets are optional.
func (r *Rebuilder) announce(ctx context.Context, result *Result) {
	if r.producer != nil {
		if err := r.producer.Publish(ctx, kafka.Event{Key: "index-complete", Value: result}); err != nil {
			r.logger.Error("failed to publish rebuild completion", "error", err)
		}
	}
	if r.collector != nil {
		r.collector.Track(analytics.RebuildEvent{
			Type:       analytics.EventRebuild,
			Documents:  result.Documents,
			Terms:      result.Terms,
			Postings:   result.Postings,
			DurationMs: result.DurationMs,
			Snapshot:   result.Snapshot,
			Timestamp:  time.Now().UTC(),
		})
	}
}
