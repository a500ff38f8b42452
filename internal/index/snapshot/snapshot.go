// Package snapshot holds a complete, immutable view of one index build:
// the postings table, the derived weight matrices, and the corpus size.
//
// Indexing is a stop-the-world batch computation. A rebuild produces a new
// Snapshot; the Store publishes it to the query path with a single atomic
// pointer swap, so in-flight queries keep reading the prior complete
// snapshot and never observe a half-built index. Queries mutate nothing,
// so concurrent reads of one snapshot need no locking.
package snapshot

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ahmeedHassan1/ir-iss-project/internal/index"
	"github.com/ahmeedHassan1/ir-iss-project/internal/index/weights"
)

// Document is the input unit for a rebuild: a stable identifier plus the
// decrypted full text. Decryption is the caller's concern.
type Document struct {
	ID   string
	Text string
}

// Snapshot is one complete index build. All fields are read-only after
// Build returns.
type Snapshot struct {
	Table    *index.Table
	Matrices *weights.Matrices
	BuiltAt  time.Time
}

// DocCount returns N, the number of distinct indexed documents.
func (s *Snapshot) DocCount() int {
	return s.Table.DocCount()
}

// Build tokenizes and indexes the full corpus and derives the weight
// matrices. Per-document indexing runs on a bounded worker pool; the
// shared table is filled by a single merge pass so posting order stays
// deterministic.
func Build(ctx context.Context, docs []Document, workers int) (*Snapshot, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	indexed := make([]index.DocumentIndex, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			indexed[i] = index.BuildDocument(doc.ID, doc.Text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table := index.NewTable()
	for _, doc := range indexed {
		table.Add(doc)
	}
	return FromTable(table)
}

// FromTable derives a snapshot from an already-populated postings table,
// e.g. one loaded from storage.
func FromTable(table *index.Table) (*Snapshot, error) {
	matrices, err := weights.Compute(table, table.DocCount())
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Table:    table,
		Matrices: matrices,
		BuiltAt:  time.Now().UTC(),
	}, nil
}

// Store hands the current snapshot to the query path. Swap is atomic;
// readers either see the old complete snapshot or the new one, never a
// mix.
type Store struct {
	current atomic.Pointer[Snapshot]

	mu     sync.Mutex
	onSwap []func(*Snapshot)
}

// NewStore returns a Store with no snapshot loaded. Current returns nil
// until the first Swap.
func NewStore() *Store {
	return &Store{}
}

// Current returns the latest completed snapshot, or nil before the first
// build.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Swap publishes a new snapshot and notifies subscribers.
func (s *Store) Swap(snap *Snapshot) {
	s.current.Store(snap)
	s.mu.Lock()
	subs := append([]func(*Snapshot){}, s.onSwap...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

// OnSwap registers a callback invoked after every snapshot swap, e.g. to
// invalidate query caches.
func (s *Store) OnSwap(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSwap = append(s.onSwap, fn)
}
